package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/storefront-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/user"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	service ports.UserService
}

// NewUserHandler creates a new UserHandler with the given service port.
func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, user.Filter{}, nil)
}

// SearchUsers handles GET /users/search?name=.
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	verr := domain.NewValidationError(domain.LocationQuery)
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		verr.Missing("name")
	}

	h.list(w, r, user.Filter{NameContains: name}, verr.Err())
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.UserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.service.CreateUser(r.Context(), req.ToUser())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.ToUserResponse(created))
}

// GetUser handles GET /users/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	u, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToUserResponse(u))
}

// GetUserByUsername handles GET /users/username/{username}.
func (h *UserHandler) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetUserByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToUserResponse(u))
}

// UpdateUser handles PUT /users/{id}.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.UserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), id, req.ToUser())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToUserResponse(updated))
}

// DeleteUser handles DELETE /users/{id}.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request, filter user.Filter, queryErr error) {
	req, pageErr := parsePageRequest(r, user.DefaultSort, user.SortFields)
	if err := domain.MergeValidation(queryErr, pageErr); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	page, err := h.service.ListUsers(r.Context(), filter, req)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToPageResponse(page, dto.ToUserResponse))
}
