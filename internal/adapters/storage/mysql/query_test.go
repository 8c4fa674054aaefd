package mysql

import (
	"errors"
	"fmt"
	"math"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/order"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/domain/user"
)

func TestOrderBy(t *testing.T) {
	t.Parallel()

	req := domain.PageRequest{Page: 2, Size: 10, Sort: domain.Sort{Field: "stockQuantity", Direction: domain.Desc}}
	clause, args := orderBy(productSortColumns, req)

	if want := " ORDER BY stock_quantity DESC, id ASC LIMIT ? OFFSET ?"; clause != want {
		t.Errorf("clause = %q, want %q", clause, want)
	}
	if len(args) != 2 || args[0] != 10 || args[1] != 20 {
		t.Errorf("args = %v, want [10 20]", args)
	}
}

func TestOrderBy_HugePageOffsetStaysNonNegative(t *testing.T) {
	t.Parallel()

	req := domain.PageRequest{Page: 922337203685477581, Size: 10, Sort: domain.Sort{Field: "id", Direction: domain.Asc}}
	_, args := orderBy(productSortColumns, req)

	if len(args) != 2 || args[1] != math.MaxInt {
		t.Errorf("args = %v, want [10 %d]", args, math.MaxInt)
	}
}

func TestOrderBy_UnknownFieldFallsBackToID(t *testing.T) {
	t.Parallel()

	clause, _ := orderBy(userSortColumns, domain.PageRequest{Size: 5, Sort: domain.Sort{Field: "email; DROP TABLE users", Direction: domain.Asc}})
	if want := " ORDER BY id ASC, id ASC LIMIT ? OFFSET ?"; clause != want {
		t.Errorf("clause = %q, want %q", clause, want)
	}
}

func TestSortColumnsCoverAllowLists(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name    string
		fields  domain.SortFields
		columns map[string]string
	}{
		{name: "product", fields: product.SortFields, columns: productSortColumns},
		{name: "user", fields: user.SortFields, columns: userSortColumns},
		{name: "order", fields: order.SortFields, columns: orderSortColumns},
	} {
		for _, f := range tc.fields {
			if _, ok := tc.columns[f]; !ok {
				t.Errorf("%s sort field %q has no column", tc.name, f)
			}
		}
	}
}

func TestContainsPattern(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Mouse":  "%mouse%",
		"50%":    `%50\%%`,
		"a_b":    `%a\_b%`,
		`back\s`: `%back\\s%`,
	}
	for in, want := range tests {
		if got := containsPattern(in); got != want {
			t.Errorf("containsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWhere(t *testing.T) {
	t.Parallel()

	w := &where{}
	if w.String() != "" {
		t.Errorf("empty where = %q, want empty", w.String())
	}
	w.add("a = ?", 1)
	w.add("b <= ?", 2)
	if want := " WHERE a = ? AND b <= ?"; w.String() != want {
		t.Errorf("where = %q, want %q", w.String(), want)
	}
	if len(w.args) != 2 {
		t.Errorf("args = %v, want 2 entries", w.args)
	}
}

func TestIsDuplicate(t *testing.T) {
	t.Parallel()

	dup := fmt.Errorf("insert: %w", &gomysql.MySQLError{Number: errDuplicateEntry, Message: "Duplicate entry"})
	if !isDuplicate(dup) {
		t.Error("isDuplicate(1062) = false, want true")
	}
	if isDuplicate(&gomysql.MySQLError{Number: 1452}) {
		t.Error("isDuplicate(1452) = true, want false")
	}
	if isDuplicate(errors.New("plain")) || isDuplicate(nil) {
		t.Error("isDuplicate(non-mysql) = true, want false")
	}
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	if got := placeholders(3); got != "?,?,?" {
		t.Errorf("placeholders(3) = %q", got)
	}
	if got := placeholders(0); got != "" {
		t.Errorf("placeholders(0) = %q", got)
	}
}
