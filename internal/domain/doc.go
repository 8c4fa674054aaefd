// Package domain contains shared domain types used across entity sub-packages.
// Entity-specific types live in sub-packages (domain/order, domain/product,
// domain/user). This root package holds sentinel errors, the typed error kinds
// surfaced to API clients, and the pagination and sorting contract shared by
// every listing operation.
package domain
