// Package guarded wraps storage repositories with a circuit breaker. Each
// call runs through breaker.Execute, so an unhealthy store fails fast with
// domain.ErrUnavailable instead of piling up requests, and every call is
// traced and counted.
package guarded
