package config

const (
	defaultServerPort = 8080

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1

	defaultMySQLMaxOpenConns = 10
	defaultMySQLMaxIdleConns = 5

	defaultLookupWorkers = 4
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":                           "0.0.0.0",
		"server.port":                           defaultServerPort,
		"server.read_timeout":                   "5s",
		"server.write_timeout":                  "10s",
		"server.idle_timeout":                   "120s",
		"server.rate_limit.requests_per_second": 0,
		"server.rate_limit.burst":               0,

		"log.level":  "info",
		"log.format": "json",

		"storage.driver":                          DriverMemory,
		"storage.mysql.dsn":                       "",
		"storage.mysql.max_open_conns":            defaultMySQLMaxOpenConns,
		"storage.mysql.max_idle_conns":            defaultMySQLMaxIdleConns,
		"storage.mysql.conn_max_lifetime":         "5m",
		"storage.mysql.migrate":                   false,
		"storage.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"storage.circuit_breaker.timeout":         "30s",
		"storage.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,

		"cache.enabled":  false,
		"cache.addr":     "localhost:6379",
		"cache.password": "",
		"cache.db":       0,
		"cache.ttl":      "5m",

		"events.enabled":       false,
		"events.brokers":       []string{"localhost:9092"},
		"events.topic":         "storefront.orders",
		"events.write_timeout": "5s",

		"app.lookup_workers": defaultLookupWorkers,

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "storefront-service",
	}
}
