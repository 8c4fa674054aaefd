package config

import (
	"errors"
	"fmt"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Log.validate(),
		c.Storage.validate(),
		c.Cache.validate(),
		c.Events.validate(),
		c.App.validate(),
		c.Telemetry.validate(),
	)
}

func (s *ServerConfig) validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	if s.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit.requests_per_second must be >= 0, got %f",
			s.RateLimit.RequestsPerSecond))
	}
	if s.RateLimit.RequestsPerSecond > 0 && s.RateLimit.Burst < 1 {
		errs = append(errs, fmt.Errorf("server.rate_limit.burst must be >= 1 when rate limiting is enabled, got %d",
			s.RateLimit.Burst))
	}

	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
		// Valid levels.
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
		// Valid formats.
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (s *StorageConfig) validate() error {
	var errs []error

	switch s.Driver {
	case DriverMemory:
	case DriverMySQL:
		if s.MySQL.DSN == "" {
			errs = append(errs, errors.New("storage.mysql.dsn must not be empty when driver is mysql"))
		}
		if s.MySQL.MaxOpenConns < 1 {
			errs = append(errs, fmt.Errorf("storage.mysql.max_open_conns must be >= 1, got %d", s.MySQL.MaxOpenConns))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be one of: memory, mysql; got %q", s.Driver))
	}

	if s.CircuitBreaker.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("storage.circuit_breaker.max_failures must be >= 1, got %d",
			s.CircuitBreaker.MaxFailures))
	}
	if s.CircuitBreaker.Timeout <= 0 {
		errs = append(errs, errors.New("storage.circuit_breaker.timeout must be positive"))
	}

	return errors.Join(errs...)
}

func (c *CacheConfig) validate() error {
	if !c.Enabled {
		return nil
	}

	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("cache.addr must not be empty when cache is enabled"))
	}
	if c.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive"))
	}

	return errors.Join(errs...)
}

func (e *EventsConfig) validate() error {
	if !e.Enabled {
		return nil
	}

	var errs []error

	if len(e.Brokers) == 0 {
		errs = append(errs, errors.New("events.brokers must not be empty when events are enabled"))
	}
	if e.Topic == "" {
		errs = append(errs, errors.New("events.topic must not be empty when events are enabled"))
	}

	return errors.Join(errs...)
}

func (a *AppConfig) validate() error {
	if a.LookupWorkers < 1 {
		return fmt.Errorf("app.lookup_workers must be >= 1, got %d", a.LookupWorkers)
	}
	return nil
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
		// Valid exporters.
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}
	if t.ServiceName == "" {
		errs = append(errs, errors.New("telemetry.service_name must not be empty"))
	}

	return errors.Join(errs...)
}
