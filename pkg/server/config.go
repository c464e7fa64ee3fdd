package server

import "time"

// Config configures the HTTP server.
type Config struct {
	// Address is the listen address (default: "localhost:3000").
	Address string

	// ReadHeaderTimeout bounds reading request headers (default: 5s).
	ReadHeaderTimeout time.Duration

	// ReadTimeout bounds reading the whole request (default: 30s).
	ReadTimeout time.Duration

	// WriteTimeout bounds writing the response (default: 60s).
	// It should exceed the prefetch timeout.
	WriteTimeout time.Duration

	// IdleTimeout bounds keep-alive connections (default: 120s).
	IdleTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown (default: 30s).
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:           "localhost:3000",
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   30 * time.Second,
	}
}

// withDefaults fills unset fields of c from DefaultConfig.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = defaults.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = defaults.IdleTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	return &out
}
