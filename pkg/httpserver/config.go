package httpserver

import "time"

// Config holds the listener settings, populated from the environment.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// NewFromConfig creates a server from the config; extra options win over
// config values.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	base := func(s *Server) {
		if cfg.Addr != "" {
			s.addr = cfg.Addr
		}
		if cfg.ReadTimeout > 0 {
			s.readTimeout = cfg.ReadTimeout
		}
		if cfg.WriteTimeout > 0 {
			s.writeTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			s.idleTimeout = cfg.IdleTimeout
		}
		if cfg.ShutdownTimeout > 0 {
			s.shutdownTimeout = cfg.ShutdownTimeout
		}
	}
	return New(append([]Option{base}, opts...)...)
}
