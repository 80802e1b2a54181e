package app

import (
	"github.com/okian/mahara/internal/api"
	"github.com/okian/mahara/internal/session"
	"github.com/okian/mahara/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSession injects the session store.
func WithSession(store *session.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.session = store
		}
	}
}

// WithClient injects the gateway client.
func WithClient(client *api.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
