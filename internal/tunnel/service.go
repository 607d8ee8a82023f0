// Package tunnel optionally exposes the local bridge through an ngrok
// endpoint, so webhook integrations can be developed against a machine
// behind NAT.
package tunnel

import (
	"context"
	"fmt"
	"os"

	"marquee/internal/config"

	"github.com/sirupsen/logrus"
	"golang.ngrok.com/ngrok/v2"
)

// Service manages the lifetime of one ngrok forwarder.
type Service struct {
	config *config.TunnelConfig
	logger *logrus.Logger
	agent  ngrok.Agent
	tunnel ngrok.EndpointForwarder
}

// NewService creates the tunnel service, or (nil, nil) when tunneling is
// disabled. The auth token comes from the config or NGROK_AUTHTOKEN.
func NewService(cfg *config.TunnelConfig, logger *logrus.Logger) (*Service, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if logger == nil {
		logger = logrus.New()
	}

	authToken := cfg.AuthToken
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
	}
	if authToken == "" {
		return nil, fmt.Errorf("ngrok auth token not found; set NGROK_AUTHTOKEN or tunnel.auth_token")
	}

	agent, err := ngrok.NewAgent(ngrok.WithAuthtoken(authToken))
	if err != nil {
		return nil, fmt.Errorf("failed to create ngrok agent: %w", err)
	}

	return &Service{
		config: cfg,
		logger: logger,
		agent:  agent,
	}, nil
}

// Start forwards the public endpoint to the local bridge address.
func (s *Service) Start(ctx context.Context, localAddress string) error {
	if s == nil {
		return nil // tunneling disabled
	}

	var opts []ngrok.EndpointOption
	if s.config.Domain != "" {
		opts = append(opts, ngrok.WithURL(s.config.Domain))
	}

	// An exposed bridge accepts workflow mutations; OAuth in front of it
	// keeps a dev tunnel from being an open relay.
	if s.config.EnableAuth {
		trafficPolicy := fmt.Sprintf(`
on_http_request:
  - actions:
      - type: oauth
        config:
          provider: %s
`, s.config.AuthProvider)
		opts = append(opts, ngrok.WithTrafficPolicy(trafficPolicy))
	}

	tunnel, err := s.agent.Forward(ctx, ngrok.WithUpstream(localAddress), opts...)
	if err != nil {
		return fmt.Errorf("failed to create ngrok tunnel: %w", err)
	}
	s.tunnel = tunnel

	s.logger.WithFields(logrus.Fields{
		"public_url": tunnel.URL().String(),
		"upstream":   localAddress,
	}).Info("Tunnel active")

	if s.config.EnableAuth {
		s.logger.WithField("provider", s.config.AuthProvider).Info("Tunnel OAuth enabled")
	}

	return nil
}

// PublicURL returns the tunnel's public URL, or "" when not running.
func (s *Service) PublicURL() string {
	if s == nil || s.tunnel == nil {
		return ""
	}
	return s.tunnel.URL().String()
}

// Stop closes the tunnel.
func (s *Service) Stop() error {
	if s == nil || s.tunnel == nil {
		return nil
	}
	s.logger.Info("Stopping tunnel")
	return s.tunnel.Close()
}
