package cli

import (
	"context"
	"sync"

	"walletconn/internal/config"
	"walletconn/internal/logging"
	"walletconn/internal/provider"
	"walletconn/internal/wallet"
)

// session holds what every command needs: the loaded config, the file
// logger and the currently detected provider client.
type session struct {
	cfg *config.Config
	log *logging.Logger

	mu     sync.Mutex
	client *provider.Client
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		path, err := config.ExpandPath(configPath)
		if err != nil {
			return nil, err
		}
		return config.Load(path)
	}
	return config.DefaultConfig()
}

func newSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logFile := cfg.Logging.File
	if logFile != "" {
		if err := cfg.EnsureDirs(); err != nil {
			return nil, err
		}
	}
	log, err := logging.New(logFile, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log}, nil
}

func (s *session) providerOptions() provider.Options {
	return provider.Options{
		PollInterval: s.cfg.Provider.PollInterval,
		ProbeTimeout: s.cfg.Provider.ProbeTimeout,
		Logger:       s.log.WithField("component", "provider"),
	}
}

// detect closes the previous client and probes the configured endpoint
// again. It returns a nil interface when no provider answers.
func (s *session) detect(ctx context.Context) wallet.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		s.client.Close()
		s.client = nil
	}

	c, err := provider.Detect(ctx, s.cfg.Provider.URL, s.providerOptions())
	if err != nil {
		s.log.WithError(err).Info("wallet provider not available")
		return nil
	}
	s.log.WithField("url", c.URL()).Info("wallet provider detected")
	s.client = c
	return c
}

func (s *session) Close() {
	s.mu.Lock()
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
	s.mu.Unlock()
	s.log.Close()
}
