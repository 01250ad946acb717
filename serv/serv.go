// Package serv is the HTTP plumbing around the explanation core: one JSON
// endpoint, a liveness endpoint, and process lifecycle.
package serv

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sqlmentor/explaind/core"
	"github.com/sqlmentor/explaind/llm"
	"github.com/sqlmentor/explaind/serv/internal/util"
)

const (
	defaultHP         = "0.0.0.0:8080"
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// ExplainService ties the config, logger, memo-backed explainer and HTTP
// server together. The memo store lives exactly as long as the service:
// constructed empty at start, gone at stop.
type ExplainService struct {
	conf      *Config
	log       *zap.SugaredLogger
	zlog      *zap.Logger
	explainer *core.Explainer
	srv       *http.Server
}

// Option configures the service
type Option func(*ExplainService) error

// OptionSetProvider overrides the upstream provider (used in tests)
func OptionSetProvider(p core.Provider) Option {
	return func(s *ExplainService) error {
		s.explainer = core.NewExplainer(p, explainerConfig(s.conf))
		return nil
	}
}

// OptionSetZapLogger sets the logger
func OptionSetZapLogger(zlog *zap.Logger) Option {
	return func(s *ExplainService) error {
		s.zlog = zlog
		s.log = zlog.Sugar()
		return nil
	}
}

// NewExplainService creates the service. A missing upstream credential is a
// startup error: the process must refuse to start, not fail per request.
func NewExplainService(conf *Config, options ...Option) (*ExplainService, error) {
	s := &ExplainService{conf: conf}

	zlog := util.NewLogger(conf.LogJSON, util.ParseLevel(conf.LogLevel))
	s.zlog = zlog
	s.log = zlog.Sugar()

	if err := s.initHostPort(); err != nil {
		return nil, err
	}

	for _, op := range options {
		if err := op(s); err != nil {
			return nil, err
		}
	}

	if s.explainer == nil {
		provider, err := llm.NewOpenAIClient(llm.Config{
			APIKey:      conf.Upstream.APIKey,
			Model:       conf.Upstream.Model,
			BaseURL:     conf.Upstream.BaseURL,
			Temperature: conf.Upstream.Temperature,
			MaxTokens:   conf.Upstream.MaxTokens,
			Timeout:     conf.Upstream.Timeout,
		})
		if err != nil {
			return nil, errors.Wrap(err, "upstream client init failed")
		}
		s.explainer = core.NewExplainer(provider, explainerConfig(conf))
	}

	return s, nil
}

func explainerConfig(conf *Config) core.ExplainerConfig {
	return core.ExplainerConfig{
		MaxEntries:       conf.Cache.MaxEntries,
		DescriptionLimit: conf.Upstream.DescriptionLimit,
		Coalesce:         conf.Cache.Coalesce,
	}
}

// initHostPort assembles the listen address from host and port
func (s *ExplainService) initHostPort() error {
	host := s.conf.Host
	port := s.conf.Port

	if host == "" && port == "" {
		s.conf.hostPort = defaultHP
		return nil
	}
	if strings.ContainsAny(port, ":") {
		return errors.Errorf("invalid port: %s", port)
	}
	s.conf.hostPort = fmt.Sprintf("%s:%s", host, port)
	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *ExplainService) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.srv = &http.Server{
		Addr:              s.conf.hostPort,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("%s listening on %s", s.conf.AppName, s.conf.hostPort)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server failed")
	case <-ctx.Done():
	}

	s.log.Info("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return nil
}
