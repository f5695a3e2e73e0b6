// Package api provides the HTTP server for ADMS Core.
//
// One listener serves two very different audiences. The /iclock endpoints
// speak the terminals' plain-text push dialect and never return an error a
// device could choke on; the /api/v1 endpoints are a JSON operator surface
// for inspecting the fleet, queueing commands and reading attendance.
//
// The server follows the same lifecycle pattern as the other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tessara-dev/adms-core/internal/attendance"
	"github.com/tessara-dev/adms-core/internal/command"
	"github.com/tessara-dev/adms-core/internal/device"
	"github.com/tessara-dev/adms-core/internal/events"
	"github.com/tessara-dev/adms-core/internal/iclock"
	"github.com/tessara-dev/adms-core/internal/infrastructure/config"
	"github.com/tessara-dev/adms-core/internal/infrastructure/logging"
	"github.com/tessara-dev/adms-core/internal/infrastructure/mqtt"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     *config.Config
	Logger     *logging.Logger
	Session    *iclock.Session
	Devices    device.Repository
	Commands   command.Repository
	Attendance attendance.Repository
	Sink       events.Sink
	MQTT       *mqtt.Client // optional, health reporting only
	Version    string
}

// Server is the HTTP server for ADMS Core.
type Server struct {
	cfg        *config.Config
	logger     *logging.Logger
	session    *iclock.Session
	devices    device.Repository
	commands   command.Repository
	attendance attendance.Repository
	sink       events.Sink
	mqtt       *mqtt.Client
	version    string
	server     *http.Server
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("protocol session is required")
	}
	if deps.Devices == nil || deps.Commands == nil || deps.Attendance == nil {
		return nil, fmt.Errorf("repositories are required")
	}

	sink := deps.Sink
	if sink == nil {
		sink = events.Nop{}
	}

	return &Server{
		cfg:        deps.Config,
		logger:     deps.Logger.With("component", "api"),
		session:    deps.Session,
		devices:    deps.Devices,
		commands:   deps.Commands,
		attendance: deps.Attendance,
		sink:       sink,
		mqtt:       deps.MQTT,
		version:    deps.Version,
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
