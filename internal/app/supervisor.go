package app

import (
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/doeshing/reelai/internal/infrastructure/cache"
	"github.com/doeshing/reelai/internal/infrastructure/httpapi"
	"github.com/doeshing/reelai/internal/ports"
)

// SupervisorConfig tunes restart behaviour of the serve tree.
type SupervisorConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

// DefaultSupervisorConfig allows five failures decaying over 30s before
// backing off for 15s.
func DefaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Supervisor builds the serve tree: the HTTP API and, for stores that need
// active expiry, the cache janitor.
func (c *Container) Supervisor(cfg SupervisorConfig) *suture.Supervisor {
	if shutdown := c.Config.Server.ShutdownTimeout; shutdown > 0 {
		cfg.ShutdownTimeout = shutdown
	}
	root := suture.New("reelai", suture.Spec{
		EventHook:        eventHook(c.Logger),
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	})

	root.Add(httpapi.NewServerService(c.HTTPServer(), cfg.ShutdownTimeout))
	if janitor, ok := cache.NewJanitor(c.CacheStore, c.Config.GetJanitorInterval(), c.Logger); ok {
		root.Add(janitor)
	}
	return root
}

// eventHook routes supervisor events to the structured logger.
func eventHook(log ports.Logger) suture.EventHook {
	return func(e suture.Event) {
		fields := e.Map()
		switch e.Type() {
		case suture.EventTypeBackoff, suture.EventTypeServicePanic, suture.EventTypeServiceTerminate:
			log.Warn(e.String(), fields)
		default:
			log.Info(e.String(), fields)
		}
	}
}
