package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StatsSource reports the current size of the session registry.
type StatsSource interface {
	Stats() (sessions, todos int)
}

// StartRegistryReporter copies registry stats into the gauges every interval
// until ctx is done. Changes are logged at Info level.
func StartRegistryReporter(
	ctx context.Context,
	src StatsSource,
	m *Metrics,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		lastSessions, lastTodos := -1, -1
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions, todos := src.Stats()
				m.SetRegistryStats(sessions, todos)
				if sessions != lastSessions || todos != lastTodos {
					log.Info("session registry stats",
						zap.Int("sessions", sessions),
						zap.Int("todos", todos),
					)
					lastSessions, lastTodos = sessions, todos
				}
			}
		}
	}()
}
