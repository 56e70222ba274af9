package crontab

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"

	"github.com/rocketman0418/astra-chats/internal/config"
	"github.com/rocketman0418/astra-chats/internal/domain/chat"
	"github.com/rocketman0418/astra-chats/internal/infrastructure/logger"
	"github.com/rocketman0418/astra-chats/internal/infrastructure/metrics"
	"github.com/rocketman0418/astra-chats/internal/utils/platformerrors"
)

const DefaultSweepIntervalMinutes = 5

type Crontab struct {
	ctab     *crontab.Crontab
	registry *chat.SessionRegistry
}

func NewCrontab(registry *chat.SessionRegistry) *Crontab {
	return &Crontab{
		ctab:     crontab.New(),
		registry: registry,
	}
}

// Run schedules the idle session sweep and blocks until ctx is done.
func (c *Crontab) Run(ctx context.Context) error {
	log := logger.GetLogger()

	interval := DefaultSweepIntervalMinutes
	if cfg := config.GetGlobal(); cfg != nil && cfg.SessionSweepMinutes > 0 {
		interval = cfg.SessionSweepMinutes
	}

	cronExpr := fmt.Sprintf("*/%d * * * *", interval)
	if err := c.ctab.AddJob(cronExpr, c.sweepIdleSessions); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add session sweep job")
	}
	log.Info().Msgf("Idle session sweep scheduled: every %d minute(s)", interval)

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) sweepIdleSessions() {
	log := logger.GetLogger()
	closed := c.registry.SweepIdle(time.Now())
	if closed > 0 {
		log.Info().Int("closed", closed).Msg("Swept idle sessions")
	}
	metrics.ActiveSessions.Set(float64(c.registry.Len()))
}
