package mirror

import (
	"context"
	"fmt"

	"bankeu-backend/internal/infrastructure/logging"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/robfig/cron/v3"
)

// cronLogger adapts bolt to cron.Logger.
type cronLogger struct{ l *bolt.Logger }

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.l.Debug().Str("component", "cron").Str("kv", fmt.Sprint(kv...)).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.l.Error().Str("component", "cron").Err(err).Str("kv", fmt.Sprint(kv...)).Msg(msg)
}

// RunDrainer drains the outbox on schedule until ctx is done. Overlapping
// runs are skipped.
func (s *Service) RunDrainer(ctx context.Context, schedule string) error {
	log := logging.Get()
	cl := cronLogger{l: log}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl)))
	_, err := c.AddFunc(schedule, func() {
		res, err := s.Drain(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("mirror: drain failed")
			return
		}
		if res.Processed > 0 {
			log.Info().Int("processed", res.Processed).Int("done", res.Done).
				Int("failed", res.Failed).Int("skipped", res.Skipped).Msg("mirror: drain finished")
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	log.Info().Str("schedule", schedule).Msg("mirror: drainer started")
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
