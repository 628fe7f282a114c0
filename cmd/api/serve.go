package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	httpadp "bankeu-backend/internal/adapter/http"
	"bankeu-backend/internal/infrastructure/logging"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	var noDrainer bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the mirror drainer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), !noDrainer)
		},
	}
	cmd.Flags().BoolVar(&noDrainer, "no-drainer", false, "Do not run the scheduled mirror drainer in this process")
	return cmd
}

func (a *app) serve(ctx context.Context, drainer bool) error {
	d, err := a.wire(ctx, true)
	if err != nil {
		return err
	}
	defer d.Close()
	log := logging.Get()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	httpadp.Routes{
		Health:         httpadp.NewHandler(d.healthChecks()),
		Proposals:      httpadp.NewProposalHandler(d.workflow),
		Questionnaires: httpadp.NewQuestionnaireHandler(d.questionnaire),
		Settings:       httpadp.NewSettingsHandler(d.gate, d.reviewers),
		Gatherer:       d.registry,
		Redis:          d.rdb,
		IdempTTL:       a.cfg.IdempotencyTTL(),
	}.Register(e)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + a.cfg.AppPort
		log.Info().Str("addr", addr).Int("budget_year", a.cfg.BudgetYear).Msg("http: listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("http: shutting down")
		return e.Shutdown(sctx)
	})
	if drainer {
		g.Go(func() error { return d.mirror.RunDrainer(gctx, a.cfg.MirrorDrainSchedule) })
	}
	return g.Wait()
}

func (d *deps) healthChecks() map[string]httpadp.Check {
	checks := map[string]httpadp.Check{
		"mysql": func(ctx context.Context) error {
			sqlDB, err := d.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if d.rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return d.rdb.Ping(ctx).Err() }
	}
	return checks
}
