package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"bankeu-backend/internal/adapter/repository/mysql"
	"bankeu-backend/internal/config"
	"bankeu-backend/internal/infrastructure/cache"
	"bankeu-backend/internal/infrastructure/db"
	"bankeu-backend/internal/infrastructure/filestore"
	"bankeu-backend/internal/infrastructure/logging"
	"bankeu-backend/internal/infrastructure/metrics"
	"bankeu-backend/internal/usecase/gate"
	"bankeu-backend/internal/usecase/mirror"
	"bankeu-backend/internal/usecase/questionnaire"
	"bankeu-backend/internal/usecase/reviewer"
	"bankeu-backend/internal/usecase/workflow"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type app struct {
	root *cobra.Command
	cfg  *config.Config
}

func newApp() *app {
	a := &app{}
	a.root = &cobra.Command{
		Use:           "bankeu",
		Short:         "Bankeu proposal workflow service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load()
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logging.Init(logging.Config{Level: a.cfg.LogLevel, Format: a.cfg.LogFormat})
			return nil
		},
	}
	a.root.AddCommand(
		a.newServeCmd(),
		a.newMigrateCmd(),
		a.newGateCmd(),
		a.newMirrorCmd(),
		a.newProposalsCmd(),
	)
	return a
}

func (a *app) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return a.root.ExecuteContext(ctx)
}

// deps is the wired object graph shared by the commands.
type deps struct {
	db       *gorm.DB
	rdb      *redis.Client
	registry *prometheus.Registry

	gate          *gate.Usecase
	mirror        *mirror.Service
	workflow      *workflow.Usecase
	questionnaire *questionnaire.Usecase
	reviewers     *reviewer.Usecase
}

func (d *deps) Close() {
	if d.rdb != nil {
		_ = d.rdb.Close()
	}
	if sqlDB, err := d.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (a *app) openStores(ctx context.Context) (working, reference filestore.Store, err error) {
	c := a.cfg
	if c.FileStoreDriver == "s3" {
		base := filestore.S3Config{
			Bucket:          c.S3Bucket,
			Region:          c.S3Region,
			Endpoint:        c.S3Endpoint,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretKey,
		}
		w, r := base, base
		w.Prefix, r.Prefix = c.S3WorkingPrefix, c.S3RefPrefix
		if working, err = filestore.NewS3(ctx, w); err != nil {
			return nil, nil, err
		}
		if reference, err = filestore.NewS3(ctx, r); err != nil {
			return nil, nil, err
		}
		return working, reference, nil
	}
	if working, err = filestore.NewLocal(c.WorkingDir); err != nil {
		return nil, nil, err
	}
	if reference, err = filestore.NewLocal(c.ReferenceDir); err != nil {
		return nil, nil, err
	}
	return working, reference, nil
}

// wire opens MySQL, Redis (when withRedis) and the file stores and builds
// the usecases on top.
func (a *app) wire(ctx context.Context, withRedis bool) (*deps, error) {
	c := a.cfg
	gdb, err := db.OpenGorm(c.MySQLDSN(), db.GormLogLevel(c.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	d := &deps{db: gdb, registry: prometheus.NewRegistry()}
	d.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if withRedis {
		if d.rdb, err = cache.OpenRedis(c.RedisAddr, c.RedisDB); err != nil {
			d.Close()
			return nil, fmt.Errorf("open redis: %w", err)
		}
	}

	working, reference, err := a.openStores(ctx)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open filestore: %w", err)
	}

	m := metrics.New(d.registry)
	tx := mysql.NewGormUoW(gdb)
	mcfg := mirror.DefaultConfig()
	mcfg.Timeout = c.MirrorTimeout
	mcfg.MaxAttempts = c.MirrorMaxAttempts

	d.gate = gate.NewUsecase(mysql.NewSettingRepository(gdb), d.rdb, c.GateCacheTTL())
	d.mirror = mirror.NewService(working, reference, tx, m, mcfg)
	d.workflow = workflow.NewUsecase(mysql.NewProposalRepository(gdb), tx, d.gate, d.mirror, m, c.BudgetYear)
	d.questionnaire = questionnaire.NewUsecase(tx, d.workflow)
	d.reviewers = reviewer.NewUsecase(mysql.NewReviewerRepository(gdb))
	return d, nil
}
