package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/exhibitor-scraper/internal/config"
	"github.com/JakeFAU/exhibitor-scraper/internal/exhibitor"
	collyfetcher "github.com/JakeFAU/exhibitor-scraper/internal/fetcher/colly"
	"github.com/JakeFAU/exhibitor-scraper/internal/logging"
	"github.com/JakeFAU/exhibitor-scraper/internal/metrics"
	"github.com/JakeFAU/exhibitor-scraper/internal/pipeline"
	"github.com/JakeFAU/exhibitor-scraper/internal/robots"
	"github.com/JakeFAU/exhibitor-scraper/internal/store"
	"github.com/JakeFAU/exhibitor-scraper/internal/store/postgres"
	"github.com/JakeFAU/exhibitor-scraper/internal/store/sqlite"
	"github.com/JakeFAU/exhibitor-scraper/internal/throttle"
)

func runScrape(ctx context.Context, cfgFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	logger.Info("Scraper configured",
		zap.String("user_agent", cfg.Crawler.UserAgent),
		zap.String("store_driver", cfg.Store.Driver))

	recorder := metrics.NewRecorder()
	deps, err := buildDependencies(cfg, logger, recorder)
	if err != nil {
		return err
	}

	summary, runErr := pipeline.Run(ctx, pipelineConfig(cfg), deps)

	if cfg.Metrics.Textfile != "" {
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("Failed to write metrics textfile", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
		}
	}

	if runErr != nil {
		logger.Error("Scrape aborted", zap.String("run_id", summary.RunID), zap.Error(runErr))
		return fmt.Errorf("run scrape: %w", runErr)
	}
	return nil
}

func pipelineConfig(cfg config.Config) pipeline.Config {
	return pipeline.Config{
		TargetURL:   cfg.Target.URL,
		ThrottleMin: cfg.Throttle.Min,
		ThrottleMax: cfg.Throttle.Max,
	}
}

func buildDependencies(cfg config.Config, logger *zap.Logger, recorder *metrics.Recorder) (pipeline.Dependencies, error) {
	th, err := throttle.New(cfg.Throttle.Min, cfg.Throttle.Max)
	if err != nil {
		return pipeline.Dependencies{}, fmt.Errorf("init throttle: %w", err)
	}
	opener, err := storeOpener(store.Config{
		Driver: cfg.Store.Driver,
		Path:   cfg.Store.Path,
		DSN:    cfg.Store.DSN,
		Table:  cfg.Store.Table,
	})
	if err != nil {
		return pipeline.Dependencies{}, err
	}
	return pipeline.Dependencies{
		Robots: robots.NewChecker(robots.Config{
			Respect:   cfg.Robots.Respect,
			UserAgent: cfg.Crawler.UserAgent,
			OnError:   cfg.Robots.OnError,
			Timeout:   cfg.Robots.Timeout,
		}, logger.Named("robots")),
		Fetcher: collyfetcher.New(collyfetcher.Config{
			UserAgent: cfg.Crawler.UserAgent,
			Timeout:   cfg.HTTP.Timeout,
		}),
		Extractor: exhibitor.NewExtractor(cfg.Selectors()),
		OpenStore: opener,
		Throttle:  th,
		Metrics:   recorder,
		Logger:    logger,
	}, nil
}

func storeOpener(cfg store.Config) (pipeline.StoreOpener, error) {
	if err := store.CheckDriver(cfg.Driver); err != nil {
		return nil, err
	}
	return func(ctx context.Context) (store.Store, error) {
		if cfg.Driver == store.DriverPostgres {
			s, err := postgres.Open(ctx, cfg.DSN, cfg.Table)
			if err != nil {
				return nil, err
			}
			return s, nil
		}
		s, err := sqlite.Open(ctx, cfg.Path, cfg.Table)
		if err != nil {
			return nil, err
		}
		return s, nil
	}, nil
}
