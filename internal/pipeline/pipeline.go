package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/exhibitor-scraper/internal/exhibitor"
	"github.com/JakeFAU/exhibitor-scraper/internal/metrics"
	"github.com/JakeFAU/exhibitor-scraper/internal/store"
	"github.com/JakeFAU/exhibitor-scraper/internal/throttle"
)

// ErrDisallowed is returned when robots.txt forbids fetching the target.
var ErrDisallowed = errors.New("scraping disallowed by robots.txt")

// Stages at which a block can fail.
const (
	StageExtract = "extract"
	StageInsert  = "insert"
)

// Config is the per-run configuration.
type Config struct {
	TargetURL   string
	ThrottleMin time.Duration
	ThrottleMax time.Duration
}

// Dependencies are the collaborators of a run. Throttle is built from Config
// when nil; Metrics and Logger are optional.
type Dependencies struct {
	Robots    PermissionChecker
	Fetcher   PageFetcher
	Extractor *exhibitor.Extractor
	OpenStore StoreOpener
	Throttle  Waiter
	Metrics   *metrics.Recorder
	Logger    *zap.Logger
}

// BlockResult is the outcome of one exhibitor block.
type BlockResult struct {
	Index  int
	Record exhibitor.Record
	ID     int64
	Stage  string
	Err    error
}

// OK reports whether the block was stored.
func (r BlockResult) OK() bool {
	return r.Err == nil
}

// Summary aggregates a run.
type Summary struct {
	RunID   string
	Blocks  int
	Stored  int
	Failed  int
	Results []BlockResult
}

// Run executes one scrape from permission check to close.
func Run(ctx context.Context, cfg Config, deps Dependencies) (summary Summary, err error) {
	if err := validate(cfg, &deps); err != nil {
		return Summary{}, err
	}
	runID, err := uuid.NewV7()
	if err != nil {
		return Summary{}, fmt.Errorf("generate run id: %w", err)
	}
	summary.RunID = runID.String()
	logger := deps.Logger.With(zap.String("run_id", summary.RunID))

	start := time.Now()
	defer func() {
		deps.Metrics.ObserveRun(time.Since(start), err == nil, time.Now())
	}()

	logger.Info("Starting scrape", zap.String("url", cfg.TargetURL))

	allowed, err := deps.Robots.Allowed(ctx, cfg.TargetURL)
	if err != nil {
		logger.Error("Robots check failed", zap.String("url", cfg.TargetURL), zap.Error(err))
		return summary, fmt.Errorf("check robots: %w", err)
	}
	if !allowed {
		logger.Error("Scraping disallowed by robots.txt", zap.String("url", cfg.TargetURL))
		return summary, ErrDisallowed
	}
	logger.Info("Scraping allowed by robots.txt")

	st, err := deps.OpenStore(ctx)
	if err != nil {
		return summary, fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("Failed to close store", zap.Error(cerr))
		}
	}()

	page, err := deps.Fetcher.Fetch(ctx, cfg.TargetURL)
	if err != nil {
		return summary, fmt.Errorf("fetch page: %w", err)
	}
	deps.Metrics.ObservePage(page.URL, len(page.Body))
	logger.Info("Fetched listing page",
		zap.String("url", page.URL),
		zap.Int("status_code", page.StatusCode),
		zap.Int("bytes", len(page.Body)),
		zap.Duration("duration", page.Duration))

	doc, err := page.Document()
	if err != nil {
		return summary, fmt.Errorf("parse page: %w", err)
	}

	blocks := deps.Extractor.Blocks(doc)
	summary.Blocks = len(blocks)
	if len(blocks) == 0 {
		logger.Warn("No exhibitor blocks found on page", zap.String("url", page.URL))
	}

	for i, block := range blocks {
		res := processBlock(ctx, i, block, deps.Extractor, st)
		summary.Results = append(summary.Results, res)
		if res.OK() {
			summary.Stored++
			deps.Metrics.ObserveBlock(metrics.OutcomeStored)
			logger.Info("Stored exhibitor",
				zap.Int("block", i),
				zap.Int64("id", res.ID),
				zap.Stringp("name", res.Record.Name))
		} else {
			summary.Failed++
			deps.Metrics.ObserveBlock(metrics.OutcomeFailed)
			logger.Error("Failed to process exhibitor block",
				zap.Int("block", i),
				zap.String("stage", res.Stage),
				zap.Error(res.Err))
		}

		// The pause follows every block, stored or not, including the last.
		if _, err := deps.Throttle.Wait(ctx); err != nil {
			return summary, fmt.Errorf("throttle after block %d: %w", i, err)
		}
	}

	logger.Info("Scrape finished",
		zap.Int("blocks", summary.Blocks),
		zap.Int("stored", summary.Stored),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func processBlock(
	ctx context.Context,
	index int,
	block *goquery.Selection,
	ex *exhibitor.Extractor,
	st store.Store,
) BlockResult {
	res := BlockResult{Index: index}
	rec, err := ex.Extract(block)
	if err != nil {
		res.Stage = StageExtract
		res.Err = fmt.Errorf("extract block %d: %w", index, err)
		return res
	}
	res.Record = rec

	id, err := st.Insert(ctx, rec)
	if err != nil {
		res.Stage = StageInsert
		res.Err = fmt.Errorf("store block %d: %w", index, err)
		return res
	}
	res.ID = id
	res.Record.ID = id
	return res
}

func validate(cfg Config, deps *Dependencies) error {
	if cfg.TargetURL == "" {
		return fmt.Errorf("target url is required")
	}
	if deps.Robots == nil || deps.Fetcher == nil || deps.OpenStore == nil {
		return fmt.Errorf("robots checker, fetcher and store opener are required")
	}
	if deps.Extractor == nil {
		deps.Extractor = exhibitor.NewExtractor(exhibitor.DefaultSelectors())
	}
	if deps.Throttle == nil {
		th, err := throttle.New(cfg.ThrottleMin, cfg.ThrottleMax)
		if err != nil {
			return fmt.Errorf("build throttle: %w", err)
		}
		deps.Throttle = th
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return nil
}
