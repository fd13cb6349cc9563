package pipeline

import (
	"context"
	"time"

	collyfetcher "github.com/JakeFAU/exhibitor-scraper/internal/fetcher/colly"
	"github.com/JakeFAU/exhibitor-scraper/internal/store"
)

// PermissionChecker decides whether the target may be fetched.
type PermissionChecker interface {
	Allowed(ctx context.Context, targetURL string) (bool, error)
}

// PageFetcher retrieves the listing page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (collyfetcher.Page, error)
}

// StoreOpener opens the record store for the duration of a run.
type StoreOpener func(ctx context.Context) (store.Store, error)

// Waiter pauses between blocks.
type Waiter interface {
	Wait(ctx context.Context) (time.Duration, error)
}
