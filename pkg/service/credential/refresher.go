package credential

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/m-mizutani/goerr/v2"

	"github.com/newsverify/adkbridge/pkg/adapter"
	"github.com/newsverify/adkbridge/pkg/utils/logging"
	"github.com/newsverify/adkbridge/pkg/utils/metrics"
)

// Refresher keeps the Store populated with a valid bearer credential.
// Refresh failures are contained: the previous credential stays in
// effect and the next cycle runs on schedule.
type Refresher struct {
	issuer adapter.TokenIssuer
	store  *Store

	envKey    string
	watchPath string
}

type RefresherOption func(*Refresher)

// WithEnvExport publishes each refreshed token to the named environment
// variable. Kept for compatibility with legacy consumers that read the
// token from the process environment instead of taking the store.
func WithEnvExport(key string) RefresherOption {
	return func(r *Refresher) {
		r.envKey = key
	}
}

// WithWatchFile triggers an immediate out-of-cycle refresh when the
// given file (typically the service account key) is rewritten.
func WithWatchFile(path string) RefresherOption {
	return func(r *Refresher) {
		r.watchPath = path
	}
}

func NewRefresher(issuer adapter.TokenIssuer, store *Store, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		issuer: issuer,
		store:  store,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Refresh performs one credential exchange and atomically replaces the
// store contents. On failure the store is left untouched.
func (r *Refresher) Refresh(ctx context.Context) error {
	cred, err := r.issuer.Issue(ctx)
	if err != nil {
		metrics.TokenRefresh.WithLabelValues("failure").Inc()
		return goerr.Wrap(err, "failed to refresh credential")
	}

	r.store.Set(*cred)

	if r.envKey != "" {
		if err := os.Setenv(r.envKey, cred.Token); err != nil {
			metrics.TokenRefresh.WithLabelValues("failure").Inc()
			return goerr.Wrap(err, "failed to export token to environment", goerr.V("key", r.envKey))
		}
	}

	metrics.TokenRefresh.WithLabelValues("success").Inc()
	logging.From(ctx).Info("credential refreshed", "expiry", cred.Expiry)
	return nil
}

// Start performs an immediate refresh, then runs one refresh per
// interval on a background goroutine until ctx is cancelled. The
// interval must stay well below the token's real validity window
// (typically 3600s); that margin is the caller's responsibility. A
// failed initial refresh is logged and does not prevent the loop from
// starting.
func (r *Refresher) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return goerr.New("refresh interval must be positive", goerr.V("interval", interval))
	}

	logger := logging.From(ctx)
	logger.Info("starting credential refresher", "interval", interval)

	if err := r.Refresh(ctx); err != nil {
		logger.Error("initial credential refresh failed", "error", err)
	}

	go r.loop(ctx, interval)
	return nil
}

// loop is the single background cycle driver. Key file events and timer
// ticks are folded into one select so refresh cycles never overlap.
func (r *Refresher) loop(ctx context.Context, interval time.Duration) {
	logger := logging.From(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if r.watchPath != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			logger.Warn("key file watch disabled", "error", err)
		} else {
			defer watcher.Close()
			// Watch the directory: key rotation usually replaces the
			// file rather than writing it in place.
			if err := watcher.Add(filepath.Dir(r.watchPath)); err != nil {
				logger.Warn("key file watch disabled", "path", r.watchPath, "error", err)
			} else {
				events = watcher.Events
				watchErrs = watcher.Errors
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("credential refresher stopped")
			return

		case <-ticker.C:

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != filepath.Clean(r.watchPath) ||
				!ev.Op.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			logger.Info("service account key file changed", "path", ev.Name)

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
			} else {
				logger.Warn("key file watcher error", "error", err)
			}
			continue
		}

		if err := r.Refresh(ctx); err != nil {
			logger.Error("credential refresh failed", "error", err)
		}
	}
}
