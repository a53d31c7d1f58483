package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/quake-feed-service/internal/cache"
	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
)

// ErrUpstreamUnavailable is returned when a refresh failed and there is no
// earlier capture to fall back on.
var ErrUpstreamUnavailable = errors.New("upstream unavailable and no cached records")

// publishTimeout bounds how long a fresh fetch waits on the snapshot publisher.
const publishTimeout = 10 * time.Second

// Source fetches the raw bulletin document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	URL() string
}

// Extractor turns a raw bulletin document into records in page order.
type Extractor interface {
	Extract(body []byte) ([]domain.SeismicRecord, error)
}

// Publisher fans a freshly captured record set out to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, records []domain.SeismicRecord, capturedAt time.Time) error
}

// Orchestrator serves record sets from the cache and refreshes it from the
// source on a miss. Concurrent misses share one upstream fetch.
type Orchestrator struct {
	source    Source
	extractor Extractor
	cache     *cache.Cache
	publisher Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	flights   singleflight.Group

	refreshInterval time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces the real clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithPublisher publishes every fresh capture. Publish failures are logged only.
func WithPublisher(p Publisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

// WithRefreshInterval enables the background refresher started by Run.
func WithRefreshInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.refreshInterval = d }
}

// New creates an Orchestrator over the given source, extractor, and cache.
func New(source Source, extractor Extractor, store *cache.Cache, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:    source,
		extractor: extractor,
		cache:     store,
		clock:     clockwork.NewRealClock(),
		logger:    logger,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type capture struct {
	records    []domain.SeismicRecord
	capturedAt time.Time
}

// GetRecordSet returns the current record set, refreshing it first when the
// cache is empty or stale. A failed refresh falls back to the stale capture,
// tagged with the failure. Without any capture the failure is returned wrapped
// in ErrUpstreamUnavailable, except for a reachable page with no valid rows,
// which yields an empty, uncached snapshot.
func (o *Orchestrator) GetRecordSet(ctx context.Context) (domain.Snapshot, error) {
	now := o.clock.Now()

	entry, fresh, ok := o.cache.Lookup(now)
	if fresh {
		o.metrics.CacheLookups.WithLabelValues("hit").Inc()
		o.logger.Debug("serving cached records", "records", len(entry.Records), "age", entry.Age(now))
		return domain.Snapshot{Records: entry.Records, Cached: true, LastUpdate: entry.CapturedAt}, nil
	}
	o.metrics.CacheLookups.WithLabelValues("miss").Inc()

	// A caller hanging up must not abort a fetch other callers are sharing.
	c, err := o.refresh(context.WithoutCancel(ctx), now)
	if err == nil {
		return domain.Snapshot{Records: c.records, Cached: false, LastUpdate: c.capturedAt}, nil
	}

	if ok {
		o.metrics.CacheLookups.WithLabelValues("stale").Inc()
		o.logger.Warn("refresh failed, serving stale records",
			"error", err,
			"records", len(entry.Records),
			"captured_at", entry.CapturedAt,
		)
		return domain.Snapshot{Records: entry.Records, Cached: true, LastUpdate: entry.CapturedAt, Err: err}, nil
	}

	if errors.Is(err, domain.ErrNoRecords) {
		return domain.Snapshot{Records: []domain.SeismicRecord{}, Cached: false, LastUpdate: now}, nil
	}
	return domain.Snapshot{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}

// Refresh fetches the source and replaces the cache regardless of freshness.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	_, err := o.refresh(ctx, o.clock.Now())
	return err
}

// refresh runs at most one fetch per source at a time; concurrent callers
// wait for and share its result.
func (o *Orchestrator) refresh(ctx context.Context, now time.Time) (capture, error) {
	v, err, shared := o.flights.Do(o.source.URL(), func() (any, error) {
		return o.fetch(ctx, now)
	})
	if shared {
		o.logger.Debug("joined in-flight fetch", "url", o.source.URL())
	}
	if err != nil {
		return capture{}, err
	}
	return v.(capture), nil
}

func (o *Orchestrator) fetch(ctx context.Context, now time.Time) (capture, error) {
	start := o.clock.Now()
	defer func() { o.metrics.FetchDuration.Observe(o.clock.Since(start).Seconds()) }()

	body, err := o.source.Fetch(ctx)
	if err != nil {
		o.metrics.FetchRequests.WithLabelValues("error").Inc()
		return capture{}, err
	}

	records, err := o.extractor.Extract(body)
	if err != nil {
		o.metrics.FetchRequests.WithLabelValues("error").Inc()
		return capture{}, fmt.Errorf("extract records: %w", err)
	}
	o.metrics.RecordsExtracted.Observe(float64(len(records)))

	if len(records) == 0 {
		o.metrics.FetchRequests.WithLabelValues("empty").Inc()
		return capture{}, domain.ErrNoRecords
	}

	domain.SortNewestFirst(records)
	o.cache.Put(records, now)
	o.metrics.FetchRequests.WithLabelValues("success").Inc()
	o.metrics.CachedRecords.Set(float64(len(records)))
	o.logger.Info("records refreshed", "records", len(records), "url", o.source.URL())

	o.publish(ctx, records, now)

	return capture{records: records, capturedAt: now}, nil
}

func (o *Orchestrator) publish(ctx context.Context, records []domain.SeismicRecord, capturedAt time.Time) {
	if o.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := o.publisher.Publish(ctx, records, capturedAt); err != nil {
		o.metrics.PublishErrors.Inc()
		o.logger.Warn("publish snapshot failed", "error", err, "records", len(records))
		return
	}
	o.metrics.SnapshotsPublished.Inc()
}

// CheckReadiness returns nil once a record set has been captured.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if _, ok := o.cache.Get(); !ok {
		return errors.New("no bulletin has been captured yet")
	}
	return nil
}

// Run refreshes the cache every refresh interval until ctx is cancelled.
// It returns immediately when no interval is configured.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.refreshInterval <= 0 {
		return nil
	}

	o.logger.Info("background refresh started", "interval", o.refreshInterval)
	o.metrics.RefreshRunning.Set(1)
	defer o.metrics.RefreshRunning.Set(0)

	// Failed refreshes retry with exponential backoff starting at 5s, capped at
	// the refresh interval so the bulletin site is never polled harder than normal.
	backoff := initialBackoff
	for {
		wait := o.refreshInterval
		if err := o.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				o.logger.Info("background refresh stopping", "reason", ctx.Err())
				return nil
			}
			o.logger.Error("background refresh failed", "error", err, "retry_in", backoff)
			wait = min(backoff, o.refreshInterval)
			backoff = nextBackoff(backoff, o.refreshInterval)
		} else {
			backoff = initialBackoff
		}

		if !o.sleepWithContext(ctx, wait) {
			o.logger.Info("background refresh stopping", "reason", ctx.Err())
			return nil
		}
	}
}

const initialBackoff = 5 * time.Second

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func (o *Orchestrator) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := o.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
