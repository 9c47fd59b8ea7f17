package cbr

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/credit-assessment/internal/metrics"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// KeyRateFetcher retrieves the current reference rate
type KeyRateFetcher interface {
	GetKeyRate(ctx context.Context) (float64, error)
}

// Refresher keeps the cached key rate up to date on a cron schedule
type Refresher struct {
	fetcher KeyRateFetcher
	cache   RateCache
	ttl     time.Duration
	timeout time.Duration
	log     *logrus.Logger
	cron    *cron.Cron
}

// NewRefresher creates a refresher; call Start to schedule it
func NewRefresher(fetcher KeyRateFetcher, cache RateCache, ttl time.Duration, log *logrus.Logger) *Refresher {
	return &Refresher{
		fetcher: fetcher,
		cache:   cache,
		ttl:     ttl,
		timeout: 15 * time.Second,
		log:     log,
		cron:    cron.New(),
	}
}

// Start refreshes once immediately and then on every tick of schedule
func (r *Refresher) Start(schedule string) error {
	if _, err := r.cron.AddFunc(schedule, r.tick); err != nil {
		return fmt.Errorf("failed to schedule key rate refresh: %w", err)
	}
	go r.tick()
	r.cron.Start()
	r.log.Infof("Key rate refresh scheduled: %s", schedule)
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Refresher) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.Refresh(ctx); err != nil {
		r.log.Warnf("Key rate refresh failed: %v", err)
	}
}

// Refresh fetches the key rate and stores it in the cache
func (r *Refresher) Refresh(ctx context.Context) error {
	rate, err := r.fetcher.GetKeyRate(ctx)
	if err != nil {
		metrics.KeyRateRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to fetch key rate: %w", err)
	}
	if err := r.cache.Set(ctx, rate, r.ttl); err != nil {
		metrics.KeyRateRefreshes.WithLabelValues("error").Inc()
		return err
	}
	metrics.KeyRateRefreshes.WithLabelValues("ok").Inc()
	return nil
}

// CurrentRate returns the cached rate
func (r *Refresher) CurrentRate(ctx context.Context) (float64, error) {
	return r.cache.Get(ctx)
}
