// internal/workers/notifications/match-stream/poller.go
package matchstream

import (
	"context"
	"time"

	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/common/metrics"
)

// MatchSource lists matches created after since. Matches pages oldest first;
// Recent returns the newest ones.
type MatchSource interface {
	Matches(ctx context.Context, sub Subscriber, since time.Time, limit int) ([]Match, error)
	Recent(ctx context.Context, sub Subscriber, since time.Time, limit int) ([]Match, error)
}

type LastCheckStore interface {
	LastCheck(ctx context.Context, userID string) (time.Time, bool, error)
	SetLastCheck(ctx context.Context, userID string, at time.Time) error
}

// Emitter writes one event to the subscriber. An error means the subscriber
// is gone and the poll loop stops.
type Emitter func(Event) error

// Poller runs the per-connection poll loop. One Poller serves any number of
// connections; all state lives in the LastCheckStore.
type Poller struct {
	config    *Config
	source    MatchSource
	store     LastCheckStore
	logger    logger.Logger
	now       func() time.Time
	newTicker func(time.Duration) (<-chan time.Time, func())
}

func NewPoller(config *Config, source MatchSource, store LastCheckStore, log logger.Logger) *Poller {
	return &Poller{
		config: config,
		source: source,
		store:  store,
		logger: log,
		now:    time.Now,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Run announces the connection, replays recent matches and then polls on
// every tick until ctx is done or emit fails.
func (p *Poller) Run(ctx context.Context, sub Subscriber, emit Emitter) error {
	err := emit(Event{Name: EventConnected, Data: ConnectedPayload{
		UserID:  sub.ID,
		Role:    sub.Role,
		Message: "Connected to match notifications",
	}})
	if err != nil {
		return err
	}
	if err := p.replay(ctx, sub, emit); err != nil {
		return err
	}

	ticks, stop := p.newTicker(p.config.Interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticks:
			if err := p.Tick(ctx, sub, emit); err != nil {
				return err
			}
		}
	}
}

// Tick runs one poll: matches newer than the last check, then a heartbeat.
// Matches are read oldest first in pages of BatchLimit and the last check
// moves after every page, so a burst larger than one page is delivered over
// several pages instead of being skipped. At most MaxPages are read per tick;
// the rest follow on the next tick. A failed query is logged and still
// followed by the heartbeat.
func (p *Poller) Tick(ctx context.Context, sub Subscriber, emit Emitter) error {
	now := p.now()
	since := p.since(ctx, sub.ID, now)

	delivered := 0
	var queryErr error
	for page := 0; page < p.maxPages(); page++ {
		matches, err := p.page(ctx, sub, since)
		if err != nil {
			queryErr = err
			p.logger.Warn("match poll failed", map[string]interface{}{
				"userId": sub.ID,
				"since":  since,
				"error":  err,
			})
			break
		}
		for _, m := range matches {
			if err := emit(NewMatchEvent(sub, m, false)); err != nil {
				return err
			}
		}
		delivered += len(matches)
		if len(matches) > 0 {
			since = newest(matches)
			p.remember(ctx, sub.ID, since)
		}
		if len(matches) < p.config.BatchLimit || ctx.Err() != nil {
			break
		}
	}

	switch {
	case queryErr != nil:
		metrics.MatchPollTicks.WithLabelValues("error").Inc()
	case delivered == 0:
		metrics.MatchPollTicks.WithLabelValues("empty").Inc()
	default:
		metrics.MatchPollTicks.WithLabelValues("matches").Inc()
	}

	return emit(Event{Name: EventHeartbeat, Data: HeartbeatPayload{Timestamp: now}})
}

func (p *Poller) maxPages() int {
	if p.config.MaxPages <= 0 {
		return 1
	}
	return p.config.MaxPages
}

func (p *Poller) replay(ctx context.Context, sub Subscriber, emit Emitter) error {
	if p.config.ReplayWindow <= 0 {
		return nil
	}
	matches, err := p.recent(ctx, sub, p.now().Add(-p.config.ReplayWindow))
	if err != nil {
		p.logger.Warn("match replay failed", map[string]interface{}{
			"userId": sub.ID,
			"error":  err,
		})
		return nil
	}
	if len(matches) == 0 {
		return nil
	}
	for _, m := range matches {
		if err := emit(NewMatchEvent(sub, m, true)); err != nil {
			return err
		}
	}

	// Move the last check forward only, so live ticks do not resend what was
	// just replayed.
	latest := newest(matches)
	stored, ok, err := p.store.LastCheck(ctx, sub.ID)
	if err == nil && ok && !latest.After(stored) {
		return nil
	}
	p.remember(ctx, sub.ID, latest)
	return nil
}

func (p *Poller) page(ctx context.Context, sub Subscriber, since time.Time) ([]Match, error) {
	qctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()
	return p.source.Matches(qctx, sub, since, p.config.BatchLimit)
}

func (p *Poller) recent(ctx context.Context, sub Subscriber, since time.Time) ([]Match, error) {
	qctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()
	return p.source.Recent(qctx, sub, since, p.config.BatchLimit)
}

// since falls back to now minus the lookback when nothing usable is stored.
func (p *Poller) since(ctx context.Context, userID string, now time.Time) time.Time {
	fallback := now.Add(-p.config.Lookback)
	at, ok, err := p.store.LastCheck(ctx, userID)
	if err != nil {
		p.logger.Warn("last-check unavailable", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
		return fallback
	}
	if !ok {
		return fallback
	}
	return at
}

func (p *Poller) remember(ctx context.Context, userID string, at time.Time) {
	if err := p.store.SetLastCheck(ctx, userID, at); err != nil {
		p.logger.Warn("failed to store last-check", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
	}
}

func newest(matches []Match) time.Time {
	var latest time.Time
	for _, m := range matches {
		if m.CreatedAt.After(latest) {
			latest = m.CreatedAt
		}
	}
	return latest
}
