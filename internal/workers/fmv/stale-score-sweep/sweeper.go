// internal/workers/fmv/stale-score-sweep/sweeper.go

// Package stalescoresweep reminds athletes about old FMV scores on a cron
// schedule. Each athlete gets at most one reminder of a kind per calculation.
package stalescoresweep

import (
	"context"
	"time"

	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/workers/fmv/store"
	sendnotification "chatnil-workers/internal/workers/notifications/send-notification"
)

const day = 24 * time.Hour

type Repository interface {
	StaleScores(ctx context.Context, cutoff time.Time, notifyType string, limit int) ([]store.StaleScore, error)
}

type Counter interface {
	Used(ctx context.Context, athleteID string, at time.Time) (int, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, n sendnotification.Notification) (*sendnotification.Output, error)
}

// Result summarizes one sweep.
type Result struct {
	Stale     int `json:"stale"`
	Available int `json:"available"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type Sweeper struct {
	config   *Config
	repo     Repository
	counter  Counter
	notifier Notifier
	logger   logger.Logger
	now      func() time.Time
}

// NewSweeper builds a sweeper. counter may be nil, in which case the full daily
// limit is reported as remaining.
func NewSweeper(config *Config, repo Repository, counter Counter, notifier Notifier, log logger.Logger) *Sweeper {
	return &Sweeper{
		config:   config,
		repo:     repo,
		counter:  counter,
		notifier: notifier,
		logger:   log.WithFields(map[string]interface{}{"component": "stale-score-sweep"}),
		now:      time.Now,
	}
}

// Run sends stale_score reminders to athletes past StaleAfterDays, then
// calculation_available reminders to athletes past AvailableAfterDays who are
// not yet stale. A query failure aborts the sweep; delivery failures are
// counted and skipped.
func (s *Sweeper) Run(ctx context.Context) (*Result, error) {
	now := s.now().UTC()
	staleCutoff := now.Add(-time.Duration(s.config.StaleAfterDays) * day)
	availableCutoff := now.Add(-time.Duration(s.config.AvailableAfterDays) * day)
	res := &Result{}

	stale, err := s.repo.StaleScores(ctx, staleCutoff, sendnotification.TypeStaleScore, s.config.BatchLimit)
	if err != nil {
		return nil, err
	}
	for _, row := range stale {
		days := int(now.Sub(row.LastCalculatedAt) / day)
		s.send(ctx, res, &res.Stale, sendnotification.Notification{
			UserID: row.AthleteID,
			Type:   sendnotification.TypeStaleScore,
			Data: map[string]interface{}{
				"days_since_calculation": days,
				"fmv_score":              row.Score,
			},
		})
	}

	candidates, err := s.repo.StaleScores(ctx, availableCutoff, sendnotification.TypeCalculationAvailable, s.config.BatchLimit)
	if err != nil {
		return nil, err
	}
	for _, row := range candidates {
		if row.LastCalculatedAt.Before(staleCutoff) {
			res.Skipped++
			continue
		}
		remaining := s.config.DailyLimit
		if s.counter != nil {
			used, err := s.counter.Used(ctx, row.AthleteID, now)
			if err != nil {
				s.logger.Warn("recalculation counter unavailable", map[string]interface{}{
					"athleteId": row.AthleteID,
					"error":     err,
				})
			} else {
				remaining = max(remaining-used, 0)
			}
		}
		if remaining == 0 {
			res.Skipped++
			continue
		}
		s.send(ctx, res, &res.Available, sendnotification.Notification{
			UserID: row.AthleteID,
			Type:   sendnotification.TypeCalculationAvailable,
			Data: map[string]interface{}{
				"remaining_calculations": remaining,
			},
		})
	}

	s.logger.Info("stale score sweep finished", map[string]interface{}{
		"stale":     res.Stale,
		"available": res.Available,
		"skipped":   res.Skipped,
		"failed":    res.Failed,
	})
	return res, nil
}

func (s *Sweeper) send(ctx context.Context, res *Result, sent *int, n sendnotification.Notification) {
	out, err := s.notifier.Dispatch(ctx, n)
	if err != nil || (out != nil && out.Status == sendnotification.StatusFailed) {
		res.Failed++
		s.logger.Warn("reminder not delivered", map[string]interface{}{
			"userId": n.UserID,
			"type":   n.Type,
			"error":  err,
		})
		return
	}
	*sent++
}
