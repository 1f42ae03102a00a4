// internal/workers/fmv/recalculate-fmv/handler.go
package recalculatefmv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"chatnil-workers/internal/common/camunda"
	apperrors "chatnil-workers/internal/common/errors"
	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/common/metrics"
	"chatnil-workers/internal/common/retry"
	"chatnil-workers/internal/common/validation"
	"chatnil-workers/internal/scoring/fmv"
	"chatnil-workers/internal/workers/fmv/store"
	sendnotification "chatnil-workers/internal/workers/notifications/send-notification"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "recalculate-fmv"
)

var inputSchema = validation.MustSchema(TaskType, `{
	"type": "object",
	"required": ["athleteId", "profile"],
	"properties": {
		"athleteId": {"type": "string", "minLength": 1},
		"profile":   {"type": "object"}
	}
}`)

// Counter is the per-athlete daily recalculation counter. Reserve must check
// and take a slot atomically so concurrent jobs cannot pass the limit.
type Counter interface {
	Reserve(ctx context.Context, athleteID string, at time.Time, limit int) (bool, int, error)
	Release(ctx context.Context, athleteID string, at time.Time) error
}

type Repository interface {
	Previous(ctx context.Context, athleteID string) (*store.Previous, error)
	Save(ctx context.Context, s store.Snapshot) error
}

// Indexer publishes public scores for comparables search.
type Indexer interface {
	Upsert(ctx context.Context, doc store.Comparable) error
}

type Notifier interface {
	Dispatch(ctx context.Context, n sendnotification.Notification) (*sendnotification.Output, error)
}

// Handler gates FMV recalculation behind a daily limit, persists the result and
// its history, and queues score notifications without waiting for delivery.
type Handler struct {
	config       *Config
	calculator   *fmv.Calculator
	counter      Counter
	repo         Repository
	index        Indexer
	notifier     Notifier
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	now          func() time.Time
	pending      sync.WaitGroup
}

// NewHandler wires the gate. index and notifier may be nil.
func NewHandler(config *Config, calculator *fmv.Calculator, counter Counter, repo Repository, index Indexer, notifier Notifier, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		calculator:   calculator,
		counter:      counter,
		repo:         repo,
		index:        index,
		notifier:     notifier,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
		now:          time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if result := inputSchema.ValidateJSON(job.Variables); !result.Valid {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidInputError(result.Err().Error()))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output, retry.DefaultPolicy()); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.AthleteID == "" {
		return nil, apperrors.NewInvalidInputError("athleteId is required")
	}
	now := h.now().UTC()

	allowed, count, err := h.counter.Reserve(ctx, input.AthleteID, now, h.config.DailyLimit)
	if err != nil {
		return nil, apperrors.NewCacheUnavailableError(err)
	}
	if !allowed {
		metrics.FMVRecalculationsRejected.Inc()
		h.logger.Info("recalculation rate limited", map[string]interface{}{
			"athleteId": input.AthleteID,
			"used":      count,
			"limit":     h.config.DailyLimit,
		})
		return nil, &apperrors.RateLimitedError{
			Limit:   h.config.DailyLimit,
			Used:    count,
			ResetAt: store.NextReset(now),
		}
	}

	prev, err := h.repo.Previous(ctx, input.AthleteID)
	if err != nil {
		h.release(ctx, input.AthleteID, now)
		return nil, apperrors.NewQueryExecutionFailedError("fmv_previous", err)
	}

	profile := input.Profile
	profile.AthleteID = input.AthleteID
	profile.IsPublicScore = prev != nil && prev.IsPublicScore

	result := h.calculator.Calculate(profile)
	metrics.ObserveScore("fmv", result.FMVTier, result.FMVScore)

	out := &Output{
		FMV:           result,
		Notifications: []string{},
		Meta: Meta{
			IsRecalculation:       prev != nil,
			CalculationCountToday: count,
			RemainingToday:        max(h.config.DailyLimit-count, 0),
		},
	}

	baseline := notifyBaseline(prev)
	lastNotified := prev.LastNotified()
	if prev != nil {
		prevScore := prev.Score
		out.Meta.PreviousScore = &prevScore
		out.Meta.PreviousTier = prev.Tier
		out.Meta.ScoreChange = result.FMVScore - prev.Score
		out.Meta.TierChanged = prev.Tier != result.FMVTier
	}
	out.Meta.ShouldNotifyIncrease = fmv.ShouldNotifyScoreIncrease(result.FMVScore, baseline, h.config.NotifyDelta)
	out.Meta.ShouldEncourageSharing = !result.IsPublicScore &&
		fmv.ShouldEncouragePublicSharing(result.FMVScore, h.config.PublicThreshold)
	if out.Meta.ShouldNotifyIncrease {
		score := result.FMVScore
		lastNotified = &score
	}

	err = h.repo.Save(ctx, store.Snapshot{
		Result:            result,
		Trigger:           store.TriggerManual,
		CalculatedAt:      now,
		LastNotifiedScore: lastNotified,
		HistoryKeep:       h.config.HistoryKeep,
	})
	if err != nil {
		persistErr := apperrors.NewHistoryPersistFailedError(input.AthleteID, err)
		h.logger.Error("failed to persist fmv result", map[string]interface{}{
			"athleteId": input.AthleteID,
			"errorCode": persistErr.Code,
			"error":     persistErr.Details,
		})
	} else {
		out.Meta.Persisted = true
	}

	if result.IsPublicScore && h.index != nil {
		if err := h.index.Upsert(ctx, store.Comparable{
			AthleteID:    result.AthleteID,
			Sport:        profile.PrimarySport,
			Position:     profile.Position,
			SchoolName:   profile.SchoolName,
			FMVScore:     result.FMVScore,
			FMVTier:      result.FMVTier,
			IsPublic:     true,
			CalculatedAt: now,
		}); err != nil {
			h.logger.Warn("failed to index public score", map[string]interface{}{
				"athleteId": result.AthleteID,
				"error":     err,
			})
		}
	}

	if out.Meta.ShouldNotifyIncrease {
		h.notify(out, sendnotification.Notification{
			UserID: input.AthleteID,
			Type:   sendnotification.TypeScoreIncrease,
			Data: map[string]interface{}{
				"increase":       result.FMVScore - *baseline,
				"previous_score": *baseline,
				"current_score":  result.FMVScore,
			},
		})
	}
	if out.Meta.ShouldEncourageSharing {
		h.notify(out, sendnotification.Notification{
			UserID: input.AthleteID,
			Type:   sendnotification.TypeShareScore,
			Data: map[string]interface{}{
				"fmv_score": result.FMVScore,
				"fmv_tier":  strings.ToUpper(result.FMVTier),
			},
		})
	}
	if count == h.config.DailyLimit {
		h.notify(out, sendnotification.Notification{
			UserID: input.AthleteID,
			Type:   sendnotification.TypeRateLimit,
			Data: map[string]interface{}{
				"max_calculations":  h.config.DailyLimit,
				"calculations_used": count,
				"next_reset":        store.NextReset(now).Format(time.RFC3339),
			},
		})
	}

	if prev != nil && out.Meta.ScoreChange < -h.config.DecreaseNotice {
		out.Notice = fmt.Sprintf("Your score changed from %d to %d. Check your improvement suggestions for ways to increase it.",
			prev.Score, result.FMVScore)
		h.logger.Info("fmv score decreased", map[string]interface{}{
			"athleteId": input.AthleteID,
			"change":    out.Meta.ScoreChange,
		})
	}

	h.logger.Info("fmv recalculated", map[string]interface{}{
		"athleteId": input.AthleteID,
		"score":     result.FMVScore,
		"tier":      result.FMVTier,
		"count":     count,
		"persisted": out.Meta.Persisted,
	})
	return out, nil
}

// release returns a reserved slot when the recalculation did not happen.
func (h *Handler) release(ctx context.Context, athleteID string, at time.Time) {
	if err := h.counter.Release(ctx, athleteID, at); err != nil {
		h.logger.Warn("failed to release recalculation slot", map[string]interface{}{
			"athleteId": athleteID,
			"error":     err,
		})
	}
}

// notifyBaseline is the score an increase is measured from: the last notified
// score, or the previous score when no notification has gone out yet. A first
// calculation has none.
func notifyBaseline(prev *store.Previous) *int {
	if prev == nil {
		return nil
	}
	if n := prev.LastNotified(); n != nil {
		return n
	}
	score := prev.Score
	return &score
}

// notify records n on out and delivers it in the background.
func (h *Handler) notify(out *Output, n sendnotification.Notification) {
	out.Notifications = append(out.Notifications, n.Type)
	if h.notifier == nil {
		return
	}

	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.config.NotifyTimeout)
		defer cancel()

		if _, err := h.notifier.Dispatch(ctx, n); err != nil {
			sendErr := apperrors.NewNotificationSendFailedError(sendnotification.ChannelInApp, err)
			h.logger.Warn("notification not delivered", map[string]interface{}{
				"userId":    n.UserID,
				"type":      n.Type,
				"errorCode": sendErr.Code,
				"error":     sendErr.Details,
			})
		}
	}()
}

// Wait blocks until queued notifications finish.
func (h *Handler) Wait() {
	h.pending.Wait()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
