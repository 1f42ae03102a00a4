// internal/workers/matching/calculate-match-score/handler.go
package calculatematchscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"chatnil-workers/internal/common/camunda"
	apperrors "chatnil-workers/internal/common/errors"
	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/common/metrics"
	"chatnil-workers/internal/common/retry"
	"chatnil-workers/internal/common/validation"
	"chatnil-workers/internal/scoring/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "calculate-match-score"
)

var inputSchema = validation.MustSchema(TaskType, `{
	"type": "object",
	"required": ["agency"],
	"properties": {
		"agency": {
			"type": "object",
			"required": ["id"],
			"properties": {"id": {"type": "string", "minLength": 1}}
		},
		"athleteId":    {"type": "string"},
		"athlete":      {"type": "object"},
		"persistMatch": {"type": "boolean"}
	}
}`)

// AthleteSource resolves an athlete by id. A missing athlete is (nil, nil).
type AthleteSource interface {
	Athlete(ctx context.Context, athleteID string) (*matching.Athlete, error)
}

type Handler struct {
	config       *Config
	matcher      *matching.Matcher
	profiles     AthleteSource
	db           *sql.DB
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	now          func() time.Time
}

// NewHandler builds the worker. db is only used to record matches and may be nil.
func NewHandler(config *Config, matcher *matching.Matcher, profiles AthleteSource, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		matcher:      matcher,
		profiles:     profiles,
		db:           db,
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
	if input.Agency.ID == "" {
		return nil, apperrors.NewInvalidInputError("agency.id is required")
	}

	athlete := input.Athlete
	if athlete == nil && input.AthleteID != "" && h.profiles != nil {
		var err error
		athlete, err = h.profiles.Athlete(ctx, input.AthleteID)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("athlete_profile", err)
		}
		if athlete == nil {
			h.logger.Warn("athlete profile not found, scoring neutral", map[string]interface{}{
				"athleteId": input.AthleteID,
			})
		}
	}
	if athlete != nil && athlete.ID == "" {
		athlete.ID = input.AthleteID
	}

	result := h.matcher.Score(input.Agency, athlete)
	metrics.ObserveScore("matching", result.Tier, result.Score)

	out := &Output{Result: result, ProfileFound: athlete != nil}

	if input.PersistMatch && athlete != nil && h.db != nil {
		id, err := h.recordMatch(ctx, result)
		if err != nil {
			return nil, apperrors.NewDatabaseInsertFailedError(err)
		}
		out.MatchID = id
	}

	h.logger.Info("match score calculated", map[string]interface{}{
		"agencyId":  result.AgencyID,
		"athleteId": result.AthleteID,
		"score":     result.Score,
		"tier":      result.Tier,
	})
	return out, nil
}

func (h *Handler) recordMatch(ctx context.Context, r *matching.Result) (string, error) {
	reasons, err := json.Marshal(r.Highlights)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO agency_athlete_matches (id, agency_id, athlete_id, match_score, match_tier, match_reasons, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, r.AgencyID, r.AthleteID, r.Score, r.Tier, reasons, h.now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
