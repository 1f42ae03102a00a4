// internal/workers/compliance/score-deal/handler.go
package scoredeal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chatnil-workers/internal/common/camunda"
	apperrors "chatnil-workers/internal/common/errors"
	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/common/metrics"
	"chatnil-workers/internal/common/retry"
	"chatnil-workers/internal/common/validation"
	"chatnil-workers/internal/scoring"
	"chatnil-workers/internal/scoring/compliance"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-deal-compliance"
)

var inputSchema = validation.MustSchema(TaskType, `{
	"type": "object",
	"required": ["dealId", "athleteId"],
	"properties": {
		"dealId":    {"type": "string", "minLength": 1},
		"athleteId": {"type": "string", "minLength": 1},
		"dealValue": {"type": "number", "minimum": 0},
		"athleteAge": {"type": "integer", "minimum": 0},
		"policyFitInputs":       {"type": "object"},
		"documentInputs":        {"type": "object"},
		"fmvInputs":             {"type": "object"},
		"taxInputs":             {"type": "object"},
		"brandSafetyInputs":     {"type": "object"},
		"guardianConsentInputs": {"type": "object"}
	}
}`)

type Handler struct {
	config       *Config
	engine       *scoring.Engine
	repo         Repository
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	now          func() time.Time
}

// NewHandler builds the compliance engine from config. repo may be nil to score
// without persisting.
func NewHandler(config *Config, repo Repository, log logger.Logger) (*Handler, error) {
	weights, err := ResolveWeights(config.Weights)
	if err != nil {
		return nil, apperrors.NewEngineConfigInvalidError(err)
	}
	engine, err := compliance.NewEngine(weights)
	if err != nil {
		return nil, apperrors.NewEngineConfigInvalidError(err)
	}

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	log.Debug("compliance engine ready", map[string]interface{}{
		"engine":     engine.Name(),
		"dimensions": engine.DimensionNames(),
	})
	return &Handler{
		config:       config,
		engine:       engine,
		repo:         repo,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
		now:          time.Now,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, job.Variables)
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

func (h *Handler) Execute(ctx context.Context, variables string) (*Output, error) {
	if result := inputSchema.ValidateJSON(variables); !result.Valid {
		return nil, apperrors.NewInvalidInputError(result.Err().Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return h.execute(ctx, &input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result := h.engine.Score(input.DealID, input.ScoreInput())
	metrics.ObserveScore("compliance", result.Tier, result.TotalScore)

	reasons := result.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	out := &Output{
		DealID:      input.DealID,
		AthleteID:   input.AthleteID,
		TotalScore:  result.TotalScore,
		Status:      result.Tier,
		Dimensions:  result.Dimensions,
		Order:       result.Order,
		Issues:      result.Issues,
		ReasonCodes: reasons,
		Weights:     h.engine.Weights(),
		ScoredAt:    h.now().UTC(),
	}

	if h.repo != nil {
		if err := h.repo.SaveScore(ctx, out); err != nil {
			return nil, apperrors.NewDatabaseInsertFailedError(err)
		}
		out.Persisted = true

		if err := h.repo.UpdateDealStatus(ctx, input.DealID, out.Status); err != nil {
			h.logger.Warn("failed to update deal compliance status", map[string]interface{}{
				"dealId": input.DealID,
				"status": out.Status,
				"error":  err,
			})
		}
	}

	h.logger.Info("deal compliance scored", map[string]interface{}{
		"dealId":  input.DealID,
		"score":   out.TotalScore,
		"status":  out.Status,
		"issues":  len(out.Issues),
		"reasons": out.ReasonCodes,
	})
	return out, nil
}
