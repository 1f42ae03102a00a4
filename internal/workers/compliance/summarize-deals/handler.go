// internal/workers/compliance/summarize-deals/handler.go
package summarizedeals

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"chatnil-workers/internal/common/camunda"
	apperrors "chatnil-workers/internal/common/errors"
	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/common/retry"
	"chatnil-workers/internal/common/validation"
	"chatnil-workers/internal/scoring"
	"chatnil-workers/internal/scoring/compliance"
	scoredeal "chatnil-workers/internal/workers/compliance/score-deal"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "summarize-deal-compliance"
)

var inputSchema = validation.MustSchema(TaskType, `{
	"type": "object",
	"required": ["athleteId"],
	"properties": {
		"athleteId": {"type": "string", "minLength": 1},
		"deals": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id"],
				"properties": {
					"id":          {"type": "string", "minLength": 1},
					"value":       {"type": "number", "minimum": 0},
					"storedScore": {"type": "integer"},
					"input":       {"type": "object"}
				}
			}
		}
	}
}`)

type Handler struct {
	config       *Config
	engine       *scoring.Engine
	loader       DealLoader
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	seed         func() int64
}

// NewHandler builds the dashboard worker. loader may be nil when deals always
// arrive in the job variables.
func NewHandler(config *Config, loader DealLoader, log logger.Logger) (*Handler, error) {
	weights, err := scoredeal.ResolveWeights(config.Weights)
	if err != nil {
		return nil, apperrors.NewEngineConfigInvalidError(err)
	}
	engine, err := compliance.NewEngine(weights)
	if err != nil {
		return nil, apperrors.NewEngineConfigInvalidError(err)
	}

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	h := &Handler{
		config:       config,
		engine:       engine,
		loader:       loader,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
	}
	h.seed = func() int64 {
		if h.config.MockSeed != 0 {
			return h.config.MockSeed
		}
		return time.Now().UnixNano()
	}
	return h, nil
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
	deals := input.Deals
	if deals == nil && h.loader != nil {
		loaded, err := h.loader.DealsForAthlete(ctx, input.AthleteID)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("compliance_deals", err)
		}
		deals = loaded
	}

	// rand.Rand is not safe for concurrent use, so each job gets its own.
	mock := scoring.NewMockGenerator(rand.New(rand.NewSource(h.seed())), h.config.MockVariance)
	summary := compliance.NewScorer(h.engine, mock).Summarize(deals)

	h.logger.Info("deal compliance summarized", map[string]interface{}{
		"athleteId":      input.AthleteID,
		"deals":          len(summary.Deals),
		"needsAttention": len(summary.DealsNeedingAttention),
		"overallScore":   summary.OverallScore,
		"overallStatus":  summary.OverallStatus,
	})

	return &Output{AthleteID: input.AthleteID, Summary: summary}, nil
}
