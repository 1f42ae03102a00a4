// internal/workers/fmv/calculate-fmv/handler.go
package calculatefmv

import (
	"context"
	"encoding/json"
	"fmt"

	"chatnil-workers/internal/common/camunda"
	apperrors "chatnil-workers/internal/common/errors"
	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/common/metrics"
	"chatnil-workers/internal/common/retry"
	"chatnil-workers/internal/common/validation"
	"chatnil-workers/internal/scoring/fmv"
	"chatnil-workers/internal/workers/fmv/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-fmv"
)

var inputSchema = validation.MustSchema(TaskType, `{
	"type": "object",
	"required": ["profile"],
	"properties": {
		"athleteId":          {"type": "string"},
		"profile":            {"type": "object"},
		"includeComparables": {"type": "boolean"}
	}
}`)

// Searcher finds public athletes with similar scores.
type Searcher interface {
	Search(ctx context.Context, q store.ComparableQuery) ([]store.Comparable, error)
}

type Handler struct {
	config       *Config
	calculator   *fmv.Calculator
	search       Searcher
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewHandler builds the worker. search may be nil, in which case results carry
// no comparables.
func NewHandler(config *Config, calculator *fmv.Calculator, search Searcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		calculator:   calculator,
		search:       search,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
	}
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

// Execute validates the job variables and scores the profile.
func (h *Handler) Execute(ctx context.Context, variables string) (*Output, error) {
	if result := inputSchema.ValidateJSON(variables); !result.Valid {
		return nil, apperrors.NewInvalidInputError(result.Err().Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return h.execute(ctx, &input), nil
}

func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	profile := input.Profile
	if input.AthleteID != "" {
		profile.AthleteID = input.AthleteID
	}

	result := h.calculator.Calculate(profile)
	metrics.ObserveScore("fmv", result.FMVTier, result.FMVScore)

	out := &Output{FMV: result, Comparables: []store.Comparable{}}
	if input.IncludeComparables != nil && !*input.IncludeComparables {
		return out
	}
	if h.search == nil {
		return out
	}

	searchCtx, cancel := context.WithTimeout(ctx, h.config.SearchTimeout)
	defer cancel()

	comparables, err := h.search.Search(searchCtx, store.ComparableQuery{
		AthleteID: profile.AthleteID,
		Sport:     profile.PrimarySport,
		Score:     result.FMVScore,
		Range:     h.config.ComparablesRange,
		Limit:     h.config.ComparablesLimit,
	})
	if err != nil {
		searchErr := apperrors.NewSearchQueryFailedError("fmv_comparables", err)
		h.logger.Warn("comparables unavailable", map[string]interface{}{
			"athleteId": profile.AthleteID,
			"errorCode": searchErr.Code,
			"error":     searchErr.Details,
		})
		return out
	}

	out.Comparables = comparables
	out.ComparablesAvailable = true

	h.logger.Info("fmv calculated", map[string]interface{}{
		"athleteId":   profile.AthleteID,
		"score":       result.FMVScore,
		"tier":        result.FMVTier,
		"comparables": len(comparables),
	})
	return out
}
