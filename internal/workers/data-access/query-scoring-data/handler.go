// internal/workers/data-access/query-scoring-data/handler.go
package queryscoringdata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"chatnil-workers/internal/common/camunda"
	apperrors "chatnil-workers/internal/common/errors"
	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/common/retry"
	"chatnil-workers/internal/common/validation"
	"chatnil-workers/internal/workers/data-access/query-scoring-data/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/jmoiron/sqlx"
)

const (
	TaskType = "query-scoring-data"
)

var inputSchema = validation.MustSchema(TaskType, `{
	"type": "object",
	"required": ["queryType"],
	"properties": {
		"queryType": {"type": "string", "minLength": 1},
		"athleteId": {"type": "string"},
		"agencyId":  {"type": "string"},
		"userId":    {"type": "string"},
		"limit":     {"type": "integer", "minimum": 0}
	}
}`)

// Handler runs one whitelisted read query per job: score history, stored
// compliance scores, agency matches or unread notifications.
type Handler struct {
	config       *Config
	db           *sqlx.DB
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           sqlx.NewDb(db, "postgres"),
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
	queryType := queries.QueryType(input.QueryType)
	if _, exists := queries.Registry[queryType]; !exists {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("unknown queryType %q", input.QueryType))
	}

	params := queries.Params{
		AthleteID: input.AthleteID,
		AgencyID:  input.AgencyID,
		UserID:    input.UserID,
		Limit:     h.limit(input.Limit),
	}

	data, rowCount, execTime, err := queries.Execute(ctx, h.db, queryType, params)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrMissingParam):
			return nil, apperrors.NewInvalidInputError(err.Error())
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, apperrors.NewQueryTimeoutError(input.QueryType)
		default:
			return nil, apperrors.NewQueryExecutionFailedError(input.QueryType, err)
		}
	}

	h.logger.Debug("query executed", map[string]interface{}{
		"queryType": input.QueryType,
		"rowCount":  rowCount,
		"ms":        execTime,
	})
	return &Output{
		Data:               data,
		RowCount:           rowCount,
		QueryExecutionTime: execTime,
	}, nil
}

func (h *Handler) limit(requested int) int {
	switch {
	case requested <= 0:
		return h.config.DefaultLimit
	case requested > h.config.MaxLimit:
		return h.config.MaxLimit
	default:
		return requested
	}
}
