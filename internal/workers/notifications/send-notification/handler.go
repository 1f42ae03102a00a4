// internal/workers/notifications/send-notification/handler.go
package sendnotification

import (
	"context"
	"encoding/json"

	"chatnil-workers/internal/common/camunda"
	apperrors "chatnil-workers/internal/common/errors"
	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/common/retry"
	"chatnil-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "send-notification"
)

var inputSchema = validation.MustSchema(TaskType, `{
	"type": "object",
	"required": ["userId", "type"],
	"properties": {
		"userId":   {"type": "string", "minLength": 1},
		"type":     {"type": "string", "enum": ["score_increase", "score_decrease", "share_score", "stale_score", "rate_limit", "calculation_available", "new_match"]},
		"priority": {"type": "string", "enum": ["high", "medium", "low"]},
		"data":     {"type": "object"}
	}
}`)

type Handler struct {
	config       *Config
	dispatcher   *Dispatcher
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, dispatcher *Dispatcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		dispatcher:   dispatcher,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
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

// Execute validates raw job variables and dispatches the notification.
func (h *Handler) Execute(ctx context.Context, variables string) (*Output, error) {
	if result := inputSchema.ValidateJSON(variables); !result.Valid {
		return nil, apperrors.NewInvalidInputError(result.Err().Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	return h.dispatcher.Dispatch(ctx, input.Notification)
}
