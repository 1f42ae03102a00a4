// internal/workers/notifications/send-notification/dispatcher.go
package sendnotification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "chatnil-workers/internal/common/errors"
	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/common/metrics"

	"github.com/google/uuid"
)

// EmailSender is satisfied by the SES client.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
}

// SMSSender is satisfied by the SNS client.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

// Dispatcher stores a notification row and pushes it out by email and, for
// urgent ones, SMS. It is shared by the worker, the FMV recompute gate and the
// stale score sweep.
type Dispatcher struct {
	config    *Config
	db        *sql.DB
	email     EmailSender
	sms       SMSSender
	templates map[string]Template
	logger    logger.Logger
	now       func() time.Time
}

// NewDispatcher builds a dispatcher. email and sms may be nil, which disables
// that channel.
func NewDispatcher(config *Config, db *sql.DB, email EmailSender, sms SMSSender, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		config:    config,
		db:        db,
		email:     email,
		sms:       sms,
		templates: mergeTemplates(config.Templates),
		logger:    log,
		now:       time.Now,
	}
}

// Dispatch delivers n. An unknown user yields status disabled without error.
// External channel failures mark the output failed; only storage errors are
// returned.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) (*Output, error) {
	tmpl, ok := d.templates[n.Type]
	if !ok {
		return nil, apperrors.NewTemplateNotFoundError(n.Type)
	}
	priority := n.Priority
	if priority == "" {
		priority = tmpl.Priority
	}

	title := renderTemplate(tmpl.Title, n.Data)
	message := renderTemplate(tmpl.Body, n.Data)
	sentAt := d.now().UTC()
	out := &Output{
		NotificationID: uuid.New().String(),
		Title:          title,
		Message:        message,
		Channels:       []string{},
		SentAt:         sentAt.Format(time.RFC3339),
	}

	email, phone, err := d.recipientContact(ctx, n.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		d.logger.Warn("recipient not found", map[string]interface{}{
			"userId": n.UserID,
			"type":   n.Type,
		})
		out.Status = StatusDisabled
		return out, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("notification_recipient", err)
	}

	if err := d.store(ctx, out, n, priority, sentAt); err != nil {
		return nil, err
	}
	out.Channels = append(out.Channels, ChannelInApp)
	metrics.NotificationsSent.WithLabelValues(n.Type, ChannelInApp).Inc()
	out.Status = StatusSent

	if d.config.EmailEnabled && d.email != nil && email != "" {
		if _, err := d.email.SendEmail(ctx, email, title, message); err != nil {
			d.logger.Error("email send failed", map[string]interface{}{
				"error":  err,
				"userId": n.UserID,
				"type":   n.Type,
			})
			out.Status = StatusFailed
		} else {
			out.Channels = append(out.Channels, ChannelEmail)
			metrics.NotificationsSent.WithLabelValues(n.Type, ChannelEmail).Inc()
		}
	}

	if d.config.SMSEnabled && d.sms != nil && phone != "" && atLeast(priority, d.config.SMSPriority) {
		if _, err := d.sms.SendSMS(ctx, phone, title+": "+message); err != nil {
			d.logger.Error("SMS send failed", map[string]interface{}{
				"error":  err,
				"userId": n.UserID,
				"type":   n.Type,
			})
			out.Status = StatusFailed
		} else {
			out.Channels = append(out.Channels, ChannelSMS)
			metrics.NotificationsSent.WithLabelValues(n.Type, ChannelSMS).Inc()
		}
	}

	d.logger.Info("notification dispatched", map[string]interface{}{
		"notificationId": out.NotificationID,
		"userId":         n.UserID,
		"type":           n.Type,
		"status":         out.Status,
		"channels":       strings.Join(out.Channels, ","),
	})
	return out, nil
}

func (d *Dispatcher) recipientContact(ctx context.Context, userID string) (string, string, error) {
	var email, phone string
	err := d.db.QueryRowContext(ctx,
		`SELECT COALESCE(email, ''), COALESCE(phone, '') FROM users WHERE id = $1`,
		userID).Scan(&email, &phone)
	return email, phone, err
}

func (d *Dispatcher) store(ctx context.Context, out *Output, n Notification, priority string, at time.Time) error {
	meta := n.Data
	if meta == nil {
		meta = map[string]interface{}{}
	}
	metadata, err := json.Marshal(meta)
	if err != nil {
		return apperrors.NewInvalidInputError(fmt.Sprintf("notification data is not JSON encodable: %v", err))
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, priority, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		out.NotificationID, n.UserID, n.Type, out.Title, out.Message, priority, metadata, at)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}
