package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lumiforge/adpilot-backend/internal/models"
	"github.com/lumiforge/adpilot-backend/internal/ydb"
)

const (
	ActionResultSuccess = "success"
	ActionResultFailure = "failure"
)

// Service coordinates audit logging and retrieval
// It ensures consistent defaults and shields handlers from storage specifics
type Service struct {
	db  ydb.Database
	log *slog.Logger
}

// NewService builds an audit service instance
func NewService(db ydb.Database, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{db: db, log: log}
}

// Record captures runtime context of an action
type Record struct {
	ID           string
	Timestamp    time.Time
	UserID       *string
	ActorID      *string
	ActionType   string
	ActionResult string
	IPAddress    *string
	UserAgent    *string
	Details      map[string]any
}

// Filter describes query options for reading audit events
type Filter struct {
	UserID     string
	ActorID    string
	ActionType string
	Result     string
	From       *time.Time
	To         *time.Time
	Limit      int
}

// LogAction stores audit record synchronously
func (s *Service) LogAction(ctx context.Context, record Record) error {
	if record.ActionType == "" {
		return errors.New("action_type is required")
	}
	if record.ActionResult == "" {
		record.ActionResult = ActionResultSuccess
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	detailsJSON := "{}"
	if len(record.Details) > 0 {
		data, err := json.Marshal(record.Details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
		detailsJSON = string(data)
	}

	ydbRecord := &ydb.AuditLog{
		ID:           record.ID,
		Timestamp:    record.Timestamp,
		UserID:       record.UserID,
		ActorID:      record.ActorID,
		ActionType:   record.ActionType,
		ActionResult: record.ActionResult,
		IPAddress:    record.IPAddress,
		UserAgent:    record.UserAgent,
		DetailsJSON:  detailsJSON,
	}

	if err := s.db.InsertAuditLog(ctx, ydbRecord); err != nil {
		s.log.Error("failed to write audit log", "error", err, "action", record.ActionType)
		return err
	}
	return nil
}

// LogActionAsync stores audit record without blocking the caller.
// Write failures are logged and alerted, never returned.
func (s *Service) LogActionAsync(record Record) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.LogAction(ctx, record)
	}()
}

// ListAuditLogs fetches stored events matching filter
func (s *Service) ListAuditLogs(ctx context.Context, filter Filter) ([]*models.AuditLog, error) {
	ydbFilter := &ydb.AuditLogFilter{
		UserID:     filter.UserID,
		ActorID:    filter.ActorID,
		ActionType: filter.ActionType,
		Result:     filter.Result,
		From:       filter.From,
		To:         filter.To,
		Limit:      filter.Limit,
	}

	entries, err := s.db.ListAuditLogs(ctx, ydbFilter)
	if err != nil {
		return nil, err
	}

	result := make([]*models.AuditLog, 0, len(entries))
	for _, entry := range entries {
		modelEntry := &models.AuditLog{
			ID:           entry.ID,
			Timestamp:    entry.Timestamp,
			ActionType:   entry.ActionType,
			ActionResult: entry.ActionResult,
			Details:      json.RawMessage(entry.DetailsJSON),
		}
		if entry.UserID != nil {
			modelEntry.UserID = *entry.UserID
		}
		if entry.ActorID != nil {
			modelEntry.ActorID = *entry.ActorID
		}
		if entry.IPAddress != nil {
			modelEntry.IPAddress = *entry.IPAddress
		}
		if entry.UserAgent != nil {
			modelEntry.UserAgent = *entry.UserAgent
		}
		result = append(result, modelEntry)
	}

	return result, nil
}
