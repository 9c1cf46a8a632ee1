package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/repository"
)

const dateLayout = "2006-01-02"

// audit appends one entry stamped with now.
func audit(ctx context.Context, audits repository.AuditRepo, et domain.EntityType, id, field, oldValue, newValue, actor string, now time.Time) error {
	return audits.Append(ctx, &domain.AuditEntry{
		Timestamp:  now,
		EntityType: et,
		EntityID:   id,
		Field:      field,
		OldValue:   oldValue,
		NewValue:   newValue,
		Actor:      actor,
	})
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

// formatSpan renders planned bounds as "start..end" for audit values.
func formatSpan(start, end *time.Time) string {
	return formatDate(start) + ".." + formatDate(end)
}

func indexActions(actions []*domain.Action) map[string]*domain.Action {
	m := make(map[string]*domain.Action, len(actions))
	for _, a := range actions {
		m[a.ID] = a
	}
	return m
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

func configOrDefault(cfg ConfigProvider) ConfigProvider {
	if cfg == nil {
		return config.StaticSource(config.DefaultConfig())
	}
	return cfg
}
