package usecase

import (
	"context"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"go.uber.org/zap"
)

type actorKey struct{}

// WithActor tags ctx with the operator identity recorded in the audit log.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return "unknown"
}

// Auditor records operator mutations. Entries always go to the log and are
// also persisted when a repository is configured.
type Auditor struct {
	repo   domain.AuditRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewAuditor(repo domain.AuditRepository, logger *zap.Logger) *Auditor {
	return &Auditor{repo: repo, logger: logger, now: time.Now}
}

func (a *Auditor) Record(ctx context.Context, action, target, detail string) {
	if a == nil {
		return
	}
	entry := &domain.AuditEntry{
		Actor:     ActorFrom(ctx),
		Action:    action,
		Target:    target,
		Detail:    detail,
		CreatedAt: a.now().UTC(),
	}
	a.logger.Info(
		"audit",
		zap.String("actor", entry.Actor),
		zap.String("action", action),
		zap.String("target", target),
		zap.String("detail", detail),
	)
	if a.repo == nil {
		return
	}
	if err := a.repo.Append(ctx, entry); err != nil {
		a.logger.Warn("failed to persist audit entry", zap.String("action", action), zap.Error(err))
	}
}

// Recent lists persisted entries, newest first. Without a repository it
// returns nothing.
func (a *Auditor) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if a == nil || a.repo == nil {
		return nil, nil
	}
	return a.repo.Recent(ctx, limit)
}
