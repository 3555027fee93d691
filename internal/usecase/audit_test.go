package usecase

import (
	"context"
	"testing"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAuditorRecordsActor(t *testing.T) {
	repo := &memAudit{}
	auditor := NewAuditor(repo, zaptest.NewLogger(t))

	auditor.Record(context.Background(), domain.AuditAlertStatus, "a-1", "closed")
	auditor.Record(WithActor(context.Background(), "chat:5"), domain.AuditAlertReviewed, "a-2", "")

	entries, err := auditor.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "chat:5", entries[0].Actor)
	assert.Equal(t, "unknown", entries[1].Actor)
	assert.Equal(t, "closed", entries[1].Detail)
}

func TestNilAuditorIsNoop(t *testing.T) {
	var auditor *Auditor
	auditor.Record(context.Background(), domain.AuditQueryRun, "", "q")
	entries, err := auditor.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)

	withoutRepo := NewAuditor(nil, zaptest.NewLogger(t))
	withoutRepo.Record(context.Background(), domain.AuditQueryRun, "", "q")
	entries, err = withoutRepo.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
