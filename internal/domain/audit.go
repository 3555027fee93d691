package domain

import "time"

const (
	AuditAlertReviewed   = "alert.reviewed"
	AuditAlertStatus     = "alert.status"
	AuditDashboardReload = "dashboard.refresh"
	AuditQueryRun        = "query.run"
)

type AuditEntry struct {
	ID        uint
	Actor     string
	Action    string
	Target    string
	Detail    string
	CreatedAt time.Time
}
