package domain

import (
	"strconv"
	"time"
)

const (
	ScopeConsole  = "console"
	PrefActiveTab = "activeTab"
)

// Preference is a persisted per-scope setting such as the active tab.
type Preference struct {
	Scope     string
	Key       string
	Value     string
	UpdatedAt time.Time
}

// ChatScope names the preference scope of a telegram chat.
func ChatScope(chatID int64) string {
	return "chat:" + strconv.FormatInt(chatID, 10)
}

func SessionScope(sessionID string) string {
	return "session:" + sessionID
}
