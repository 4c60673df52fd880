package domain

import "strings"

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess  Level = "SUCCESS"
	LevelInfo     Level = "INFO"
	LevelAlert    Level = "ALERT"
	LevelCritical Level = "CRITICAL"
)

// DefaultCategory tags notifications added without a category.
const DefaultCategory = "GENERAL"

// NormalizeLevel maps a producer-supplied level onto the four known levels.
// Legacy warning and error levels become ALERT; anything unknown is INFO.
func NormalizeLevel(raw string) Level {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SUCCESS":
		return LevelSuccess
	case "INFO":
		return LevelInfo
	case "ALERT", "WARNING", "WARN", "ERROR":
		return LevelAlert
	case "CRITICAL":
		return LevelCritical
	default:
		return LevelInfo
	}
}

// NormalizeCategory upper-cases a category tag, defaulting to GENERAL.
func NormalizeCategory(raw string) string {
	category := strings.ToUpper(strings.TrimSpace(raw))
	if category == "" {
		return DefaultCategory
	}
	return category
}
