// Package render produces localized notification copy for camp events.
package render

import (
	"strings"

	"golang.org/x/text/message"
)

// Topics name the camp events that produce notifications.
const (
	TopicCampCreated      = "camp.created"
	TopicCampDeleted      = "camp.deleted"
	TopicCampUpdated      = "camp.updated"
	TopicFoodStockSet     = "food.stock_set"
	TopicFoodToppedUp     = "food.topped_up"
	TopicFoodShortage     = "food.shortage"
	TopicFoodUsed         = "food.used"
	TopicLeaderAssigned   = "leader.assigned"
	TopicLeaderUnassigned = "leader.unassigned"
	TopicIncidentReported = "incident.reported"
	TopicCampersAssigned  = "campers.assigned"
	TopicBroadcastToCamp  = "message.camp_broadcast"
)

const (
	defaultGenericTitle    = "Notification"
	defaultGenericBody     = "Something changed in CampTrack."
	defaultUnknownCampName = "an unnamed camp"
)

// Input is one render request.
type Input struct {
	Topic   string
	Payload Payload
}

// Payload carries the values a topic may interpolate. Unused fields are
// ignored.
type Payload struct {
	Camp        string
	Leader      string
	Camps       []string
	Campers     []string
	Amount      int
	Stock       int
	Required    int
	Date        string
	EndDate     string
	Description string
	Recipients  int
}

// Output is localized copy for one notification.
type Output struct {
	Title    string
	BodyText string
}

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Render returns localized copy for one camp event. Unknown topics and
// missing catalog entries fall back to generic copy.
func Render(loc Localizer, input Input) Output {
	p := input.Payload
	camp := strings.TrimSpace(p.Camp)
	if camp == "" {
		camp = localizeWithFallback(loc, "notification.camp.unknown", defaultUnknownCampName)
	}

	var args []any
	switch normalizeToken(input.Topic) {
	case TopicCampCreated:
		args = []any{camp, p.Date}
	case TopicCampDeleted:
		args = []any{camp}
	case TopicCampUpdated:
		args = []any{camp, p.Date, p.EndDate}
	case TopicFoodStockSet:
		args = []any{camp, p.Stock}
	case TopicFoodToppedUp:
		args = []any{p.Amount, camp, p.Stock}
	case TopicFoodShortage:
		args = []any{camp, p.Stock, p.Required}
	case TopicFoodUsed:
		args = []any{p.Amount, camp, p.Date, p.Stock}
	case TopicLeaderAssigned, TopicLeaderUnassigned:
		args = []any{p.Leader, strings.Join(p.Camps, ", ")}
	case TopicIncidentReported:
		args = []any{camp, p.Date, p.Description}
	case TopicCampersAssigned:
		args = []any{len(p.Campers), camp}
	case TopicBroadcastToCamp:
		args = []any{p.Recipients, camp}
	default:
		return genericOutput(loc)
	}
	return topicOutput(loc, normalizeToken(input.Topic), args...)
}

func topicOutput(loc Localizer, topic string, args ...any) Output {
	titleKey := "notification." + topic + ".title"
	bodyKey := "notification." + topic + ".body"
	title := localize(loc, titleKey)
	body := localize(loc, bodyKey, args...)
	if title == titleKey || strings.HasPrefix(body, bodyKey) || strings.TrimSpace(body) == "" {
		return genericOutput(loc)
	}
	return Output{Title: title, BodyText: body}
}

func genericOutput(loc Localizer) Output {
	return Output{
		Title:    localizeWithFallback(loc, "notification.generic.title", defaultGenericTitle),
		BodyText: localizeWithFallback(loc, "notification.generic.body", defaultGenericBody),
	}
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}

func localizeWithFallback(loc Localizer, key string, fallback string) string {
	value := strings.TrimSpace(localize(loc, key))
	if value == "" || value == key {
		return fallback
	}
	return value
}

func normalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
