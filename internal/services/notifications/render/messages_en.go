package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "notification.generic.title", defaultGenericTitle)
	message.SetString(lang, "notification.generic.body", defaultGenericBody)
	message.SetString(lang, "notification.camp.unknown", defaultUnknownCampName)
	message.SetString(lang, "notification.camp.created.title", "Camp created")
	message.SetString(lang, "notification.camp.created.body", "Camp %s created, starting %s.")
	message.SetString(lang, "notification.camp.deleted.title", "Camp deleted")
	message.SetString(lang, "notification.camp.deleted.body", "Camp %s deleted.")
	message.SetString(lang, "notification.camp.updated.title", "Camp updated")
	message.SetString(lang, "notification.camp.updated.body", "Camp %s updated, running %s to %s.")
	message.SetString(lang, "notification.food.stock_set.title", "Food stock updated")
	message.SetString(lang, "notification.food.stock_set.body", "Food stock for %s set to %d units.")
	message.SetString(lang, "notification.food.topped_up.title", "Food topped up")
	message.SetString(lang, "notification.food.topped_up.body", "Added %d food units to %s; stock is now %d.")
	message.SetString(lang, "notification.food.shortage.title", "Food shortage")
	message.SetString(lang, "notification.food.shortage.body", "Camp %s has %d food units but needs %d.")
	message.SetString(lang, "notification.food.used.title", "Food used")
	message.SetString(lang, "notification.food.used.body", "%d food units used at %s on %s; %d left.")
	message.SetString(lang, "notification.leader.assigned.title", "Leader assigned")
	message.SetString(lang, "notification.leader.assigned.body", "%s now supervises %s.")
	message.SetString(lang, "notification.leader.unassigned.title", "Leader unassigned")
	message.SetString(lang, "notification.leader.unassigned.body", "%s no longer supervises %s.")
	message.SetString(lang, "notification.incident.reported.title", "Incident reported")
	message.SetString(lang, "notification.incident.reported.body", "Incident at %s on %s: %s")
	message.SetString(lang, "notification.campers.assigned.title", "Campers assigned")
	message.SetString(lang, "notification.campers.assigned.body", "%d campers added to %s.")
	message.SetString(lang, "notification.message.camp_broadcast.title", "Camp broadcast")
	message.SetString(lang, "notification.message.camp_broadcast.body", "Message sent to %d leaders of %s.")
}
