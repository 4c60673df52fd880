package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.MustParse("pt-BR")

	message.SetString(lang, "notification.generic.title", "Notificação")
	message.SetString(lang, "notification.generic.body", "Algo mudou no CampTrack.")
	message.SetString(lang, "notification.camp.unknown", "um acampamento sem nome")
	message.SetString(lang, "notification.camp.created.title", "Acampamento criado")
	message.SetString(lang, "notification.camp.created.body", "Acampamento %s criado, começando em %s.")
	message.SetString(lang, "notification.camp.deleted.title", "Acampamento removido")
	message.SetString(lang, "notification.camp.deleted.body", "Acampamento %s removido.")
	message.SetString(lang, "notification.camp.updated.title", "Acampamento atualizado")
	message.SetString(lang, "notification.camp.updated.body", "Acampamento %s atualizado, de %s a %s.")
	message.SetString(lang, "notification.food.stock_set.title", "Estoque de comida atualizado")
	message.SetString(lang, "notification.food.stock_set.body", "Estoque de comida de %s definido para %d unidades.")
	message.SetString(lang, "notification.food.topped_up.title", "Comida reabastecida")
	message.SetString(lang, "notification.food.topped_up.body", "%d unidades de comida adicionadas a %s; estoque agora é %d.")
	message.SetString(lang, "notification.food.shortage.title", "Falta de comida")
	message.SetString(lang, "notification.food.shortage.body", "Acampamento %s tem %d unidades de comida, mas precisa de %d.")
	message.SetString(lang, "notification.food.used.title", "Comida consumida")
	message.SetString(lang, "notification.food.used.body", "%d unidades de comida consumidas em %s no dia %s; restam %d.")
	message.SetString(lang, "notification.leader.assigned.title", "Líder designado")
	message.SetString(lang, "notification.leader.assigned.body", "%s agora supervisiona %s.")
	message.SetString(lang, "notification.leader.unassigned.title", "Líder removido")
	message.SetString(lang, "notification.leader.unassigned.body", "%s não supervisiona mais %s.")
	message.SetString(lang, "notification.incident.reported.title", "Incidente registrado")
	message.SetString(lang, "notification.incident.reported.body", "Incidente em %s no dia %s: %s")
	message.SetString(lang, "notification.campers.assigned.title", "Campistas adicionados")
	message.SetString(lang, "notification.campers.assigned.body", "%d campistas adicionados a %s.")
	message.SetString(lang, "notification.message.camp_broadcast.title", "Mensagem para o acampamento")
	message.SetString(lang, "notification.message.camp_broadcast.body", "Mensagem enviada para %d líderes de %s.")
}
