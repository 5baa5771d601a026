// Package i18n resolves static UI strings. Content descriptions never go
// through here; those belong to the translate package.
package i18n

import "channelbot/internal/translate"

var catalog = map[translate.Lang]map[string]string{
	translate.LangEN: {
		"welcome":          "Welcome to the premium content channel!",
		"catalog_empty":    "No content available yet. Stay tuned!",
		"content_locked":   "This content requires a purchase to access.",
		"purchase_success": "Purchase successful! The content is now unlocked.",
		"already_owned":    "You already own this content.",
	},
	translate.LangES: {
		"welcome":          "¡Bienvenido al canal de contenido premium!",
		"catalog_empty":    "Aún no hay contenido disponible. ¡Mantente atento!",
		"content_locked":   "Este contenido requiere compra para acceder.",
		"purchase_success": "¡Compra exitosa! El contenido ya está desbloqueado.",
		"already_owned":    "Ya tienes este contenido.",
	},
	translate.LangPT: {
		"welcome":          "Bem-vindo ao canal de conteúdo premium!",
		"catalog_empty":    "Ainda não há conteúdo disponível. Fique atento!",
		"content_locked":   "Este conteúdo requer compra para acessar.",
		"purchase_success": "Compra concluída! O conteúdo já está desbloqueado.",
		"already_owned":    "Você já possui este conteúdo.",
	},
}

// T looks up a UI string, falling back to English, then to the key itself so
// a missing entry is visible rather than blank.
func T(key string, lang translate.Lang) string {
	if msgs, ok := catalog[lang]; ok {
		if s, ok := msgs[key]; ok {
			return s
		}
	}
	if s, ok := catalog[translate.LangEN][key]; ok {
		return s
	}
	return key
}
