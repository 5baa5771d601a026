package translate

// dictionaries hold per-language replacements for the fixed set of domain
// terms that show up in content descriptions. Keys are base-language (en)
// words; matching is case-insensitive on word boundaries.
var dictionaries = map[Lang]map[string]string{
	LangES: {
		"video":             "video",
		"photo":             "foto",
		"document":          "documento",
		"exclusive":         "exclusivo",
		"premium":           "premium",
		"content":           "contenido",
		"collection":        "colección",
		"episode":           "episodio",
		"behind the scenes": "detrás de cámaras",
		"tutorial":          "tutorial",
		"free":              "gratis",
	},
	LangPT: {
		"video":             "vídeo",
		"photo":             "foto",
		"document":          "documento",
		"exclusive":         "exclusivo",
		"premium":           "premium",
		"content":           "conteúdo",
		"collection":        "coleção",
		"episode":           "episódio",
		"behind the scenes": "bastidores",
		"tutorial":          "tutorial",
		"free":              "grátis",
	},
}
