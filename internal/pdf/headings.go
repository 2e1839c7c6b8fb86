package pdf

// Headings are the fixed labels printed on a CV, per profile language.
type Headings struct {
	Summary        string
	Contact        string
	Experience     string
	Education      string
	Skills         string
	Languages      string
	Certifications string
	SocialNetworks string
	Present        string
	Issued         string
	Expires        string
}

var headingsByLanguage = map[string]Headings{
	"en": {
		Summary: "Profile", Contact: "Contact", Experience: "Experience", Education: "Education",
		Skills: "Skills", Languages: "Languages", Certifications: "Certifications",
		SocialNetworks: "Links", Present: "Present", Issued: "Issued", Expires: "Expires",
	},
	"fr": {
		Summary: "Profil", Contact: "Contact", Experience: "Expérience", Education: "Formation",
		Skills: "Compétences", Languages: "Langues", Certifications: "Certifications",
		SocialNetworks: "Liens", Present: "Présent", Issued: "Délivré", Expires: "Expire",
	},
	"es": {
		Summary: "Perfil", Contact: "Contacto", Experience: "Experiencia", Education: "Educación",
		Skills: "Habilidades", Languages: "Idiomas", Certifications: "Certificaciones",
		SocialNetworks: "Enlaces", Present: "Actualidad", Issued: "Emitido", Expires: "Vence",
	},
	"de": {
		Summary: "Profil", Contact: "Kontakt", Experience: "Berufserfahrung", Education: "Ausbildung",
		Skills: "Kenntnisse", Languages: "Sprachen", Certifications: "Zertifikate",
		SocialNetworks: "Links", Present: "Heute", Issued: "Ausgestellt", Expires: "Gültig bis",
	},
	"ar": {
		Summary: "نبذة", Contact: "التواصل", Experience: "الخبرة", Education: "التعليم",
		Skills: "المهارات", Languages: "اللغات", Certifications: "الشهادات",
		SocialNetworks: "الروابط", Present: "حتى الآن", Issued: "تاريخ الإصدار", Expires: "تاريخ الانتهاء",
	},
}

// HeadingsFor falls back to English for unknown languages.
func HeadingsFor(lang string) Headings {
	if h, ok := headingsByLanguage[lang]; ok {
		return h
	}
	return headingsByLanguage["en"]
}

// Direction is the CSS text direction for lang.
func Direction(lang string) string {
	if lang == "ar" {
		return "rtl"
	}
	return "ltr"
}
