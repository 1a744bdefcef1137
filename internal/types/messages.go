package types

// uiMessages is the localized string catalog served to the widget.
// Unknown keys fall back to the key itself, unknown languages to "ar",
// matching the behavior of the original front end.
var uiMessages = map[string]LocalizedText{
	"welcome_message": {
		"ar": "مرحباً بك في راوي، مرشدك السياحي الذكي.",
		"en": "Welcome to Rawi, your smart tour guide.",
		"fr": "Bienvenue sur Rawi, votre guide touristique intelligent.",
		"es": "Bienvenido a Rawi, tu guía turístico inteligente.",
	},
	"landmark_prompt": {
		"ar": "اسألني عن هذا المعلم...",
		"en": "Ask me about this landmark...",
		"fr": "Posez-moi une question...",
		"es": "Pregúntame algo...",
	},
	"anonymous": {
		"ar": "زائر",
		"en": "Visitor",
		"fr": "Visiteur",
		"es": "Visitante",
	},
	"ai_error": {
		"ar": "حدث خطأ في الاتصال، يرجى المحاولة مرة أخرى.",
		"en": "Connection error, please try again.",
		"fr": "Erreur de connexion, veuillez réessayer.",
		"es": "Error de conexión, por favor intenta de nuevo.",
	},
	"ai_offline": {
		"ar": "عذراً، نظام الذكاء الاصطناعي غير متصل حالياً.",
		"en": "Sorry, AI system is currently offline.",
		"fr": "Désolé, le système IA est actuellement hors ligne.",
		"es": "Lo sentimos, el sistema de IA está actualmente sin conexión.",
	},
}

// Translate returns the catalog string for key in lang, falling back to
// the default language and then to the key itself.
func Translate(key, lang string) string {
	m, ok := uiMessages[key]
	if !ok {
		return key
	}
	if s := ResolveLocalized(m, lang, DefaultLanguage); s != "" {
		return s
	}
	return key
}
