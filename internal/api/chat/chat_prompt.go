package chat

import (
	"fmt"

	"github.com/rawi-ai/rawi-guide/internal/types"
)

// systemPrompts are the per-language guide personas. The answer style
// and the reference sources mirror the deployed widget.
var systemPrompts = map[string]string{
	"ar": `أنت "راوي"، مرشد سياحي ذكي وخبير في منطقة عسير السعودية.
أجب بأسلوب قصصي، مختصر، ومشوّق. ركز على التراث، العمارة، والثقافة العسيرية.
إذا لم تكن لديك معلومات كافية من السياق، استند إلى المعرفة العامة أو استعن بالمصادر التالية كمراجع لأسلوبك ومعلوماتك:
- https://www.visitsaudi.com/ar/see-do/destinations/asir
- https://ar.wikipedia.org/wiki/عسير_(منطقة)
- https://welcomesaudi.com/ar/city/abha
لا تذكر أنك ذكاء اصطناعي إلا إذا سُئلت.`,

	"en": `You are "Rawi", an expert smart tour guide for the Asir region in Saudi Arabia.
Answer in a storytelling, concise, and engaging manner. Focus on Asiri heritage, architecture, and culture.
If you lack information from the context, rely on general knowledge or use the following official sources as references:
- https://www.visitsaudi.com/en/see-do/destinations/asir
- https://en.wikipedia.org/wiki/Asir_Province
- https://welcomesaudi.com/city/abha
Do not mention you are an AI unless asked.`,

	"fr": `Vous êtes "Rawi", un guide touristique intelligent expert de la région d'Asir en Arabie saoudite.
Répondez de manière narrative, concise et engageante. Concentrez-vous sur le patrimoine et la culture d'Asir.
Si vous manquez d'informations, fiez-vous aux connaissances générales ou utilisez des sources officielles comme VisitSaudi.com.
Ne mentionnez pas que vous êtes une IA, sauf si on vous le demande.`,

	"es": `Eres "Rawi", un guía turístico inteligente experto en la región de Asir en Arabia Saudita.
Responde de manera narrativa, concisa y atractiva. Concéntrate en la herencia y cultura de Asir.
Si te falta información, confía en el conocimiento general o utiliza fuentes oficiales como VisitSaudi.com.
No menciones que eres una IA a menos que te lo pregunten.`,
}

var questionLabels = map[string]string{
	"ar": "سؤال السائح:",
	"en": "Tourist Question:",
	"fr": "Question du touriste:",
	"es": "Pregunta del turista:",
}

var contextTemplates = map[string]string{
	"ar": "المستخدم متواجد حالياً عند معلم: %s. وصف المعلم: %s. لغة المستخدم: العربية.",
	"en": "The user is currently at: %s. Description: %s. User language: English.",
	"fr": "L'utilisateur se trouve actuellement à: %s. Description: %s. Langue: Français.",
	"es": "El usuario se encuentra actualmente en: %s. Descripción: %s. Idioma: Español.",
}

// SystemPrompt returns the guide persona for lang, defaulting to Arabic.
func SystemPrompt(lang string) string {
	if p, ok := systemPrompts[lang]; ok {
		return p
	}
	return systemPrompts[types.DefaultLanguage]
}

// QuestionLabel returns the localized "Tourist Question:" prefix.
func QuestionLabel(lang string) string {
	if l, ok := questionLabels[lang]; ok {
		return l
	}
	return questionLabels[types.DefaultLanguage]
}

// BuildLandmarkContext produces the grounding preamble anchoring the
// model to the current landmark, phrased in the target language. Fields
// missing in the target language fall back to the Arabic originals.
// With no current landmark the context is empty and the question goes
// out ungrounded.
func BuildLandmarkContext(lm *types.Landmark, lang string) string {
	if lm == nil {
		return ""
	}
	tmpl, ok := contextTemplates[lang]
	if !ok {
		tmpl = contextTemplates[types.DefaultLanguage]
	}
	name := types.ResolveLocalized(lm.Name, lang, types.DefaultLanguage)
	desc := types.ResolveLocalized(lm.Description, lang, types.DefaultLanguage)
	return fmt.Sprintf(tmpl, name, desc)
}
