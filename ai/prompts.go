package ai

import (
	"fmt"
	"strings"
)

// PassageSeparator joins ranked passages into the answer context.
const PassageSeparator = "\n\n"

// JoinPassages builds the context block handed to the synthesizer.
func JoinPassages(passages []string) string {
	return strings.Join(passages, PassageSeparator)
}

// BuildTranscriptionPrompt asks for a faithful transcript in lang.
func BuildTranscriptionPrompt(lang string) string {
	return fmt.Sprintf("Transcreva o áudio para %s. "+
		"Seja preciso e mantenha a pontuação adequada. "+
		"Divida o texto em parágrafos quando for apropriado.", languageName(lang))
}

// BuildAnswerPrompt grounds the model on the joined passages.
func BuildAnswerPrompt(question string, passages []string, lang string) string {
	return fmt.Sprintf(`Com base no texto fornecido abaixo como contexto, responda a pergunta de forma clara e precisa em %s.

CONTEXTO:
%s

PERGUNTA:
%s

INSTRUÇÕES:
- Use apenas informações contidas no contexto enviado;
- Se a resposta não for encontrada no contexto, apenas responda que não possui informações suficientes para responder;
- Seja objetivo;
- Mantenha um tom educativo e profissional;
- Cite trechos relevantes do contexto se apropriado;
- Se for citar o contexto, utilize o termo "conteúdo da aula";`,
		languageName(lang), JoinPassages(passages), question)
}

// languageName renders a BCP 47 tag the way the prompts expect.
func languageName(lang string) string {
	switch strings.ToLower(lang) {
	case "", "pt-br", "pt_br":
		return "português do Brasil"
	case "pt", "pt-pt":
		return "português"
	case "en", "en-us", "en-gb":
		return "inglês"
	case "es":
		return "espanhol"
	default:
		return lang
	}
}

// LanguageCode returns the ISO-639-1 code of a BCP 47 tag.
func LanguageCode(lang string) string {
	if lang == "" {
		lang = DefaultLanguage
	}
	code, _, _ := strings.Cut(lang, "-")
	code, _, _ = strings.Cut(code, "_")
	return strings.ToLower(code)
}
