package speech

import "strings"

// roleLanguages maps a tutor role to the ISO-639-1 hint passed to the
// transcription backend. Roles without a mapping fall back to English.
var roleLanguages = map[string]string{
	"english tutor": "en",
	"italian tutor": "it",
	"spanish tutor": "es",
	"german tutor":  "de",
	"french tutor":  "fr",
}

// LanguageForRole resolves the transcription language hint for a persona role.
func LanguageForRole(role string) string {
	if lang, ok := roleLanguages[strings.ToLower(strings.TrimSpace(role))]; ok {
		return lang
	}
	return "en"
}
