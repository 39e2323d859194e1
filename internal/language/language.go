package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a source language the recognizer can lock onto.
type Language struct {
	Code       string // ISO 639-1 code sent in ?lang= and in lang events
	Name       string // English name, also the recognizer's long form ("french")
	NativeName string
	Locale     string // recognizer locale the server maps the code to
}

// Auto is the zero choice: let the server detect.
var Auto = Language{Code: "", Name: "Auto-detect"}

// supported mirrors the server's language map. Anything else in fixed mode
// would silently fall back to English on the far side.
var supported = []Language{
	{Code: "en", Name: "English", NativeName: "English", Locale: "en-US"},
	{Code: "zh", Name: "Chinese", NativeName: "中文", Locale: "zh-CN"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語", Locale: "ja-JP"},
	{Code: "ko", Name: "Korean", NativeName: "한국어", Locale: "ko-KR"},
	{Code: "th", Name: "Thai", NativeName: "ไทย", Locale: "th-TH"},
	{Code: "vi", Name: "Vietnamese", NativeName: "Tiếng Việt", Locale: "vi-VN"},
	{Code: "id", Name: "Indonesian", NativeName: "Bahasa Indonesia", Locale: "id-ID"},
	{Code: "ms", Name: "Malay", NativeName: "Bahasa Melayu", Locale: "ms-MY"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी", Locale: "hi-IN"},
	{Code: "fr", Name: "French", NativeName: "Français", Locale: "fr-FR"},
	{Code: "de", Name: "German", NativeName: "Deutsch", Locale: "de-DE"},
	{Code: "es", Name: "Spanish", NativeName: "Español", Locale: "es-ES"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português", Locale: "pt-PT"},
}

// aliases are the long names the detector reports instead of codes.
var aliases = map[string]string{
	"mandarin": "zh",
}

var byCode map[string]Language

func init() {
	byCode = make(map[string]Language, 2*len(supported))
	for _, l := range supported {
		byCode[l.Code] = l
		byCode[strings.ToLower(l.Name)] = l
	}
	for alias, code := range aliases {
		byCode[alias] = byCode[code]
	}
}

// Normalize maps a code or detector name ("EN", "french", "zh-TW") to the
// canonical two-letter code. Unknown input is returned lower-cased and trimmed.
func Normalize(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	if l, ok := byCode[key]; ok {
		return l.Code
	}
	if base, _, ok := strings.Cut(strings.ReplaceAll(key, "_", "-"), "-"); ok {
		if l, ok := byCode[base]; ok {
			return l.Code
		}
	}
	return key
}

// FromCode returns the Language for a code or detector name, Auto if unknown.
func FromCode(code string) Language {
	if l, ok := byCode[Normalize(code)]; ok {
		return l
	}
	return Auto
}

// IsSupported reports whether fixed mode can target code.
func IsSupported(code string) bool {
	_, ok := byCode[Normalize(code)]
	return ok
}

// List returns the supported languages in menu order.
func List() []Language {
	out := make([]Language, len(supported))
	copy(out, supported)
	return out
}

func Codes() []string {
	codes := make([]string, len(supported))
	for i, l := range supported {
		codes[i] = l.Code
	}
	return codes
}

// Label renders a code for humans: "fr" -> "French (fr)". Codes outside the
// table go through CLDR display names so multilang output stays readable.
func Label(code string) string {
	if code == "" {
		return ""
	}
	if l, ok := byCode[Normalize(code)]; ok {
		return fmt.Sprintf("%s (%s)", l.Name, l.Code)
	}

	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return fmt.Sprintf("language '%s'", code)
	}
	name := display.English.Tags().Name(tag)
	if name == "" || strings.EqualFold(name, code) {
		return fmt.Sprintf("language '%s'", code)
	}
	return fmt.Sprintf("%s (%s)", name, code)
}
