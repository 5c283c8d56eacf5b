package locale

import "strings"

// Locale is one of the UI language tags the site can serve.
type Locale string

const (
	Turkish Locale = "tr"
	English Locale = "en"
	Serbian Locale = "sr"
)

// Default is used whenever a country cannot be mapped to a supported locale.
const Default = English

// Supported returns the closed set of locales the site serves.
func Supported() []Locale {
	return []Locale{Turkish, English, Serbian}
}

// IsSupported reports whether s is a supported locale tag.
func IsSupported(s string) bool {
	switch Locale(s) {
	case Turkish, English, Serbian:
		return true
	}
	return false
}

// FromCountryCode maps an ISO 3166-1 alpha-2 country code to a locale.
// Turkey gets Turkish, the Serbian-speaking countries get Serbian, and
// everything else (including unknown or empty codes) falls back to English.
func FromCountryCode(code string) Locale {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "TR":
		return Turkish
	case "RS", "BA", "ME":
		return Serbian
	}
	return Default
}

// CountryName returns a display country name for a locale.
func CountryName(l Locale) string {
	switch l {
	case Turkish:
		return "Turkey"
	case Serbian:
		return "Serbia"
	}
	return "United States"
}

// LanguageName returns the locale's own name for itself.
func LanguageName(l Locale) string {
	switch l {
	case Turkish:
		return "Türkçe"
	case Serbian:
		return "Српски"
	}
	return "English"
}
