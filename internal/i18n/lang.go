// Package i18n holds the translation layer of the site. Only French is
// shipped, so translation is the identity function.
package i18n

// Language identifies a supported locale.
type Language string

// French is the single locale served by the site.
const French Language = "fr"

// Lang is the process wide locale.
const Lang = French

// T returns the text to display for a French source string.
func T(fr string) string {
	return fr
}

// Dir reports the text direction of the locale.
func (l Language) Dir() string {
	switch l {
	case "ar", "he", "fa", "ur":
		return "rtl"
	default:
		return "ltr"
	}
}
