// Package langtag maps engine language codes to the language names used in
// localization folder names, file names and `l_<name>:` headers.
package langtag

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is one side of a translation.
type Language struct {
	// Code is the engine code, e.g. "en".
	Code string
	// Name is the localization name, e.g. "english".
	Name string
}

func (l Language) String() string {
	return l.Code + " (" + l.Name + ")"
}

// gameNames covers localization names that do not follow the English display
// name of the language.
var gameNames = map[string]string{
	"zh": "simp_chinese",
	"pt": "braz_por",
}

// Resolve validates code and derives its localization name. A non-empty
// name overrides the derived one.
func Resolve(code, name string) (Language, error) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return Language{}, fmt.Errorf("parse language code %q: %w", code, err)
	}
	base, _ := tag.Base()
	lang := Language{Code: tag.String(), Name: strings.TrimSpace(name)}
	if lang.Name != "" {
		return lang, nil
	}

	if n, ok := gameNames[base.String()]; ok {
		lang.Name = n
		return lang, nil
	}

	n := display.English.Languages().Name(language.Make(base.String()))
	if n == "" {
		return Language{}, fmt.Errorf("no localization name for language %q", code)
	}
	lang.Name = strings.ReplaceAll(strings.ToLower(n), " ", "_")
	return lang, nil
}
