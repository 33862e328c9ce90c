// Package i18n provides the user-facing message catalog. The application
// grew up Spanish-first; Spanish is the default language and English is
// available through configuration. Translation files are embedded so the
// binary stays self-contained.
package i18n

import (
	"embed"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Translator localizes message IDs for one configured language.
type Translator struct {
	localizer *i18n.Localizer
}

// New loads the embedded locale files and returns a translator for lang.
// Unknown languages fall back to Spanish.
func New(lang string) *Translator {
	bundle := i18n.NewBundle(language.Spanish)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, _ := localeFS.ReadFile("locales/" + f.Name())
		bundle.ParseMessageFileBytes(data, f.Name())
	}

	return &Translator{localizer: i18n.NewLocalizer(bundle, lang)}
}

// T translates a message by ID. data fills the message's template variables;
// pass nil when the message has none. An unknown ID comes back verbatim so a
// missing translation never breaks a response.
func (t *Translator) T(messageID string, data map[string]any) string {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}
