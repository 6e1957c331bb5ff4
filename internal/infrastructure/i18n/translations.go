package i18n

import (
	"embed"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"volunteerhub/internal/ports/output"
)

//go:embed active.*.toml
var localeFS embed.FS

var localeFiles = []string{"active.en.toml", "active.fr.toml"}

var _ output.Translator = (*Translator)(nil)

// Translator is a thin wrapper around go-i18n's Bundle/Localizer.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	log             *zap.Logger
}

// NewTranslator builds a Translator using the given default locale (e.g. "en").
// Translations come from the embedded active.*.toml files.
func NewTranslator(defaultLocale string, log *zap.Logger) *Translator {
	if log == nil {
		log = zap.NewNop()
	}
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			log.Warn("i18n: failed to load message file", zap.String("file", file), zap.Error(err))
		}
	}

	return &Translator{bundle: bundle, defaultLanguage: tag, log: log}
}

// T renders the message identified by key for the given locale, which may be
// a raw Accept-Language header. Missing keys fall back to the default locale,
// then to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		t.log.Debug("i18n: localize failed",
			zap.String("key", key),
			zap.Strings("locales", languages),
			zap.Error(err))
		return key
	}
	return msg
}
