// Package i18n loads the localized prompt texts.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// DefaultLanguage is the language of the review prompt when none is configured.
const DefaultLanguage = "ko"

//go:embed locales/active.*.toml
var localeFS embed.FS

// embeddedBundle parses the embedded message files on first use.
var embeddedBundle = sync.OnceValues(func() (*i18n.Bundle, error) {
	return loadBundle(localeFS)
})

// Translations resolves message IDs for one language.
type Translations struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
}

// NewTranslations loads the embedded message files and selects lang.
// An empty lang selects DefaultLanguage.
func NewTranslations(lang string) (*Translations, error) {
	if lang == "" {
		lang = DefaultLanguage
	}

	bundle, err := embeddedBundle()
	if err != nil {
		return nil, err
	}

	t := &Translations{bundle: bundle}
	if err := t.SetLanguage(lang); err != nil {
		return nil, err
	}
	return t, nil
}

func loadBundle(fsys fs.FS) (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.Korean)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.ReadDir(fsys, "locales")
	if err != nil {
		return nil, fmt.Errorf("error reading locales: %w", err)
	}

	for _, file := range files {
		data, err := fs.ReadFile(fsys, path.Join("locales", file.Name()))
		if err != nil {
			return nil, fmt.Errorf("error reading locale file %s: %w", file.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, file.Name()); err != nil {
			return nil, fmt.Errorf("error loading locale file %s: %w", file.Name(), err)
		}
	}

	return bundle, nil
}

// SetLanguage switches to lang, which must be one of the embedded languages.
func (t *Translations) SetLanguage(lang string) error {
	for _, tag := range t.bundle.LanguageTags() {
		if tag.String() == lang {
			t.localizer = i18n.NewLocalizer(t.bundle, lang)
			return nil
		}
	}
	return fmt.Errorf("language '%s' not supported", lang)
}

// GetMessage renders messageID with templateData.
func (t *Translations) GetMessage(messageID string, templateData map[string]interface{}) (string, error) {
	localized, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	})
	if err != nil {
		return "", fmt.Errorf("failed to localize %s: %w", messageID, err)
	}
	return localized, nil
}

// SupportedLanguages lists the embedded languages.
func SupportedLanguages() ([]string, error) {
	bundle, err := embeddedBundle()
	if err != nil {
		return nil, err
	}

	var langs []string
	for _, tag := range bundle.LanguageTags() {
		langs = append(langs, tag.String())
	}
	return langs, nil
}
