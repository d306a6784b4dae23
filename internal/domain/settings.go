package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Language string

const (
	LanguageTurkish Language = "tr"
	LanguageEnglish Language = "en"
	LanguageGerman  Language = "de"
	LanguageFrench  Language = "fr"
)

var SupportedLanguages = []Language{LanguageTurkish, LanguageEnglish, LanguageGerman, LanguageFrench}

const DefaultMemoryMaxGiB = 4

type Settings struct {
	MemoryMaxGiB int           `json:"memoryMaxGiB" validate:"gte=2"`
	Language     Language      `json:"language" validate:"oneof=tr en de fr"`
	Versions     VersionFilter `json:"versions"`
}

func DefaultSettings() Settings {
	return Settings{
		MemoryMaxGiB: DefaultMemoryMaxGiB,
		Language:     LanguageTurkish,
		Versions:     VersionFilter{Limit: DefaultVersionLimit},
	}
}

var settingsValidator = validator.New(validator.WithRequiredStructEnabled())

func (s Settings) Validate() error {
	err := settingsValidator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		messages = append(messages, fmt.Sprintf("%s: %v fails %s%s", fieldErr.Namespace(), fieldErr.Value(), fieldErr.Tag(), paramSuffix(fieldErr.Param())))
	}

	return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(messages, "; "))
}

func paramSuffix(param string) string {
	if param == "" {
		return ""
	}
	return "=" + param
}
