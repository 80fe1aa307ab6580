package school

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ada/core"
)

var (
	transportTierTag  = "transport_tier"
	transportTierText = "unknown transport type"

	uniqueClassesTag  = "uniqueclasses"
	uniqueClassesText = "class names must be unique"
)

func init() {
	_ = core.Validate.RegisterValidation(transportTierTag, transportTierValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, transportTierTag, transportTierText)

	core.Validate.RegisterStructValidation(settingsStructValidation, Settings{})
	core.RegisterCustomTranslation(core.Validate, core.Translator, uniqueClassesTag, uniqueClassesText)
}

// transportTierValidation accepts any known spelling of a transport tier, and empty strings.
func transportTierValidation(fl validator.FieldLevel) bool {
	_, err := NormalizeTransportTier(fl.Field().String())
	return err == nil
}

func settingsStructValidation(sl validator.StructLevel) {
	s, ok := sl.Current().Interface().(Settings)
	if !ok {
		return
	}
	seen := make(map[string]bool, len(s.Classes))
	for _, cls := range s.Classes {
		if seen[cls.Name] {
			sl.ReportError(s.Classes, "classes", "Classes", uniqueClassesTag, "")
			return
		}
		seen[cls.Name] = true
	}
}
