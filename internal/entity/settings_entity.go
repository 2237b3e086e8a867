package entity

const (
	SettingsId = "global"

	ModelSonarPro = "sonar-pro"
	ModelSonar    = "sonar"

	ThemeDark = "dark"
)

var SupportedModels = []string{ModelSonarPro, ModelSonar}

type Settings struct {
	ApiKey string `json:"apiKey"`
	Model  string `json:"model"`
	Theme  string `json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{ApiKey: "", Model: ModelSonarPro, Theme: ThemeDark}
}

// SettingsPatch is a shallow merge; nil fields keep their current value.
type SettingsPatch struct {
	ApiKey *string `json:"apiKey"`
	Model  *string `json:"model"`
	Theme  *string `json:"theme"`
}

func (s Settings) Merge(p SettingsPatch) Settings {
	if p.ApiKey != nil {
		s.ApiKey = *p.ApiKey
	}
	if p.Model != nil {
		s.Model = *p.Model
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	return s
}

// AsPatch turns the non-empty fields into a patch, so stored settings merge
// over defaults without blanking a missing model or theme.
func (s Settings) AsPatch() SettingsPatch {
	var p SettingsPatch
	if s.ApiKey != "" {
		p.ApiKey = &s.ApiKey
	}
	if s.Model != "" {
		p.Model = &s.Model
	}
	if s.Theme != "" {
		p.Theme = &s.Theme
	}
	return p
}

const MaskedApiKey = "***MASKED***"

// MaskApiKey hides a configured key; an empty key stays empty.
func MaskApiKey(key string) string {
	if key == "" {
		return ""
	}
	return MaskedApiKey
}

func IsSupportedModel(model string) bool {
	for _, m := range SupportedModels {
		if m == model {
			return true
		}
	}
	return false
}
