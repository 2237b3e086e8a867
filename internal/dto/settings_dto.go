package dto

type UpdateSettingsRequest struct {
	ApiKey *string `json:"apiKey"`
	Model  *string `json:"model" validate:"omitempty,oneof=sonar-pro sonar"`
	Theme  *string `json:"theme" validate:"omitempty,oneof=dark"`
}

// SettingsResponse never carries the key itself.
type SettingsResponse struct {
	ApiKey          string   `json:"apiKey"`
	HasApiKey       bool     `json:"hasApiKey"`
	Model           string   `json:"model"`
	Theme           string   `json:"theme"`
	SupportedModels []string `json:"supportedModels"`
}
