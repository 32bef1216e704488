package domain

// ModelInfo describes one generation model discovered on disk and mirrored
// into the store under model:<name>.
type ModelInfo struct {
	Name          string  `json:"name"`
	Path          string  `json:"path"`
	SizeMB        float64 `json:"size"`
	Modified      string  `json:"modified"`
	Version       string  `json:"version"`
	Parameters    string  `json:"parameters"`
	Architecture  string  `json:"architecture"`
	DefaultTokens int     `json:"default_tokens"`
	DefaultTemp   float64 `json:"default_temp"`
	MaxTokens     int     `json:"max_tokens,omitempty"`
}
