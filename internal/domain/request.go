package domain

// GenerateRequest is one inbound generation call.
//
// Text is the only required field. Sampling parameters are pointers so that
// absence can be told apart from an explicit zero: parameters the caller did
// not supply are never passed to the generation subprocess, preserving its
// own defaults.
type GenerateRequest struct {
	Text          string   `json:"text"`
	SessionID     string   `json:"session_id,omitempty"`
	Model         string   `json:"model,omitempty"`
	Reset         bool     `json:"reset,omitempty"`
	UseSearch     bool     `json:"use_search,omitempty"`
	NTokens       *int     `json:"n_tokens,omitempty"`
	Temperature   *float64 `json:"temp,omitempty"`
	TopP          *float64 `json:"top_p,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
	RepeatPenalty *float64 `json:"repeat_penalty,omitempty"`
	Seed          *int     `json:"seed,omitempty"`
}

// GenerateParams are the effective sampling parameters for one invocation,
// after request values and model defaults have been merged.
type GenerateParams struct {
	NTokens       int      `json:"n_tokens"`
	Temperature   float64  `json:"temperature"`
	TopP          *float64 `json:"top_p"`
	TopK          *int     `json:"top_k"`
	RepeatPenalty *float64 `json:"repeat_penalty"`
	Seed          *int     `json:"seed"`
}

// GenerateResult is the response entity for a successful generation.
type GenerateResult struct {
	Response   string         `json:"response"`
	History    []Message      `json:"history"`
	Model      string         `json:"model"`
	SessionID  string         `json:"session_id"`
	Parameters GenerateParams `json:"parameters"`
}
