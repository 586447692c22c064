package api

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SignAsset describes one phrase and where its animation is served
type SignAsset struct {
	Phrase string `json:"phrase"`
	File   string `json:"file"`
	URL    string `json:"url"`
}

// SignListResponse is returned by GET /api/v1/signs
type SignListResponse struct {
	Signs []SignAsset `json:"signs"`
}

// TranslateRequest is the body accepted by POST /api/v1/signs/translate
type TranslateRequest struct {
	Text string `json:"text"`
}

// TranslateResponse is returned by POST /api/v1/signs/translate
type TranslateResponse struct {
	Text      string      `json:"text"`
	Matches   []SignAsset `json:"matches"`
	Unmatched []string    `json:"unmatched"`
	Message   string      `json:"message,omitempty"`
}
