package model

// TranscriptionResult is the success payload printed as a single JSON line on
// stdout. Field names are part of the CLI contract, callers parse them.
type TranscriptionResult struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Duration   float64 `json:"duration"`
	Segments   int     `json:"segments"`
	ModelSize  string  `json:"model_size"`
	FileSizeMB float64 `json:"file_size_mb"`
}

// ErrorResult is the failure payload. A run emits exactly one JSON object,
// either TranscriptionResult or ErrorResult, never both.
type ErrorResult struct {
	Error string `json:"error"`
}
