// Package types defines core data types and enums for the lazy-latex converter.
package types

// MarkerKind classifies a marker region by the run length of its delimiters.
type MarkerKind int

const (
	// KindInline is a run of 2 marker characters: inline math.
	KindInline MarkerKind = iota
	// KindDisplay is a run of 3 marker characters: display math.
	KindDisplay
	// KindFreeText is a run of 4 marker characters: a free-text instruction.
	KindFreeText
)

// String returns the string representation of the marker kind
func (k MarkerKind) String() string {
	switch k {
	case KindInline:
		return "inline"
	case KindDisplay:
		return "display"
	case KindFreeText:
		return "freetext"
	default:
		return "unknown"
	}
}

// RunLength returns the delimiter run length that opens and closes a region
// of this kind.
func (k MarkerKind) RunLength() int {
	switch k {
	case KindInline:
		return 2
	case KindDisplay:
		return 3
	case KindFreeText:
		return 4
	default:
		return 0
	}
}

// KindForRun maps a delimiter run length to a marker kind.
// Run lengths outside {2, 3, 4} never form a region.
func KindForRun(n int) (MarkerKind, bool) {
	switch n {
	case 2:
		return KindInline, true
	case 3:
		return KindDisplay, true
	case 4:
		return KindFreeText, true
	default:
		return 0, false
	}
}

// MarkerRegion is a balanced pair of equal-length delimiter runs on one line
// plus the raw text between them. Start and End are byte offsets into the
// original line; End is exclusive and points just past the closing run.
// Regions for a line are produced left to right and never overlap.
type MarkerRegion struct {
	Kind  MarkerKind `json:"kind"`
	Start int        `json:"start"`
	End   int        `json:"end"`
	Inner string     `json:"inner"`
}

// Replacement is a single position-exact edit against the original line text.
// Offsets are relative to the line before any edits; a set of replacements
// for one line is pairwise non-overlapping and is applied in strictly
// descending Start order.
type Replacement struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// DocumentKind identifies the flavor of a document being converted.
// It selects output delimiters and the comment syntax for preserved
// original lines.
type DocumentKind string

const (
	DocLaTeX    DocumentKind = "latex"
	DocMarkdown DocumentKind = "markdown"
	DocUnknown  DocumentKind = "unknown"
)

// InlineStyle selects the inline math delimiter pair for LaTeX documents.
type InlineStyle string

const (
	// InlineDollar wraps inline math as $...$
	InlineDollar InlineStyle = "dollar"
	// InlineParen wraps inline math as \(...\)
	InlineParen InlineStyle = "paren"
)

// DisplayStyle selects the display math delimiter pair for LaTeX documents.
type DisplayStyle string

const (
	// DisplayBracket wraps display math as \[...\]
	DisplayBracket DisplayStyle = "bracket"
	// DisplayDollar wraps display math as $$...$$
	DisplayDollar DisplayStyle = "dollar"
)

// SaveMode selects how conversion interacts with saving a document.
type SaveMode string

const (
	// SaveModeNone disables save-time conversion.
	SaveModeNone SaveMode = "none"
	// SaveModeBefore converts before the save is written.
	SaveModeBefore SaveMode = "convert-before-save"
	// SaveModeAfter saves, converts, then re-saves once if anything changed.
	SaveModeAfter SaveMode = "save-then-convert-then-save"
)

// Provider identifies a text-generation backend implementation.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Config is the persisted application configuration.
type Config struct {
	Provider           Provider     `json:"provider"`
	APIKey             string       `json:"api_key"`
	BaseURL            string       `json:"base_url"`
	Model              string       `json:"model"`
	ContextLines       int          `json:"context_lines"`
	KeepOriginal       bool         `json:"keep_original"`
	AutoConvertOnEnter bool         `json:"auto_convert_on_enter"`
	SaveMode           SaveMode     `json:"save_mode"`
	InlineDelimiter    InlineStyle  `json:"inline_delimiter"`
	DisplayDelimiter   DisplayStyle `json:"display_delimiter"`
	MaxPasses          int          `json:"max_passes"`
	CacheEnabled       bool         `json:"cache_enabled"`
	CachePath          string       `json:"cache_path"`
}

// ErrorCode 错误代码枚举
type ErrorCode string

const (
	// ErrConfig reports a missing credential, endpoint or model.
	// Fatal for the current operation, never retried.
	ErrConfig ErrorCode = "CONFIG_ERROR"
	// ErrBackend reports a non-success response or a malformed response
	// shape from the generation backend.
	ErrBackend ErrorCode = "BACKEND_ERROR"
	// ErrRateLimit is a backend rate-limit rejection.
	ErrRateLimit ErrorCode = "BACKEND_RATE_LIMIT"
	// ErrEmptyResult reports that generation produced blank text.
	ErrEmptyResult ErrorCode = "EMPTY_RESULT"
	// ErrDocument reports a document or buffer access failure.
	ErrDocument ErrorCode = "DOCUMENT_ERROR"
	// ErrInternal is an unexpected internal failure.
	ErrInternal ErrorCode = "INTERNAL_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}
