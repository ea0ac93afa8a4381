package config

import "fmt"

// Validation error codes (E100-E199).
const (
	ErrCodeNotFound = "E100" // config source missing
	ErrCodeParse    = "E101" // document does not parse
	ErrCodeSchema   = "E102" // document violates the schema
	ErrCodeFetch    = "E103" // remote config could not be fetched
	ErrCodeSettings = "E110" // settings file invalid
)

// ValidationError is a single schema or parse violation with enough
// position information to point a user at the offending line.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"` // dotted path into the document
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	switch {
	case e.Line > 0 && e.Path != "":
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Path, e.Message)
	case e.Path != "":
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// ValidationErrors aggregates every violation found in one document.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", e[0].Error(), len(e)-1)
}
