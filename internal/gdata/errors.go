package gdata

import (
	"fmt"
	"strings"
)

// AuthenticationError reports rejected credentials: a failed ClientLogin or
// a 403 from the API.
type AuthenticationError struct {
	StatusCode int
	Message    string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (%d): %s", e.StatusCode, e.Message)
}

// Fault is one entry of the server's validation fault list.
type Fault struct {
	Domain   string
	Code     string
	Location string
	Field    string
}

// UploadError reports any other unsuccessful response. For validation
// failures Message holds one "field: code" line per fault.
type UploadError struct {
	StatusCode int
	Message    string
	Faults     []Fault
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed (%d): %s", e.StatusCode, strings.TrimRight(e.Message, "\n"))
}

func faultMessage(faults []Fault) string {
	var b strings.Builder
	for _, f := range faults {
		b.WriteString(f.Field)
		b.WriteString(": ")
		b.WriteString(f.Code)
		b.WriteString("\n")
	}
	return b.String()
}
