package instrumentation

import (
	"net/mail"
	"strings"
)

// ExtractUserDomain extracts the domain part from an email address or a
// "Name <address>" header value. It reduces label cardinality compared to the
// full address.
//
// Example:
//
//	ExtractUserDomain("jane@example.com")           // "example.com"
//	ExtractUserDomain("Jane <jane@Example.com>")    // "example.com"
//	ExtractUserDomain("invalid")                    // "unknown"
//	ExtractUserDomain("")                           // "unknown"
func ExtractUserDomain(email string) string {
	if email == "" {
		return "unknown"
	}
	if addr, err := mail.ParseAddress(email); err == nil {
		email = addr.Address
	}

	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return strings.ToLower(parts[1])
	}

	return "unknown"
}

// Operation types for Google API metrics.
const (
	OperationList     = "list"
	OperationGet      = "get"
	OperationModify   = "modify"
	OperationSend     = "send"
	OperationGenerate = "generate"
	OperationUpload   = "upload"
)
