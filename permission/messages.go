package permission

import "net/http"

// FallbackMessage is used when neither the check nor the registry has a message.
const FallbackMessage = "Error"

// Messages maps status codes to the default message of a denial.
// The zero value is an empty registry.
type Messages struct {
	byStatus map[int]string
}

// NewMessages returns a registry seeded with 403 and 404.
func NewMessages() *Messages {
	return &Messages{byStatus: map[int]string{
		http.StatusForbidden: "Forbidden",
		http.StatusNotFound:  "Not Found",
	}}
}

// Set inserts or overwrites the default message for status.
// Call it before serving starts.
func (m *Messages) Set(status int, msg string) {
	if m.byStatus == nil {
		m.byStatus = make(map[int]string)
	}
	m.byStatus[status] = msg
}

// Lookup never fails: an unmapped status yields FallbackMessage.
func (m *Messages) Lookup(status int) string {
	if m != nil {
		if msg, ok := m.byStatus[status]; ok {
			return msg
		}
	}
	return FallbackMessage
}

// builtin backs Deny; it is never mutated.
var builtin = NewMessages()
