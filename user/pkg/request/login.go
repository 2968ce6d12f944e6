package request

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
)

const redacted = "***"

type LoginRequest struct {
	Email    string `validate:"required,email" json:"email"`
	Password string `validate:"required"       json:"password"`
}

// Normalized trims the email; lookups compare emails case-insensitively in the database.
func (l LoginRequest) Normalized() LoginRequest {
	l.Email = strings.TrimSpace(l.Email)
	return l
}

func (l LoginRequest) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", l.Email)
}

func (l LoginRequest) MarshalJSON() ([]byte, error) {
	l.Password = redacted
	type credentials LoginRequest
	return json.Marshal(credentials(l))
}
