package request

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

type Register struct {
	Username    string `validate:"required"       json:"username"`
	Email       string `validate:"required,email" json:"email"`
	Password    string `validate:"required,min=6" json:"password"`
	PhoneNumber string `validate:"omitempty,max=32" json:"phone_number"`
}

func (r Register) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", r.Email).Str("username", r.Username).Str("phoneNumber", r.PhoneNumber)
}

func (r Register) MarshalJSON() ([]byte, error) {
	r.Password = redacted
	type R Register
	return json.Marshal(R(r))
}

type SetAdmin struct {
	Email string `validate:"required,email" json:"email"`
}

type UpdateUser struct {
	Username    *string `validate:"omitempty,min=1"  json:"username,omitempty"`
	PhoneNumber *string `validate:"omitempty,max=32" json:"phone_number,omitempty"`
	Password    *string `validate:"omitempty,min=6"  json:"password,omitempty"`
	Blocked     *bool   `                            json:"blocked,omitempty"`
}

func (u UpdateUser) MarshalJSON() ([]byte, error) {
	if u.Password != nil {
		masked := redacted
		u.Password = &masked
	}
	type U UpdateUser
	return json.Marshal(U(u))
}
