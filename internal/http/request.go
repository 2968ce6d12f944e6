package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	inErrors "github.com/Alturino/gearshare/internal/errors"
)

// DecodeJSON reports malformed bodies as validation errors.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: failed decoding request body with error=%s", inErrors.ErrValidation, err)
	}
	return nil
}

func PathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := mux.Vars(r)[key]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s=%q is not a valid id", inErrors.ErrValidation, key, raw)
	}
	return id, nil
}
