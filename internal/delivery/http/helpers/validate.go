package helpers

import (
	"encoding/json"
	"net/http"

	"eventlistings/internal/domain"
)

// Validator is implemented by request DTOs that support validation.
// Validate returns per-field messages; an empty map means valid.
type Validator interface {
	Validate() domain.FieldErrors
}

// DecodeAndValidate decodes the request body into dest (with
// DisallowUnknownFields) and, if dest implements Validator, runs Validate().
// Malformed bodies get a parseerror, validation failures a validationerror
// with per-field details; both write a 400 and return false. Callers should
// return immediately when DecodeAndValidate returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteError(w, http.StatusBadRequest, ErrKindParse, "Malformed request body: "+err.Error(), nil)
		return false
	}
	if v, ok := dest.(Validator); ok {
		if errs := v.Validate(); errs.HasErrors() {
			WriteError(w, http.StatusBadRequest, ErrKindValidation, "Invalid input.", errs)
			return false
		}
	}
	return true
}
