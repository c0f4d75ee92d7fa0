package httpkit

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"mediakit/internal/pkg/errors"
)

// MaxBodyBytes bounds request bodies. Base64 audio uploads arrive inline.
const MaxBodyBytes = 64 << 20

type ErrorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error"`
}

// DecodeJSON decodes exactly one JSON value, rejecting unknown fields. Decode
// failures are returned as VALIDATION_ERROR.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errors.Validation("request body is empty")
		}
		return errors.Validation(fmt.Sprintf("invalid request body: %v", err))
	}
	if dec.More() {
		return errors.Validation("request body must contain a single JSON object")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteErr(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var env ErrorEnvelope
	env.Error.Code = code
	env.Error.Message = msg
	env.Error.Details = details

	_ = json.NewEncoder(w).Encode(env)
}

// WriteError renders err with its coded status. Uncoded errors become 500
// without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	var e *errors.Error
	if !errors.As(err, &e) {
		WriteErr(w, http.StatusInternalServerError, string(errors.CodeInternal), "internal server error", nil)
		return
	}
	WriteErr(w, e.HTTPStatus(), string(e.Code), e.Message, e.Fields)
}
