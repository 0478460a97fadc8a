package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"content-creator/internal/content/pipeline"
)

const (
	contentTypeJSON     = "application/json"
	internalErrorString = "Internal server error"
)

// Headers are set on every response, including errors.
var Headers = map[string]string{
	"Content-Type":                contentTypeJSON,
	"Access-Control-Allow-Origin": "*",
}

type ErrorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Envelope maps an outcome onto a status code and JSON body. The bytes are
// identical for the HTTP server and the Lambda entrypoint.
func Envelope(out pipeline.Outcome) (int, []byte) {
	switch out.Kind {
	case pipeline.KindSuccess:
		return encode(http.StatusOK, out.Content)
	case pipeline.KindValidation:
		return encode(http.StatusBadRequest, ErrorBody{Error: pipeline.ValidationMessage})
	default:
		return ErrorEnvelope(out.Detail())
	}
}

// ErrorEnvelope is the 500 body for detail.
func ErrorEnvelope(detail string) (int, []byte) {
	return encode(http.StatusInternalServerError, struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}{internalErrorString, detail})
}

func encode(status int, v interface{}) (int, []byte) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return http.StatusInternalServerError,
			[]byte(`{"error":"Internal server error","detail":"failed to encode response"}`)
	}
	return status, bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
