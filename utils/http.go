package utils

import (
	"encoding/json"
	"net/http"
)

// StatusFailed is the envelope status of every response the gateway synthesizes
const StatusFailed = "FAILED"

// ResponseEnvelope is the body of every response the gateway synthesizes
type ResponseEnvelope struct {
	Status         string `json:"status"`
	ProcessCode    string `json:"processCode"`
	ProcessMessage string `json:"processMessage"`
}

// serializeFallback is written when the envelope itself cannot be encoded
var serializeFallback = []byte(`{"status":"FAILED","processCode":"ERR-SERIALIZE","processMessage":"Error while serializing the response."}`)

// marshal is swapped in tests to exercise the fallback body
var marshal = json.Marshal

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteFailure writes a FAILED envelope. Encoding problems never fail the
// response: a fixed fallback body is written instead.
func WriteFailure(w http.ResponseWriter, status int, processCode, processMessage string) error {
	body, err := marshal(ResponseEnvelope{
		Status:         StatusFailed,
		ProcessCode:    processCode,
		ProcessMessage: processMessage,
	})
	if err != nil {
		body = serializeFallback
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, writeErr := w.Write(body)
	return writeErr
}
