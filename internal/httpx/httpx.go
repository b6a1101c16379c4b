package httpx

import (
	"encoding/json"
	"net/http"
)

// APIError matches the body clients already parse: {"detail": "..."}.
type APIError struct {
	Detail string `json:"detail"`
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, APIError{Detail: msg})
}
