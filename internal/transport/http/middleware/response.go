package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes the {error, code} body shared with the handlers.
func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}
