package handler

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/robalyx/steamfriends/internal/rest/types"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(body)

	return err
}

func writeError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, types.ErrorResponse{Error: message})
}
