package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"msgboard/internal/common"
)

const maxJSONBody = 1 << 20

// decodeJSON reads a single JSON object from the body, answering 400 itself
// when the payload is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		msg := "Invalid request payload"
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			msg = "Request body too large"
		case errors.Is(err, io.EOF):
			msg = "Request body is required"
		}
		common.RespondWithError(w, r, http.StatusBadRequest, msg)
		return false
	}
	return true
}
