package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ruteri/synbio-provenance-registry/interfaces"
)

// WriteResult encodes result as JSON. The status is 200 on success and the
// error code otherwise.
func WriteResult(w http.ResponseWriter, log *slog.Logger, result Result) {
	status := http.StatusOK
	if !result.Success {
		status = result.Error
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Error("Failed to encode response", "err", err)
	}
}

// WriteError maps err onto its code and writes the failed result.
func WriteError(w http.ResponseWriter, log *slog.Logger, err error) {
	code := interfaces.ErrorCode(err)
	if code == interfaces.CodeInternal {
		log.Error("Registry call failed", "err", err)
	} else {
		log.Debug("Registry call rejected", "err", err, "code", code)
	}
	WriteResult(w, log, Fail(code))
}
