package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sameershelar/toodo/internal/logging"
	"github.com/sameershelar/toodo/internal/server/services"
	"github.com/sameershelar/toodo/internal/server/validation"
)

const maxBodyBytes = 1 << 20

var errMalformedBody = services.BadRequest("Malformed request body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err with its user-safe message only.
func writeError(ctx context.Context, w http.ResponseWriter, l logging.Logger, err error) {
	e := services.AsError(err)
	switch e.Kind {
	case services.KindBadRequest:
		writeJSON(w, http.StatusBadRequest, validationResponse{Errors: e.Details})
		return
	case services.KindInternal:
		l.Error(ctx, "request failed", "error", e.Cause)
	}
	writeJSON(w, services.StatusFor(e.Kind), errorResponse{Error: e.Message})
}

// decode reads a JSON body into v and checks its validate tags. Anything
// that is not a single valid JSON document becomes a bad request.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errMalformedBody
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errMalformedBody
	}
	if problems := validation.Struct(v); len(problems) > 0 {
		return services.BadRequest(problems...)
	}
	return nil
}
