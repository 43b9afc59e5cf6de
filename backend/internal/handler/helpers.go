package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oboe-board/oboe/shared/domain"
	internal_errors "github.com/oboe-board/oboe/shared/errors"
	"github.com/oboe-board/oboe/shared/utils"
)

func badRequest(msg string) error {
	return &internal_errors.ErrorWithStatusCode{Message: msg, StatusCode: http.StatusBadRequest}
}

// threadIdParam reads the {thread} path segment.
func threadIdParam(r *http.Request) (domain.ThreadId, error) {
	raw := chi.URLParam(r, "thread")
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, badRequest(fmt.Sprintf("invalid thread id %q", raw))
	}
	return domain.ThreadId(id), nil
}

// afterParam reads ?after=N; a missing value means "from the beginning".
func afterParam(r *http.Request) (domain.PostId, error) {
	raw := r.URL.Query().Get("after")
	if raw == "" {
		return 0, nil
	}
	after, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || after < 0 {
		return 0, badRequest("invalid after: must be a non-negative integer")
	}
	return after, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, body any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return utils.DecodeValidate(r.Body, body)
}
