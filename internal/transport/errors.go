package transport

import (
	"errors"
	"net/http"

	"github.com/jaminalder/gamehub/internal/hub"
)

// writeError maps a hub error (or a transport-local decode error) to its
// HTTP status and exact plain-text body, per the external error taxonomy.
// Unrecognised errors fall back to 400 so a handler bug never leaks a 500
// with internal detail.
func writeError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func classify(err error) (int, string) {
	var (
		gameNotFound    *hub.GameNotFoundError
		sessionNotFound *hub.SessionNotFoundError
		invalidUsername *hub.InvalidUsernameError
		gameWaiting     *hub.GameWaitingError
		gameInProgress  *hub.GameInProgressError
		gameEnded       *hub.GameEndedError
		invalidMove     *hub.InvalidMoveError
		invalidPlayer   *hub.InvalidPlayerError
		decodeErr       *decodeError
		tooLarge        *payloadTooLargeError
	)

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusBadRequest, tooLarge.Error()
	case errors.As(err, &gameNotFound):
		return http.StatusNotFound, gameNotFound.Error()
	case errors.As(err, &sessionNotFound):
		return http.StatusNotFound, sessionNotFound.Error()
	case errors.As(err, &invalidUsername):
		return http.StatusBadRequest, invalidUsername.Error()
	case errors.As(err, &gameWaiting):
		return http.StatusBadRequest, gameWaiting.Error()
	case errors.As(err, &gameInProgress):
		return http.StatusBadRequest, gameInProgress.Error()
	case errors.As(err, &gameEnded):
		return http.StatusBadRequest, gameEnded.Error()
	case errors.As(err, &invalidMove):
		return http.StatusBadRequest, invalidMove.Error()
	case errors.As(err, &invalidPlayer):
		return http.StatusBadRequest, invalidPlayer.Error()
	case errors.As(err, &decodeErr):
		return http.StatusBadRequest, decodeErr.Error()
	default:
		return http.StatusBadRequest, "Json deserialize error: " + err.Error()
	}
}

// decodeErrorKind names which part of the request a decodeError came from,
// selecting the error-body prefix the external schema requires.
type decodeErrorKind string

const (
	decodeKindJSON  decodeErrorKind = "Json"
	decodeKindPath  decodeErrorKind = "Path"
	decodeKindQuery decodeErrorKind = "Query"
)

// decodeError wraps a parse/validation failure with the prefix its origin
// requires (body, path parameter, or query string).
type decodeError struct {
	kind   decodeErrorKind
	detail string
}

func (e *decodeError) Error() string {
	return string(e.kind) + " deserialize error: " + e.detail
}

func newJSONError(detail string) error  { return &decodeError{kind: decodeKindJSON, detail: detail} }
func newPathError(detail string) error  { return &decodeError{kind: decodeKindPath, detail: detail} }
func newQueryError(detail string) error { return &decodeError{kind: decodeKindQuery, detail: detail} }

// errPayloadTooLarge is returned by request body decoding when
// http.MaxBytesReader rejects an oversized body.
var errPayloadTooLarge = &payloadTooLargeError{}

type payloadTooLargeError struct{}

func (*payloadTooLargeError) Error() string { return "Json payload size is bigger than allowed" }
