package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Rackosdra/kt-ex/kickertool"
	"github.com/Rackosdra/kt-ex/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	errorResponse(w, r, http.StatusInternalServerError,
		"the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

// mapServiceErrorToHTTP translates service and remote-client sentinels onto
// HTTP statuses. Upstream failures surface as gateway errors so callers can
// tell a mirror problem from a platform problem.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var remoteErr *kickertool.RemoteError
	var transportErr *kickertool.TransportError

	switch {
	case errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrCourtNotFound),
		errors.Is(err, kickertool.ErrNotFound):
		notFoundResponse(w, r)
	case errors.Is(err, services.ErrMatchNotRunning),
		errors.Is(err, kickertool.ErrMatchNotRunning):
		errorResponse(w, r, http.StatusPreconditionFailed, "match is not in running state")
	case errors.Is(err, services.ErrValidationFailed):
		errorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		unauthorizedResponse(w, r, "invalid credentials")
	case errors.Is(err, kickertool.ErrUnauthorized):
		errorResponse(w, r, http.StatusBadGateway, "tournament platform rejected the API key")
	case errors.Is(err, kickertool.ErrAPIKeyMissing):
		errorResponse(w, r, http.StatusServiceUnavailable, "tournament platform API key is not configured")
	case errors.Is(err, kickertool.ErrTimeout):
		errorResponse(w, r, http.StatusGatewayTimeout, "tournament platform request timed out")
	case errors.As(err, &transportErr), errors.As(err, &remoteErr),
		errors.Is(err, kickertool.ErrMalformedResponse):
		errorResponse(w, r, http.StatusBadGateway, "tournament platform request failed")
	default:
		serverErrorResponse(w, r, err)
	}
}
