package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"guesthouse/shared/constant"
	"guesthouse/shared/failure"
	"guesthouse/shared/logger"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const internalErrorMessage = "internal server error"

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

type Error struct {
	Error *string `json:"error,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

// WithMessage sends {"message": ...}.
func WithMessage(writer http.ResponseWriter, code int, message string) {
	write(writer, code, Message{Message: &message})
}

// WithJSON sends {"data": ...}.
func WithJSON(writer http.ResponseWriter, code int, jsonPayload any) {
	write(writer, code, Data[any]{Data: &jsonPayload})
}

// WithError sends {"error": ...} with the status and message of the
// failure.Failure in err's chain; wrapping context stays out of the body.
// Anything else is a 500 whose text stays in the logs, not in the body.
func WithError(writer http.ResponseWriter, err error) {
	var fail *failure.Failure
	if !errors.As(err, &fail) {
		logger.ErrorWithStack(err)

		errMsg := internalErrorMessage
		write(writer, http.StatusInternalServerError, Error{Error: &errMsg})

		return
	}

	write(writer, fail.Code, Error{Error: &fail.Message})
}

// ErrorTracer is the part of a tracing scope Fail needs.
type ErrorTracer interface {
	TraceError(err error)
}

// Fail records err on the scope, logs it with msg and sends it through WithError.
// Client errors are logged at warn level.
func Fail(writer http.ResponseWriter, scope ErrorTracer, err error, msg string) {
	scope.TraceError(err)

	level := zerolog.WarnLevel
	if failure.GetCode(err) >= http.StatusInternalServerError {
		level = zerolog.ErrorLevel
	}

	log.WithLevel(level).Err(err).Msg(msg)

	WithError(writer, err)
}

func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

func WithPreparingShutdown(writer http.ResponseWriter) {
	writer.Header().Set(constant.RequestHeaderConnection, "close")
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func write(writer http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)
		writer.WriteHeader(http.StatusInternalServerError)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)

	if _, err = writer.Write(body); err != nil {
		logger.ErrorWithStack(err)
	}
}
