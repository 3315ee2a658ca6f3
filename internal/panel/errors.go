package panel

import (
	"errors"

	"github.com/GTDGit/gtd_shop/pkg/adminapi"
)

var (
	// ErrBusy is returned when an upload or submit is already in flight.
	ErrBusy = errors.New("another operation is in progress")
	// ErrInvalidState is returned when an action is not valid in the current workflow state.
	ErrInvalidState = errors.New("action not allowed in current state")
	// ErrNoFile is returned by UploadSelected when no file was selected.
	ErrNoFile = errors.New("no file selected")
	// ErrStale is returned by Load when a newer request superseded this one.
	ErrStale = errors.New("stale response discarded")
)

// ValidationError is a local check that failed before any request was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ConfigurationError reports panel settings that make the API unreachable.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Setting + " " + e.Message
}

type (
	// TransportError is a network failure talking to the API.
	TransportError = adminapi.TransportError
	// ServiceError is an API response with success:false.
	ServiceError = adminapi.ServiceError
)

// userMessage picks the text shown to the user for err.
func userMessage(err error, fallback string) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var se *ServiceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}
