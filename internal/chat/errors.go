package chat

import (
	"github.com/SyedSaudAli-gh/todochat/internal/api"
)

// UserErrorMessage converts any error from the chat facade into one fixed
// user-facing sentence. Local validation errors keep their own text and
// are never confused with server-origin failures.
func UserErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	apiErr, ok := api.AsError(err)
	if !ok {
		// Validation errors raised before any network attempt.
		return err.Error()
	}

	switch apiErr.Kind() {
	case api.KindInvalidInput:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "Invalid request. Please check your message and try again."
	case api.KindUnauthenticated:
		return "Authentication error. Please log in again."
	case api.KindForbidden:
		return "You do not have permission to access this conversation."
	case api.KindNotFound:
		return "Conversation not found. Starting a new conversation."
	case api.KindServerError:
		return "Server error occurred. Please try again."
	case api.KindUnavailable:
		return "Service temporarily unavailable. Please try again shortly."
	case api.KindNetworkError:
		return "Unable to connect to the server. Please check your internet connection and try again."
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return "An unexpected error occurred. Please try again."
}
