package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrUnknownField   ErrCode = "UNKNOWN_FIELD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrViewNotFound ErrCode = "VIEW_NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid view ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrUnknownField:
		return "Only the major and year fields can be edited."
	case ErrViewNotFound:
		return "This profile view has expired. Reload the page to start again."
	case ErrRateLimitExceeded:
		return "Too many submissions. Please try again later."
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
