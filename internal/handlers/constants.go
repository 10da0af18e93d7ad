package handlers

const (
	ErrInvalidJSON          = "Invalid JSON body"
	ErrUnauthorized         = "Unauthorized"
	ErrInternalServerError  = "Internal server error"
	ErrTooManyRequests      = "Too many requests"
	ErrChildNotFound        = "Child not found"
	ErrSessionNotStored     = "Session could not be stored"
	ErrEmailAlreadyTaken    = "Email already registered"
	ErrInvalidEmailPassword = "Invalid email or password"
	ErrForbiddenRecipient   = "Reports can only be sent to your own email address"

	// maxBodyBytes bounds request bodies; a session with trials is a few KB
	maxBodyBytes = 1 << 20
)
