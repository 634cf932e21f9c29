package common

import "errors"

// Error kinds surfaced at the CLI boundary. All are terminal: the process
// reports them and exits; nothing is retried automatically.
var (
	// ErrConfig marks missing or malformed settings (environments, stores,
	// migration directory). Raised before any data is touched.
	ErrConfig = errors.New("configuration error")

	// ErrValidation marks bad invocation input: unknown environment name,
	// malformed source:dest argument, archive not found.
	ErrValidation = errors.New("validation error")

	// ErrConfirmationDeclined is returned when the operator declines an
	// irrevocable action (copy, drop, restore). No side effects performed.
	ErrConfirmationDeclined = errors.New("confirmation declined")
)
