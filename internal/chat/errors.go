package chat

import "errors"

// Typed outcomes of chat operations. The gateway and the HTTP layer match on
// these with errors.Is to pick the client-visible signal; they are expected
// results, not failures worth an error log.
var (
	ErrAccessDenied    = errors.New("no access to this chat: registration to the event required")
	ErrRateLimited     = errors.New("message rate limit exceeded")
	ErrMessageNotFound = errors.New("message not found")
	ErrForbidden       = errors.New("not allowed to perform this action")
)
