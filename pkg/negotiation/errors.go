package negotiation

import "errors"

// Failure taxonomy for the negotiation engine. Services wrap these with
// request context; the HTTP edge maps them onto status codes.
var (
	// ErrUnknownFacet rejects a selection whose facet id was never
	// issued to this session. Guards against stale or forged client
	// state.
	ErrUnknownFacet = errors.New("selection references a facet never issued to this session")

	// ErrInvalidSessionState rejects an operation called out of
	// sequence. Non-retryable without restarting the session.
	ErrInvalidSessionState = errors.New("operation not allowed in current session state")

	// ErrSessionNotFound means the request id does not resolve to a
	// live session (never created, or expired out of the store).
	ErrSessionNotFound = errors.New("session not found")

	// ErrRefinementLimit is terminal for the refine path; the caller
	// must proceed to answer.
	ErrRefinementLimit = errors.New("refinement round limit exceeded")

	// ErrPromptTooLarge is retryable by trimming selections.
	ErrPromptTooLarge = errors.New("compiled prompt exceeds the scope instruction limit")

	// ErrGenerationTimeout and ErrGenerationFailure are retryable; the
	// session stays in its pre-call state.
	ErrGenerationTimeout = errors.New("generation timed out")
	ErrGenerationFailure = errors.New("generation failed")
)
