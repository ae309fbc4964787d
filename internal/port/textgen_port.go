package port

import "context"

// TextTransport sends one prompt to the generative text endpoint. A non-nil error
// means the call failed and may be retried. A nil error with an empty text means the
// reply did not have the expected shape.
type TextTransport interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
