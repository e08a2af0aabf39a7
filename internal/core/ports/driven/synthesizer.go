package driven

import "context"

// AnswerSynthesizer produces a grounded natural-language answer from a
// question and a context string assembled from retrieved passages.
//
// The core builds the context by concatenating passage contents in
// retrieval order separated by blank lines, with no deduplication and no
// truncation; an implementation backed by a length-limited model must
// enforce its own truncation.
type AnswerSynthesizer interface {
	// Synthesize answers the question using only the supplied context.
	// An empty answer with a nil error means the model declined to
	// answer from the given context.
	Synthesize(ctx context.Context, question, contextText string) (string, error)

	// ModelName returns the name of the completion model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
