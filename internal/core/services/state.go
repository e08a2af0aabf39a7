package services

import "github.com/harborlight-labs/corpusqa/internal/logger"

// requestState tracks a request through the pipeline. Ingestion moves
// RECEIVED, CHUNKED, EMBEDDED, INDEXED in order; query answering moves
// RECEIVED, EMBEDDED_QUERY, RETRIEVED, SYNTHESIZED, ANSWERED.
// Any unrecoverable collaborator error moves the request to FAILED;
// the orchestrator performs no retries of its own.
type requestState string

const (
	stateReceived      requestState = "RECEIVED"
	stateChunked       requestState = "CHUNKED"
	stateEmbedded      requestState = "EMBEDDED"
	stateIndexed       requestState = "INDEXED"
	stateEmbeddedQuery requestState = "EMBEDDED_QUERY"
	stateRetrieved     requestState = "RETRIEVED"
	stateSynthesized   requestState = "SYNTHESIZED"
	stateAnswered      requestState = "ANSWERED"
	stateFailed        requestState = "FAILED"
)

// requestLog records state transitions for one request.
type requestLog struct {
	kind  string
	state requestState
}

func newRequestLog(kind string) *requestLog {
	logger.Section(kind)
	return &requestLog{kind: kind, state: stateReceived}
}

// transition advances the request to the next state.
func (r *requestLog) transition(next requestState) {
	logger.Debug("%s: %s -> %s", r.kind, r.state, next)
	r.state = next
}

// fail moves the request to FAILED and returns err unchanged so call
// sites can `return nil, req.fail(err)`.
func (r *requestLog) fail(err error) error {
	logger.Warn("%s: %s -> %s: %v", r.kind, r.state, stateFailed, err)
	r.state = stateFailed
	return err
}
