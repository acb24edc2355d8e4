package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/antigravity-ventures/thaiturk/internal/model"
)

// Request is the normalized input handed to a sector handler: the flattened
// message text plus any metadata carried from the caller.
type Request struct {
	Metadata map[string]any
	Message  string
	Language string
}

// MetaString returns a string metadata field, or the fallback when absent.
func (r Request) MetaString(key, fallback string) string {
	if v, ok := r.Metadata[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// MetaFloat returns a numeric metadata field, or the fallback when absent.
// Flag-sourced metadata arrives as strings, so numeric strings count.
func (r Request) MetaFloat(key string, fallback float64) float64 {
	switch v := r.Metadata[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

// Response is a sector handler's answer, shaped for the dispatch envelope.
type Response map[string]any

// Handler is the capability every sector implements. Handlers are
// constructed once at startup and must be safe for concurrent requests.
type Handler interface {
	// Sector identifies which classification outcomes this handler serves.
	Sector() model.Sector
	// Handle executes the sector's business logic for one request.
	Handle(ctx context.Context, req Request) (Response, error)
	// Fallback is the static self-describing response used when Handle
	// fails; the dispatcher substitutes it rather than surfacing the error.
	Fallback() Response
}

// HandlerResult keeps the distinction between an expected degraded response
// and a handler bug visible to logs and tests.
type HandlerResult struct {
	Err      error
	Response Response
	Degraded bool
}

// Envelope is the combined output of one routed request.
type Envelope struct {
	Classification map[string]any `json:"classification"`
	AgentResponse  Response       `json:"agent_response"`
}
