package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/antigravity-ventures/thaiturk/internal/model"
)

// Dispatcher orchestrates classification, handler invocation, result
// assembly and audit logging. It is stateless per call; its only shared
// state is the handler map and audit sink, both read-only after New.
type Dispatcher struct {
	classifier *Classifier
	audit      *slog.Logger
	handlers   map[model.Sector]Handler
}

// NewDispatcher wires the classifier to the sector handlers. Every routable
// sector must be covered exactly once.
func NewDispatcher(classifier *Classifier, handlers []Handler, audit *slog.Logger) (*Dispatcher, error) {
	if audit == nil {
		audit = slog.Default()
	}
	bySector := make(map[model.Sector]Handler, len(handlers))
	for _, h := range handlers {
		if _, dup := bySector[h.Sector()]; dup {
			return nil, fmt.Errorf("duplicate handler for sector %s", h.Sector())
		}
		bySector[h.Sector()] = h
	}
	for _, sector := range model.AllSectors() {
		if _, ok := bySector[sector]; !ok {
			return nil, fmt.Errorf("no handler registered for sector %s", sector)
		}
	}
	return &Dispatcher{
		classifier: classifier,
		handlers:   bySector,
		audit:      audit,
	}, nil
}

// Route classifies the input, invokes the matching sector handler and
// returns the combined envelope. Handler failures degrade to the handler's
// static fallback; they are never surfaced to the caller.
func (d *Dispatcher) Route(ctx context.Context, input any) Envelope {
	text, meta := normalizeInput(input)

	result := d.classifier.Classify(text)
	slog.Info("classified request",
		"sector", result.Sector,
		"confidence", result.Confidence,
		"matched", len(result.MatchedKeywords))

	outcome := d.dispatch(ctx, result, meta)
	d.logAudit(result, outcome)

	return Envelope{
		Classification: result.AsMap(),
		AgentResponse:  outcome.Response,
	}
}

// Dispatch runs the handler for an already-classified result. Exposed for
// callers that classify separately.
func (d *Dispatcher) Dispatch(ctx context.Context, result model.ClassificationResult, meta map[string]any) HandlerResult {
	outcome := d.dispatch(ctx, result, meta)
	d.logAudit(result, outcome)
	return outcome
}

func (d *Dispatcher) dispatch(ctx context.Context, result model.ClassificationResult, meta map[string]any) HandlerResult {
	if !result.Sector.Routable() {
		return HandlerResult{Response: unroutedResponse()}
	}

	handler := d.handlers[result.Sector]
	req := Request{
		Message:  result.RawInput,
		Language: metaLanguage(meta),
		Metadata: meta,
	}

	resp, err := handler.Handle(ctx, req)
	if err != nil {
		// Fail-open: a handler bug must not surface as a hard failure to an
		// end user awaiting a reply. The degraded flag keeps it visible.
		slog.Error("sector handler failed, using fallback response",
			"sector", result.Sector, "error", err)
		return HandlerResult{Response: handler.Fallback(), Degraded: true, Err: err}
	}
	return HandlerResult{Response: resp}
}

// logAudit appends the system's only durable trace of a routing decision.
func (d *Dispatcher) logAudit(result model.ClassificationResult, outcome HandlerResult) {
	agent, _ := outcome.Response["agent"].(string)
	action, _ := outcome.Response["action"].(string)
	d.audit.Info("dispatch audit",
		"timestamp", result.Timestamp,
		"sector", result.Sector,
		"confidence", result.Confidence,
		"keywords_matched", result.MatchedKeywords,
		"reasoning", result.Reasoning,
		"agent_dispatched", agent,
		"action", action,
		"degraded", outcome.Degraded)
}

// normalizeInput flattens the caller's input to a single text string. A
// structured input without a message/text field is serialized whole as a
// fallback; that quirk is intentional, not an error.
func normalizeInput(input any) (string, map[string]any) {
	switch v := input.(type) {
	case string:
		return v, nil
	case map[string]any:
		if msg, ok := v["message"].(string); ok && msg != "" {
			return msg, v
		}
		if msg, ok := v["text"].(string); ok && msg != "" {
			return msg, v
		}
		serialized, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v), v
		}
		return string(serialized), v
	default:
		return fmt.Sprint(v), nil
	}
}

func metaLanguage(meta map[string]any) string {
	if meta != nil {
		if lang, ok := meta["language"].(string); ok && lang != "" {
			return lang
		}
	}
	return ""
}

// unroutedResponse asks the caller to resubmit; the dispatcher never
// guesses a sector.
func unroutedResponse() Response {
	names := make([]string, 0, len(model.AllSectors()))
	for _, s := range model.AllSectors() {
		names = append(names, string(s))
	}
	return Response{
		"status": "unrouted",
		"message": fmt.Sprintf(
			"The request could not be assigned to a sector. Please rephrase it to fit one of: %s.",
			strings.Join(names, ", ")),
		"valid_sectors": names,
	}
}
