package handler

import (
	"context"
	"log/slog"

	"github.com/antigravity-ventures/thaiturk/internal/engine"
	"github.com/antigravity-ventures/thaiturk/internal/model"
)

// Factory is the dormant B2B manufacturing sector. Leads are acknowledged
// and queued; the sector activates in a later phase.
type Factory struct{}

// NewFactory creates the Factory sector handler.
func NewFactory() *Factory { return &Factory{} }

// Sector implements engine.Handler.
func (f *Factory) Sector() model.Sector { return model.SectorFactory }

// Handle queues the lead and reports dormant status.
func (f *Factory) Handle(_ context.Context, req engine.Request) (engine.Response, error) {
	slog.Warn("factory sector is dormant, lead queued", "message_len", len(req.Message))
	return engine.Response{
		"agent":   "FactoryAgent",
		"status":  "queued",
		"sector":  string(model.SectorFactory),
		"action":  "b2b_lead_qualification",
		"dormant": true,
		"message": "The B2B/manufacturing sector is not active yet. Your request " +
			"has been recorded and will be followed up once the sector activates.",
		"activation_criteria": map[string]any{
			"tourism_profitable_months": map[string]int{"required": 6, "current": 0},
			"trading_profitable_months": map[string]int{"required": 3, "current": 0},
		},
	}, nil
}

// Fallback implements engine.Handler.
func (f *Factory) Fallback() engine.Response {
	return engine.Response{
		"agent":   "FactoryAgent",
		"status":  "dormant",
		"sector":  string(model.SectorFactory),
		"action":  "b2b_lead_qualification",
		"dormant": true,
		"message": "The B2B/manufacturing sector is dormant. Your request has been recorded.",
	}
}
