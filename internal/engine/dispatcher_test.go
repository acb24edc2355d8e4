package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity-ventures/thaiturk/internal/model"
)

// stubHandler is a canned sector handler for dispatcher tests.
type stubHandler struct {
	err     error
	resp    Response
	sector  model.Sector
	lastReq Request
	called  bool
}

func (s *stubHandler) Sector() model.Sector { return s.sector }

func (s *stubHandler) Handle(_ context.Context, req Request) (Response, error) {
	s.called = true
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubHandler) Fallback() Response {
	return Response{"agent": "stub-fallback", "sector": string(s.sector), "action": "fallback"}
}

func newStubHandlers() map[model.Sector]*stubHandler {
	stubs := make(map[model.Sector]*stubHandler)
	for _, sector := range model.AllSectors() {
		stubs[sector] = &stubHandler{
			sector: sector,
			resp:   Response{"agent": "stub", "sector": string(sector), "action": "ok"},
		}
	}
	return stubs
}

func newTestDispatcher(t *testing.T, stubs map[model.Sector]*stubHandler) *Dispatcher {
	t.Helper()
	handlers := make([]Handler, 0, len(stubs))
	for _, h := range stubs {
		handlers = append(handlers, h)
	}
	d, err := NewDispatcher(newTestClassifier(t), handlers, nil)
	require.NoError(t, err)
	return d
}

func TestNewDispatcher_CoverageValidation(t *testing.T) {
	classifier := newTestClassifier(t)

	t.Run("missing handler", func(t *testing.T) {
		handlers := []Handler{
			&stubHandler{sector: model.SectorMedical},
			&stubHandler{sector: model.SectorTravel},
			&stubHandler{sector: model.SectorFactory},
		}
		_, err := NewDispatcher(classifier, handlers, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no handler registered")
	})

	t.Run("duplicate handler", func(t *testing.T) {
		handlers := []Handler{
			&stubHandler{sector: model.SectorMedical},
			&stubHandler{sector: model.SectorMedical},
		}
		_, err := NewDispatcher(classifier, handlers, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate handler")
	})
}

func TestDispatcher_RouteToSector(t *testing.T) {
	stubs := newStubHandlers()
	d := newTestDispatcher(t, stubs)

	envelope := d.Route(context.Background(), "I need a hair transplant in Istanbul")

	assert.True(t, stubs[model.SectorMedical].called)
	assert.Equal(t, "stub", envelope.AgentResponse["agent"])
	assert.Equal(t, string(model.SectorMedical), envelope.Classification["sector"])
}

func TestDispatcher_FailOpen(t *testing.T) {
	stubs := newStubHandlers()
	stubs[model.SectorMedical].err = errors.New("database exploded")
	d := newTestDispatcher(t, stubs)

	envelope := d.Route(context.Background(), "I need a hair transplant in Istanbul")

	// The caller still gets a usable response, never the error.
	assert.Equal(t, "stub-fallback", envelope.AgentResponse["agent"])
	assert.Equal(t, string(model.SectorMedical), envelope.AgentResponse["sector"])
}

func TestDispatcher_DegradedFlag(t *testing.T) {
	stubs := newStubHandlers()
	stubs[model.SectorTravel].err = errors.New("boom")
	d := newTestDispatcher(t, stubs)

	result := model.ClassificationResult{Sector: model.SectorTravel, Confidence: 0.4, RawInput: "otel"}
	outcome := d.Dispatch(context.Background(), result, nil)

	assert.True(t, outcome.Degraded)
	require.Error(t, outcome.Err)
	assert.Equal(t, "stub-fallback", outcome.Response["agent"])
}

func TestDispatcher_UnroutedInput(t *testing.T) {
	stubs := newStubHandlers()
	d := newTestDispatcher(t, stubs)

	envelope := d.Route(context.Background(), "qwerty asdfgh zxcvbn")

	for _, stub := range stubs {
		assert.False(t, stub.called, "no handler should run for Unknown")
	}
	assert.Equal(t, "unrouted", envelope.AgentResponse["status"])
	assert.Equal(t, string(model.SectorUnknown), envelope.Classification["sector"])

	sectors, ok := envelope.AgentResponse["valid_sectors"].([]string)
	require.True(t, ok)
	assert.Len(t, sectors, len(model.AllSectors()))
}

func TestDispatcher_StructuredInput(t *testing.T) {
	stubs := newStubHandlers()
	d := newTestDispatcher(t, stubs)

	input := map[string]any{
		"message":  "I need a hair transplant",
		"language": "ru",
		"budget":   5000.0,
	}
	d.Route(context.Background(), input)

	medical := stubs[model.SectorMedical]
	require.True(t, medical.called)
	assert.Equal(t, "I need a hair transplant", medical.lastReq.Message)
	assert.Equal(t, "ru", medical.lastReq.Language)
	assert.Equal(t, 5000.0, medical.lastReq.Metadata["budget"])
}

func TestRequestMetaFloat(t *testing.T) {
	tests := []struct {
		value any
		name  string
		want  float64
	}{
		{name: "float", value: 2500.0, want: 2500},
		{name: "int", value: 2500, want: 2500},
		{name: "numeric string", value: "5000", want: 5000},
		{name: "decimal string", value: "4999.50", want: 4999.5},
		{name: "padded string", value: " 3000 ", want: 3000},
		{name: "non-numeric string", value: "lots", want: -1},
		{name: "absent", value: nil, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{Metadata: map[string]any{}}
			if tt.value != nil {
				req.Metadata["budget_usd"] = tt.value
			}
			assert.InDelta(t, tt.want, req.MetaFloat("budget_usd", -1), 1e-9)
		})
	}
}

func TestNormalizeInput(t *testing.T) {
	tests := []struct {
		input    any
		wantMeta bool
		name     string
		wantText string
	}{
		{name: "plain string", input: "hello", wantText: "hello"},
		{
			name:     "map with message",
			input:    map[string]any{"message": "hi"},
			wantText: "hi",
			wantMeta: true,
		},
		{
			name:     "map with text",
			input:    map[string]any{"text": "hi"},
			wantText: "hi",
			wantMeta: true,
		},
		{
			name:     "map without message serializes whole",
			input:    map[string]any{"foo": "bar"},
			wantText: `{"foo":"bar"}`,
			wantMeta: true,
		},
		{name: "number", input: 42, wantText: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, meta := normalizeInput(tt.input)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantMeta, meta != nil)
		})
	}
}
