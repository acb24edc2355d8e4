package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTravelRequest indicates a malformed travel request.
var ErrInvalidTravelRequest = errors.New("invalid travel request")

// TravelRequest is a hotel/booking inquiry handled by the Travel sector.
type TravelRequest struct {
	CreatedAt time.Time
	RequestID string
	FullName  string
	Phone     string
	Language  string
	RoomType  string
	CheckIn   string // ISO date
	Status    string
	Nights    int
	Guests    int
}

// Validate checks the request's field constraints.
func (t *TravelRequest) Validate() error {
	if strings.TrimSpace(t.RequestID) == "" {
		return fmt.Errorf("%w: missing request ID", ErrInvalidTravelRequest)
	}
	if t.Nights <= 0 {
		return fmt.Errorf("%w: nights must be positive", ErrInvalidTravelRequest)
	}
	if t.Guests <= 0 {
		return fmt.Errorf("%w: guests must be positive", ErrInvalidTravelRequest)
	}
	return nil
}

// TravelQuote is the priced answer to a travel request.
type TravelQuote struct {
	RequestID  string
	Property   string
	RoomType   string
	CheckIn    string
	NextAction string
	Nights     int
	Guests     int
	PriceUSD   float64
	Available  bool
}

// AsMap renders the quote for the dispatch envelope.
func (q *TravelQuote) AsMap() map[string]any {
	status := "quote_ready"
	if !q.Available {
		status = "unavailable"
	}
	return map[string]any{
		"status":      status,
		"request_id":  q.RequestID,
		"property":    q.Property,
		"room_type":   q.RoomType,
		"check_in":    q.CheckIn,
		"nights":      q.Nights,
		"guests":      q.Guests,
		"price_usd":   q.PriceUSD,
		"available":   q.Available,
		"next_action": q.NextAction,
	}
}
