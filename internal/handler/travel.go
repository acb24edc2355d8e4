package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/antigravity-ventures/thaiturk/internal/engine"
	"github.com/antigravity-ventures/thaiturk/internal/model"
	"github.com/antigravity-ventures/thaiturk/internal/service"
)

// highSeasonMultiplier applies during the Nov–Mar high season.
const highSeasonMultiplier = 1.35

// travelProperty is the single property the travel desk currently books.
const travelProperty = "AntiGravity Phuket Town Hotel"

type roomType struct {
	capacity     int
	basePriceUSD float64
}

var roomTypes = map[string]roomType{
	"standard": {capacity: 2, basePriceUSD: 85},
	"deluxe":   {capacity: 2, basePriceUSD: 120},
	"suite":    {capacity: 4, basePriceUSD: 180},
	"family":   {capacity: 5, basePriceUSD: 160},
}

var highSeasonMonths = map[time.Month]bool{
	time.November: true, time.December: true,
	time.January: true, time.February: true, time.March: true,
}

// Travel quotes hotel stays with seasonal pricing and records the request.
type Travel struct {
	store service.Storage
	now   func() time.Time
}

// NewTravel creates the Travel sector handler.
func NewTravel(store service.Storage) *Travel {
	return &Travel{store: store, now: time.Now}
}

// Sector implements engine.Handler.
func (t *Travel) Sector() model.Sector { return model.SectorTravel }

// Handle produces a quote for a booking inquiry and records it.
func (t *Travel) Handle(ctx context.Context, req engine.Request) (engine.Response, error) {
	checkIn := req.MetaString("check_in", t.now().UTC().Format("2006-01-02"))
	nights := int(req.MetaFloat("nights", 3))
	guests := int(req.MetaFloat("guests", 2))
	room := strings.ToLower(req.MetaString("room_type", "standard"))
	if _, ok := roomTypes[room]; !ok {
		room = "standard"
	}
	if nights <= 0 {
		nights = 3
	}
	if guests <= 0 {
		guests = 2
	}

	quote := t.Quote(checkIn, nights, guests, room)

	request := &model.TravelRequest{
		RequestID: newTravelRequestID(),
		FullName:  req.MetaString("full_name", ""),
		Phone:     req.MetaString("phone", ""),
		Language:  req.Language,
		RoomType:  room,
		CheckIn:   checkIn,
		Nights:    nights,
		Guests:    guests,
		Status:    "new",
		CreatedAt: t.now().UTC(),
	}
	if err := t.store.SaveTravelRequest(ctx, request); err != nil {
		// The quote is still useful; booking follow-up recovers the record.
		slog.Warn("failed to record travel request", "error", err)
	} else {
		quote.RequestID = request.RequestID
	}

	resp := engine.Response(quote.AsMap())
	resp["agent"] = "TravelAgent"
	resp["sector"] = string(model.SectorTravel)
	resp["action"] = "booking_coordination"
	return resp, nil
}

// Quote prices a stay. Unparseable check-in dates fall back to today, which
// keeps quoting infallible for arbitrary user input.
func (t *Travel) Quote(checkIn string, nights, guests int, room string) *model.TravelQuote {
	rt, ok := roomTypes[room]
	if !ok {
		rt = roomTypes["standard"]
		room = "standard"
	}

	ci, err := time.Parse("2006-01-02", checkIn)
	if err != nil {
		ci = t.now().UTC()
	}
	multiplier := 1.0
	if highSeasonMonths[ci.Month()] {
		multiplier = highSeasonMultiplier
	}
	price := model.RoundUSD(rt.basePriceUSD * float64(nights) * multiplier)

	available := guests <= rt.capacity
	nextAction := "confirm_reservation"
	if !available {
		nextAction = "suggest_alternatives"
	}

	return &model.TravelQuote{
		Property:   travelProperty,
		RoomType:   room,
		CheckIn:    checkIn,
		Nights:     nights,
		Guests:     guests,
		PriceUSD:   price,
		Available:  available,
		NextAction: nextAction,
	}
}

// Fallback implements engine.Handler.
func (t *Travel) Fallback() engine.Response {
	return engine.Response{
		"agent":  "TravelAgent",
		"status": "active",
		"sector": string(model.SectorTravel),
		"action": "booking_coordination",
		"message": "Your accommodation request has been received. " +
			"The operations team will check availability.",
		"next_steps": []string{
			"Availability check",
			"Price quote",
			"Reservation confirmation",
		},
	}
}

func newTravelRequestID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("TRV-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
