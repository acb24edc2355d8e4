package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/antigravity-ventures/thaiturk/internal/model"
)

// SaveTravelRequest records a travel/booking inquiry.
func (s *SQLiteStorage) SaveTravelRequest(ctx context.Context, request *model.TravelRequest) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTravelRequest(request); err != nil {
		return err
	}
	return s.saveTravelRequestTx(ctx, s.db, request)
}

func (s *SQLiteStorage) saveTravelRequestTx(ctx context.Context, db dbtx, request *model.TravelRequest) error {
	createdAt := request.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO travel_requests (request_id, full_name, phone, language, room_type,
			check_in, nights, guests, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(request_id) DO UPDATE SET
			status = excluded.status
	`, request.RequestID, request.FullName, request.Phone, request.Language,
		request.RoomType, request.CheckIn, request.Nights, request.Guests,
		request.Status, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save travel request: %w", err)
	}
	return nil
}
