package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/venue-billing/internal/models"
)

// ListBookingsByOwnerInRange возвращает бронирования владельца с датой
// внутри полуоткрытого интервала [from, to). Ядро биллинга бронирования
// только читает, поэтому других методов по этой таблице нет.
func (s *Storage) ListBookingsByOwnerInRange(ctx context.Context, ownerUID string, from, to time.Time) ([]models.Booking, error) {
	const op = "storage.ListBookingsByOwnerInRange"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, owner_uid, venue_id, date, start_time, end_time, price, status
			  FROM bookings
			  WHERE owner_uid = $1 AND date >= $2 AND date < $3
			  ORDER BY date, start_time`
	rows, err := s.DB.QueryContext(ctx, query, ownerUID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Booking
	for rows.Next() {
		var b models.Booking
		var endTime sql.NullString
		if err := rows.Scan(&b.ID, &b.OwnerUID, &b.VenueID, &b.Date,
			&b.StartTime, &endTime, &b.Price, &b.Status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if endTime.Valid {
			b.EndTime = endTime.String
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
