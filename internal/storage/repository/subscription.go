package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/venue-billing/internal/models"
)

// GetLatestSubscriptionByOwner возвращает последнюю по времени создания
// запись подписки владельца. Отсутствие записи — это ErrNotFound,
// а не пустая подписка: вызывающая сторона различает "нет подписки"
// и сбой чтения.
func (s *Storage) GetLatestSubscriptionByOwner(ctx context.Context, ownerUID string) (*models.Subscription, error) {
	const op = "storage.GetLatestSubscriptionByOwner"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, owner_uid, plan_type, status, start_date, end_date, created_at,
			      price_per_month, max_venues, max_courts_per_venue
			  FROM subscriptions
			  WHERE owner_uid = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT 1`
	var sub models.Subscription
	var endDate sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, ownerUID).Scan(
		&sub.ID, &sub.OwnerUID, &sub.PlanType, &sub.Status, &sub.StartDate, &endDate,
		&sub.CreatedAt, &sub.PricePerMonth, &sub.MaxVenues, &sub.MaxCourtsPerVenue)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if endDate.Valid {
		sub.EndDate = &endDate.Time
	}
	return &sub, nil
}

// CreateSubscription вставляет новую запись подписки и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (owner_uid, plan_type, status, start_date, end_date,
			      price_per_month, max_venues, max_courts_per_venue)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		sub.OwnerUID, sub.PlanType, sub.Status, sub.StartDate, sub.EndDate,
		sub.PricePerMonth, sub.MaxVenues, sub.MaxCourtsPerVenue).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpgradeToPremium переводит бесплатную подписку на премиум-план.
// Предикат plan_type = 'free' делает операцию идемпотентной: повторный
// вызов для уже переведённой записи не меняет ни одной строки.
func (s *Storage) UpgradeToPremium(ctx context.Context, id, pricePerMonth int) (int64, error) {
	const op = "storage.UpgradeToPremium"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET plan_type = $1, status = $2, price_per_month = $3
			  WHERE id = $4 AND plan_type = $5`
	result, err := s.DB.ExecContext(ctx, query,
		models.PlanPremium, models.StatusActive, pricePerMonth, id, models.PlanFree)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// SetSubscriptionStatus выставляет статус записи подписки.
func (s *Storage) SetSubscriptionStatus(ctx context.Context, id int, status models.SubscriptionStatus) (int64, error) {
	const op = "storage.SetSubscriptionStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ReactivateSubscription возвращает отменённую подписку в действие:
// премиум-план, статус active и свежие даты начала и окончания цикла.
func (s *Storage) ReactivateSubscription(ctx context.Context, id int, startDate, endDate time.Time) (int64, error) {
	const op = "storage.ReactivateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET plan_type = $1, status = $2, start_date = $3, end_date = $4
			  WHERE id = $5`
	result, err := s.DB.ExecContext(ctx, query,
		models.PlanPremium, models.StatusActive, startDate, endDate, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// UpdateSubscription применяет частичное обновление подписки администратором.
// Обновляются только присланные поля, даты уже распарсены сервисным слоем.
func (s *Storage) UpdateSubscription(ctx context.Context, id int, fields map[string]any) (int64, error) {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if len(fields) == 0 {
		return 0, nil
	}

	allowed := map[string]struct{}{
		"plan_type": {}, "status": {}, "start_date": {}, "end_date": {}, "price_per_month": {},
	}
	setParts := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	i := 1
	for column, value := range fields {
		if _, ok := allowed[column]; !ok {
			return 0, fmt.Errorf("%s: unknown column %q", op, column)
		}
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, i))
		args = append(args, value)
		i++
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE subscriptions SET %s WHERE id = $%d`,
		strings.Join(setParts, ", "), i)
	result, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}
