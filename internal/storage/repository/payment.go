package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/venue-billing/internal/models"
)

// CreatePayment записывает платёж, внесённый оператором, и возвращает его ID.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) (int, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (payment_type, subscription_id, payer_uid, amount,
			      currency, method, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		p.PaymentType, p.SubscriptionID, p.PayerUID, p.Amount,
		p.Currency, p.Method, p.Status).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListPaymentsByPayer возвращает платежи плательщика, новые первыми.
func (s *Storage) ListPaymentsByPayer(ctx context.Context, payerUID string) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByPayer"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, payment_type, subscription_id, payer_uid, amount,
			      currency, method, status, created_at, updated_at
			  FROM payments
		      WHERE payer_uid = $1
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, payerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.PaymentType, &p.SubscriptionID, &p.PayerUID,
			&p.Amount, &p.Currency, &p.Method, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
