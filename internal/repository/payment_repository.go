package repository

import (
	"context"
	"database/sql"

	"github.com/global-DevLabs/zet-asociatie-sub002/internal/model"
)

// PaymentRepo provides data access to the payments table.
type PaymentRepo struct{ DB *sql.DB }

// NewPaymentRepo returns a PaymentRepo bound to the provided database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

const paymentColumns = "id, payment_code, member_id, paid_at, amount_bani, method, status, payment_type, contribution_year, created_at"

func scanPayment(row interface{ Scan(...any) error }) (model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.PaymentCode, &p.MemberID, &p.PaidAt, &p.AmountBani,
		&p.Method, &p.Status, &p.PaymentType, &p.ContributionYear, &p.CreatedAt)
	return p, err
}

// List returns all payments, newest first.  When memberID is non-zero the
// result is restricted to that member.
func (r *PaymentRepo) List(ctx context.Context, memberID uint64) ([]model.Payment, error) {
	query := "SELECT " + paymentColumns + " FROM payments"
	args := []any{}
	if memberID != 0 {
		query += " WHERE member_id = ?"
		args = append(args, memberID)
	}
	query += " ORDER BY paid_at DESC, id DESC"
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetByID fetches a single payment.  ErrNotFound is returned when no row
// matches.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (model.Payment, error) {
	p, err := scanPayment(r.DB.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return model.Payment{}, ErrNotFound
	}
	return p, err
}

// Create inserts a new payment row and returns its ID.  The payment code
// must already have been assigned by the sequence allocator.
func (r *PaymentRepo) Create(ctx context.Context, p model.Payment) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO payments (payment_code, member_id, paid_at, amount_bani, method, status, payment_type, contribution_year) VALUES (?,?,?,?,?,?,?,?)",
		p.PaymentCode, p.MemberID, p.PaidAt, p.AmountBani, p.Method, p.Status, p.PaymentType, p.ContributionYear)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Delete removes a payment row, returning the number of rows affected.
func (r *PaymentRepo) Delete(ctx context.Context, id uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
