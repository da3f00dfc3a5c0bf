package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Abdullah34123513/english-sub002/internal/model"
)

// PostgresPaymentRepo はPostgreSQLを使用した決済リポジトリ。
type PostgresPaymentRepo struct {
	db *sql.DB
}

// NewPostgresPaymentRepo はPostgresPaymentRepoを生成する。
func NewPostgresPaymentRepo(db *sql.DB) *PostgresPaymentRepo {
	return &PostgresPaymentRepo{db: db}
}

const paymentColumns = `id, booking_id, amount_cents, method, status, approved_by, approved_at, rejection_reason, admin_notes, created_at, updated_at`

// FindByID は指定IDの決済を取得する。見つからない場合はnilを返す。
func (r *PostgresPaymentRepo) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	p := &model.Payment{}
	var approvedBy, rejectionReason, adminNotes sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.BookingID, &p.AmountCents, &p.Method, &p.Status, &approvedBy, &p.ApprovedAt, &rejectionReason, &adminNotes, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment by ID: %w", err)
	}

	p.ApprovedBy = approvedBy.String
	p.RejectionReason = rejectionReason.String
	p.AdminNotes = adminNotes.String
	return p, nil
}

// Create は決済を作成する。
func (r *PostgresPaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (id, booking_id, amount_cents, method, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		payment.ID, payment.BookingID, payment.AmountCents, payment.Method,
		payment.Status, payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// UpdateAdjudication は裁定結果（status、approved_by、approved_at、
// rejection_reason、admin_notes）を更新する。
func (r *PostgresPaymentRepo) UpdateAdjudication(ctx context.Context, payment *model.Payment) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payments
		 SET status = $2, approved_by = NULLIF($3, ''), approved_at = $4,
		     rejection_reason = NULLIF($5, ''), admin_notes = NULLIF($6, ''), updated_at = now()
		 WHERE id = $1`,
		payment.ID, payment.Status, payment.ApprovedBy, payment.ApprovedAt,
		payment.RejectionReason, payment.AdminNotes,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment adjudication: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("payment not found: %s", payment.ID)
	}
	return nil
}

// ListAll は全決済を作成日時の降順で返す。
func (r *PostgresPaymentRepo) ListAll(ctx context.Context) ([]*model.Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY created_at DESC`)
}

// ListByStudentID は受講者が提出した決済一覧を作成日時の降順で返す。
// 予約テーブルとJOINして受講者を特定する。
func (r *PostgresPaymentRepo) ListByStudentID(ctx context.Context, studentID string) ([]*model.Payment, error) {
	return r.list(ctx,
		`SELECT p.id, p.booking_id, p.amount_cents, p.method, p.status, p.approved_by, p.approved_at,
		        p.rejection_reason, p.admin_notes, p.created_at, p.updated_at
		 FROM payments p
		 JOIN bookings b ON b.id = p.booking_id
		 WHERE b.student_id = $1
		 ORDER BY p.created_at DESC`,
		studentID,
	)
}

// list はクエリ結果をPaymentのスライスにスキャンする。
func (r *PostgresPaymentRepo) list(ctx context.Context, query string, args ...any) ([]*model.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		p := &model.Payment{}
		var approvedBy, rejectionReason, adminNotes sql.NullString
		if err := rows.Scan(&p.ID, &p.BookingID, &p.AmountCents, &p.Method, &p.Status, &approvedBy, &p.ApprovedAt, &rejectionReason, &adminNotes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		p.ApprovedBy = approvedBy.String
		p.RejectionReason = rejectionReason.String
		p.AdminNotes = adminNotes.String
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment rows: %w", err)
	}

	return payments, nil
}

// compile-time interface check
var _ PaymentRepository = (*PostgresPaymentRepo)(nil)
