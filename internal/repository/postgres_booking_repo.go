package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Abdullah34123513/english-sub002/internal/model"
)

// PostgresBookingRepo はPostgreSQLを使用した予約リポジトリ。
type PostgresBookingRepo struct {
	db *sql.DB
}

// NewPostgresBookingRepo はPostgresBookingRepoを生成する。
func NewPostgresBookingRepo(db *sql.DB) *PostgresBookingRepo {
	return &PostgresBookingRepo{db: db}
}

const bookingColumns = `id, teacher_id, student_id, starts_at, ends_at, status, payment_status, meet_link, created_at, updated_at`

// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
func (r *PostgresBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	b := &model.Booking{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.TeacherID, &b.StudentID, &b.StartsAt, &b.EndsAt, &b.Status, &b.PaymentStatus, &b.MeetLink, &b.CreatedAt, &b.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}

	return b, nil
}

// Create は予約を作成する。
func (r *PostgresBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (id, teacher_id, student_id, starts_at, ends_at, status, payment_status, meet_link, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		booking.ID, booking.TeacherID, booking.StudentID, booking.StartsAt, booking.EndsAt,
		booking.Status, booking.PaymentStatus, booking.MeetLink, booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// UpdateStatus は予約状態を更新する。
// meetLinkがnilの場合、保存済みのミーティングリンクは変更しない（部分更新）。
func (r *PostgresBookingRepo) UpdateStatus(ctx context.Context, id string, status model.BookingStatus, meetLink *string) error {
	var link sql.NullString
	if meetLink != nil {
		link = sql.NullString{String: *meetLink, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		 SET status = $2, meet_link = COALESCE($3, meet_link), updated_at = now()
		 WHERE id = $1`,
		id, status, link,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("booking not found: %s", id)
	}
	return nil
}

// UpdateStatusAndPaymentState は予約状態と決済状態を同時に更新する。
// 決済裁定による連動遷移で使用する。
func (r *PostgresBookingRepo) UpdateStatusAndPaymentState(ctx context.Context, id string, status model.BookingStatus, paymentState model.PaymentState) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $2, payment_status = $3, updated_at = now() WHERE id = $1`,
		id, status, paymentState,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status and payment state: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("booking not found: %s", id)
	}
	return nil
}

// ListAll は全予約を開始時刻の降順で返す。
func (r *PostgresBookingRepo) ListAll(ctx context.Context) ([]*model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY starts_at DESC`)
}

// ListByTeacherID は講師の予約一覧を開始時刻の降順で返す。
func (r *PostgresBookingRepo) ListByTeacherID(ctx context.Context, teacherID string) ([]*model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE teacher_id = $1 ORDER BY starts_at DESC`, teacherID)
}

// ListByStudentID は受講者の予約一覧を開始時刻の降順で返す。
func (r *PostgresBookingRepo) ListByStudentID(ctx context.Context, studentID string) ([]*model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE student_id = $1 ORDER BY starts_at DESC`, studentID)
}

// list はクエリ結果をBookingのスライスにスキャンする。
func (r *PostgresBookingRepo) list(ctx context.Context, query string, args ...any) ([]*model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		b := &model.Booking{}
		if err := rows.Scan(&b.ID, &b.TeacherID, &b.StudentID, &b.StartsAt, &b.EndsAt, &b.Status, &b.PaymentStatus, &b.MeetLink, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate booking rows: %w", err)
	}

	return bookings, nil
}

// compile-time interface check
var _ BookingRepository = (*PostgresBookingRepo)(nil)
