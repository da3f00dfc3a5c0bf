package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Abdullah34123513/english-sub002/internal/model"
)

// PostgresAvailabilityRepo はPostgreSQLを使用した空き枠リポジトリ。
type PostgresAvailabilityRepo struct {
	db *sql.DB
}

// NewPostgresAvailabilityRepo はPostgresAvailabilityRepoを生成する。
func NewPostgresAvailabilityRepo(db *sql.DB) *PostgresAvailabilityRepo {
	return &PostgresAvailabilityRepo{db: db}
}

// FindByID は指定IDの空き枠を取得する。見つからない場合はnilを返す。
func (r *PostgresAvailabilityRepo) FindByID(ctx context.Context, id string) (*model.AvailabilitySlot, error) {
	slot := &model.AvailabilitySlot{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, teacher_id, day_of_week, start_minute, end_minute, is_available, created_at
		 FROM availability_slots WHERE id = $1`,
		id,
	).Scan(&slot.ID, &slot.TeacherID, &slot.DayOfWeek, &slot.StartMinute, &slot.EndMinute, &slot.IsAvailable, &slot.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find availability slot by ID: %w", err)
	}

	return slot, nil
}

// Create は空き枠を作成する。
func (r *PostgresAvailabilityRepo) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO availability_slots (id, teacher_id, day_of_week, start_minute, end_minute, is_available, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		slot.ID, slot.TeacherID, slot.DayOfWeek, slot.StartMinute, slot.EndMinute, slot.IsAvailable, slot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert availability slot: %w", err)
	}
	return nil
}

// ListByTeacherID は講師の空き枠一覧を曜日・開始時刻順で返す。
// onlyAvailableがtrueの場合はis_available = trueの枠のみ返す。
func (r *PostgresAvailabilityRepo) ListByTeacherID(ctx context.Context, teacherID string, onlyAvailable bool) ([]*model.AvailabilitySlot, error) {
	query := `SELECT id, teacher_id, day_of_week, start_minute, end_minute, is_available, created_at
	          FROM availability_slots WHERE teacher_id = $1`
	if onlyAvailable {
		query += ` AND is_available = true`
	}
	query += ` ORDER BY day_of_week, start_minute`

	rows, err := r.db.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.AvailabilitySlot
	for rows.Next() {
		slot := &model.AvailabilitySlot{}
		if err := rows.Scan(&slot.ID, &slot.TeacherID, &slot.DayOfWeek, &slot.StartMinute, &slot.EndMinute, &slot.IsAvailable, &slot.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan availability slot row: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate availability slot rows: %w", err)
	}

	return slots, nil
}

// DeleteByID は指定IDの空き枠を削除する。
func (r *PostgresAvailabilityRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM availability_slots WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete availability slot: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("availability slot not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ AvailabilityRepository = (*PostgresAvailabilityRepo)(nil)
