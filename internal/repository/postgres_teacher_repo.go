package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Abdullah34123513/english-sub002/internal/model"
)

// PostgresTeacherRepo はPostgreSQLを使用した講師リポジトリ。
type PostgresTeacherRepo struct {
	db *sql.DB
}

// NewPostgresTeacherRepo はPostgresTeacherRepoを生成する。
func NewPostgresTeacherRepo(db *sql.DB) *PostgresTeacherRepo {
	return &PostgresTeacherRepo{db: db}
}

// FindByID は指定IDの講師を取得する。見つからない場合はnilを返す。
func (r *PostgresTeacherRepo) FindByID(ctx context.Context, id string) (*model.Teacher, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, user_id, hourly_rate_cents, bio, experience_years, education, languages, is_active, created_at
		 FROM teachers WHERE id = $1`,
		id,
	))
}

// FindByUserID は所有ユーザーIDで講師を検索する。見つからない場合はnilを返す。
func (r *PostgresTeacherRepo) FindByUserID(ctx context.Context, userID string) (*model.Teacher, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, user_id, hourly_rate_cents, bio, experience_years, education, languages, is_active, created_at
		 FROM teachers WHERE user_id = $1`,
		userID,
	))
}

// Create は講師プロフィールを作成する。
// user_idの一意制約違反時はErrDuplicateKeyを返す。
// 並行した初回アクセスで同時に作成が走った場合、呼び出し側は
// ErrDuplicateKeyを「プロフィールは既に存在する」として扱える。
func (r *PostgresTeacherRepo) Create(ctx context.Context, teacher *model.Teacher) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO teachers (id, user_id, hourly_rate_cents, bio, experience_years, education, languages, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		teacher.ID, teacher.UserID, teacher.HourlyRateCents, teacher.Bio,
		teacher.ExperienceYears, teacher.Education, pq.Array(teacher.Languages),
		teacher.IsActive, teacher.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("teacher profile already exists for user %s: %w", teacher.UserID, ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("failed to insert teacher: %w", err)
	}
	return nil
}

// Update は講師プロフィールの属性を更新する。
func (r *PostgresTeacherRepo) Update(ctx context.Context, teacher *model.Teacher) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE teachers
		 SET hourly_rate_cents = $2, bio = $3, experience_years = $4,
		     education = $5, languages = $6, is_active = $7
		 WHERE id = $1`,
		teacher.ID, teacher.HourlyRateCents, teacher.Bio, teacher.ExperienceYears,
		teacher.Education, pq.Array(teacher.Languages), teacher.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update teacher: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("teacher not found: %s", teacher.ID)
	}
	return nil
}

// ListActive は受付中（is_active = true）の講師一覧を作成日時順で返す。
func (r *PostgresTeacherRepo) ListActive(ctx context.Context) ([]*model.Teacher, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, hourly_rate_cents, bio, experience_years, education, languages, is_active, created_at
		 FROM teachers WHERE is_active = true
		 ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active teachers: %w", err)
	}
	defer rows.Close()

	var teachers []*model.Teacher
	for rows.Next() {
		t := &model.Teacher{}
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.HourlyRateCents, &t.Bio, &t.ExperienceYears,
			&t.Education, pq.Array(&t.Languages), &t.IsActive, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan teacher row: %w", err)
		}
		teachers = append(teachers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teacher rows: %w", err)
	}

	return teachers, nil
}

// scanOne は単一行のクエリ結果をTeacherにスキャンする。
func (r *PostgresTeacherRepo) scanOne(row *sql.Row) (*model.Teacher, error) {
	t := &model.Teacher{}
	err := row.Scan(
		&t.ID, &t.UserID, &t.HourlyRateCents, &t.Bio, &t.ExperienceYears,
		&t.Education, pq.Array(&t.Languages), &t.IsActive, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find teacher: %w", err)
	}
	return t, nil
}

// compile-time interface check
var _ TeacherRepository = (*PostgresTeacherRepo)(nil)
