// Package teacher は講師プロフィールと空き枠管理のドメインロジックを提供する。
package teacher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Abdullah34123513/english-sub002/internal/authz"
	"github.com/Abdullah34123513/english-sub002/internal/model"
	"github.com/Abdullah34123513/english-sub002/internal/repository"
	"github.com/Abdullah34123513/english-sub002/internal/security"
)

// UpdateProfileInput はプロフィール更新の入力。
type UpdateProfileInput struct {
	HourlyRateCents int
	Bio             string
	ExperienceYears int
	Education       string
	Languages       []string
	IsActive        bool
}

// AddAvailabilityInput は空き枠追加の入力。
type AddAvailabilityInput struct {
	DayOfWeek   int
	StartMinute int
	EndMinute   int
}

// Service は講師プロフィールと空き枠のサービス層。
type Service struct {
	teacherRepo  repository.TeacherRepository
	availRepo    repository.AvailabilityRepository
	bioSanitizer security.BioSanitizerService
	now          func() time.Time
}

// NewService はServiceを生成する。
// nowFnがnilの場合はtime.Nowを使用する。
func NewService(
	teacherRepo repository.TeacherRepository,
	availRepo repository.AvailabilityRepository,
	bioSanitizer security.BioSanitizerService,
	nowFn func() time.Time,
) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		teacherRepo:  teacherRepo,
		availRepo:    availRepo,
		bioSanitizer: bioSanitizer,
		now:          nowFn,
	}
}

// EnsureProfile は指定ユーザーの講師プロフィールを取得し、
// 存在しない場合は安全なデフォルト値で作成して返す（get-or-create）。
//
// 繰り返し呼んでも安全で、同一ユーザーの並行した初回呼び出しでも安全。
// ストアのuser_id一意制約が最後の防衛線であり、作成時の重複エラーは
// 「プロフィールは既に存在する」として再読込にフォールバックする。
func (s *Service) EnsureProfile(ctx context.Context, userID string) (*model.Teacher, error) {
	existing, err := s.teacherRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find teacher profile: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	created := &model.Teacher{
		ID:        uuid.New().String(),
		UserID:    userID,
		Languages: []string{},
		IsActive:  true,
		CreatedAt: s.now(),
	}

	err = s.teacherRepo.Create(ctx, created)
	if errors.Is(err, repository.ErrDuplicateKey) {
		// 並行した初回アクセスに先を越された場合。勝者の行を返す。
		winner, findErr := s.teacherRepo.FindByUserID(ctx, userID)
		if findErr != nil {
			return nil, fmt.Errorf("failed to re-read teacher profile after duplicate: %w", findErr)
		}
		if winner == nil {
			return nil, fmt.Errorf("teacher profile vanished after duplicate key for user %s", userID)
		}
		return winner, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create teacher profile: %w", err)
	}

	slog.Info("teacher profile provisioned",
		slog.String("teacher_id", created.ID),
		slog.String("user_id", userID),
	)

	return created, nil
}

// GetByID は講師プロフィールを取得する。
func (s *Service) GetByID(ctx context.Context, teacherID string) (*model.Teacher, error) {
	t, err := s.teacherRepo.FindByID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to find teacher: %w", err)
	}
	if t == nil {
		return nil, model.NewTeacherNotFoundError(teacherID)
	}
	return t, nil
}

// ListActive は受付中の講師一覧を返す。認証済みであれば誰でも閲覧できる。
func (s *Service) ListActive(ctx context.Context) ([]*model.Teacher, error) {
	teachers, err := s.teacherRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active teachers: %w", err)
	}
	return teachers, nil
}

// UpdateProfile は自身の講師プロフィールを更新する。
// プロフィールが未作成の場合は先に作成する（EnsureProfileを経由）。
// 自己紹介文は保存前にサニタイズされる。
func (s *Service) UpdateProfile(ctx context.Context, actor model.Identity, input UpdateProfileInput) (*model.Teacher, error) {
	if actor.Role != model.RoleTeacher {
		return nil, model.NewForbiddenError("講師プロフィールの更新")
	}
	if input.HourlyRateCents < 0 {
		return nil, model.NewValidationError("時給は0以上で指定してください")
	}

	t, err := s.EnsureProfile(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	t.HourlyRateCents = input.HourlyRateCents
	t.Bio = s.bioSanitizer.Sanitize(input.Bio)
	t.ExperienceYears = input.ExperienceYears
	t.Education = input.Education
	t.Languages = input.Languages
	if t.Languages == nil {
		t.Languages = []string{}
	}
	t.IsActive = input.IsActive

	if err := s.teacherRepo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update teacher profile: %w", err)
	}

	return t, nil
}

// AddAvailability は自身の講師プロフィールに空き枠を追加する。
func (s *Service) AddAvailability(ctx context.Context, actor model.Identity, input AddAvailabilityInput) (*model.AvailabilitySlot, error) {
	if actor.Role != model.RoleTeacher {
		return nil, model.NewForbiddenError("空き枠の追加")
	}
	if input.DayOfWeek < 0 || input.DayOfWeek > 6 {
		return nil, model.NewValidationError("曜日は0〜6で指定してください")
	}
	if input.StartMinute < 0 || input.EndMinute > 24*60 || input.StartMinute >= input.EndMinute {
		return nil, model.NewValidationError("開始時刻は終了時刻より前で指定してください")
	}

	t, err := s.EnsureProfile(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	slot := &model.AvailabilitySlot{
		ID:          uuid.New().String(),
		TeacherID:   t.ID,
		DayOfWeek:   input.DayOfWeek,
		StartMinute: input.StartMinute,
		EndMinute:   input.EndMinute,
		IsAvailable: true,
		CreatedAt:   s.now(),
	}

	if err := s.availRepo.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to create availability slot: %w", err)
	}

	return slot, nil
}

// ListAvailability は指定講師の空き枠一覧を返す。
// 所有講師本人には全枠を、それ以外には受付中の枠のみを返す。
func (s *Service) ListAvailability(ctx context.Context, actor model.Identity, teacherID string) ([]*model.AvailabilitySlot, error) {
	t, err := s.teacherRepo.FindByID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to find teacher: %w", err)
	}
	if t == nil {
		return nil, model.NewTeacherNotFoundError(teacherID)
	}

	onlyAvailable := !authz.CanActAsTeacher(actor, t)
	slots, err := s.availRepo.ListByTeacherID(ctx, teacherID, onlyAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability slots: %w", err)
	}
	return slots, nil
}

// DeleteAvailability は空き枠を削除する。
// 親のTeacherレコードを所有する講師本人のみが削除できる。
func (s *Service) DeleteAvailability(ctx context.Context, actor model.Identity, slotID string) error {
	slot, err := s.availRepo.FindByID(ctx, slotID)
	if err != nil {
		return fmt.Errorf("failed to find availability slot: %w", err)
	}
	if slot == nil {
		return model.NewAvailabilityNotFoundError(slotID)
	}

	parent, err := s.teacherRepo.FindByID(ctx, slot.TeacherID)
	if err != nil {
		return fmt.Errorf("failed to find parent teacher: %w", err)
	}
	if !authz.CanActAsTeacher(actor, parent) {
		return model.NewForbiddenError("他の講師の空き枠の削除")
	}

	if err := s.availRepo.DeleteByID(ctx, slotID); err != nil {
		return fmt.Errorf("failed to delete availability slot: %w", err)
	}

	slog.Info("availability slot deleted",
		slog.String("slot_id", slotID),
		slog.String("teacher_id", slot.TeacherID),
	)

	return nil
}
