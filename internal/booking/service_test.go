package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abdullah34123513/english-sub002/internal/model"
)

// --- モック ---

type mockBookingRepo struct {
	findByIDFn        func(ctx context.Context, id string) (*model.Booking, error)
	createFn          func(ctx context.Context, booking *model.Booking) error
	updateStatusFn    func(ctx context.Context, id string, status model.BookingStatus, meetLink *string) error
	listAllFn         func(ctx context.Context) ([]*model.Booking, error)
	listByTeacherIDFn func(ctx context.Context, teacherID string) ([]*model.Booking, error)
	listByStudentIDFn func(ctx context.Context, studentID string) ([]*model.Booking, error)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFn != nil {
		return m.createFn(ctx, booking)
	}
	return nil
}
func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id string, status model.BookingStatus, meetLink *string) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status, meetLink)
	}
	return nil
}
func (m *mockBookingRepo) UpdateStatusAndPaymentState(ctx context.Context, id string, status model.BookingStatus, paymentState model.PaymentState) error {
	return nil
}
func (m *mockBookingRepo) ListAll(ctx context.Context) ([]*model.Booking, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}
func (m *mockBookingRepo) ListByTeacherID(ctx context.Context, teacherID string) ([]*model.Booking, error) {
	if m.listByTeacherIDFn != nil {
		return m.listByTeacherIDFn(ctx, teacherID)
	}
	return nil, nil
}
func (m *mockBookingRepo) ListByStudentID(ctx context.Context, studentID string) ([]*model.Booking, error) {
	if m.listByStudentIDFn != nil {
		return m.listByStudentIDFn(ctx, studentID)
	}
	return nil, nil
}

type mockTeacherRepo struct {
	findByIDFn     func(ctx context.Context, id string) (*model.Teacher, error)
	findByUserIDFn func(ctx context.Context, userID string) (*model.Teacher, error)
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*model.Teacher, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockTeacherRepo) FindByUserID(ctx context.Context, userID string) (*model.Teacher, error) {
	if m.findByUserIDFn != nil {
		return m.findByUserIDFn(ctx, userID)
	}
	return nil, nil
}
func (m *mockTeacherRepo) Create(ctx context.Context, teacher *model.Teacher) error { return nil }
func (m *mockTeacherRepo) Update(ctx context.Context, teacher *model.Teacher) error { return nil }
func (m *mockTeacherRepo) ListActive(ctx context.Context) ([]*model.Teacher, error) {
	return nil, nil
}

var (
	student = model.Identity{UserID: "student-1", Role: model.RoleStudent}
	admin   = model.Identity{UserID: "admin-1", Role: model.RoleAdmin}
)

func activeTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Teacher, error) {
			return &model.Teacher{ID: id, UserID: "teacher-user", IsActive: true}, nil
		},
	}
}

// --- テスト ---

// TestService_Create は予約作成の成功経路を検証する。
// 新規予約はPENDING/PENDINGで始まる。
func TestService_Create(t *testing.T) {
	var created *model.Booking
	bookingRepo := &mockBookingRepo{
		createFn: func(ctx context.Context, booking *model.Booking) error {
			created = booking
			return nil
		},
	}

	svc := NewService(bookingRepo, activeTeacherRepo(), nil, nil)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	got, err := svc.Create(context.Background(), student, "teacher-1", start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created == nil {
		t.Fatal("expected booking to be created")
	}
	if got.Status != model.BookingStatusPending {
		t.Errorf("Status = %q, want PENDING", got.Status)
	}
	if got.PaymentStatus != model.PaymentStatePending {
		t.Errorf("PaymentStatus = %q, want PENDING", got.PaymentStatus)
	}
	if got.StudentID != "student-1" {
		t.Errorf("StudentID = %q, want student-1", got.StudentID)
	}
}

// TestService_Create_NonStudent は受講者以外の予約作成が拒否されることを検証する。
func TestService_Create_NonStudent(t *testing.T) {
	svc := NewService(&mockBookingRepo{}, activeTeacherRepo(), nil, nil)

	start := time.Now()
	for _, actor := range []model.Identity{
		{UserID: "teacher-user", Role: model.RoleTeacher},
		{UserID: "admin-1", Role: model.RoleAdmin},
	} {
		_, err := svc.Create(context.Background(), actor, "teacher-1", start, start.Add(time.Hour))
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeForbidden {
			t.Errorf("role %s: expected FORBIDDEN error, got %v", actor.Role, err)
		}
	}
}

// TestService_Create_InactiveTeacher は受付停止中の講師への予約が拒否されることを検証する。
func TestService_Create_InactiveTeacher(t *testing.T) {
	teacherRepo := &mockTeacherRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Teacher, error) {
			return &model.Teacher{ID: id, UserID: "teacher-user", IsActive: false}, nil
		},
	}

	svc := NewService(&mockBookingRepo{}, teacherRepo, nil, nil)

	start := time.Now()
	_, err := svc.Create(context.Background(), student, "teacher-1", start, start.Add(time.Hour))
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeTeacherInactive {
		t.Fatalf("expected TEACHER_INACTIVE error, got %v", err)
	}
}

// TestService_Create_UnknownTeacher は存在しない講師への予約がエラーになることを検証する。
func TestService_Create_UnknownTeacher(t *testing.T) {
	svc := NewService(&mockBookingRepo{}, &mockTeacherRepo{}, nil, nil)

	start := time.Now()
	_, err := svc.Create(context.Background(), student, "missing", start, start.Add(time.Hour))
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeTeacherNotFound {
		t.Fatalf("expected TEACHER_NOT_FOUND error, got %v", err)
	}
}

// TestService_Create_InvalidTimeRange は開始が終了以降の予約がエラーになることを検証する。
func TestService_Create_InvalidTimeRange(t *testing.T) {
	svc := NewService(&mockBookingRepo{}, activeTeacherRepo(), nil, nil)

	start := time.Now()
	_, err := svc.Create(context.Background(), student, "teacher-1", start, start)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
		t.Fatalf("expected VALIDATION_FAILED error, got %v", err)
	}
}

// TestService_SetStatus は管理者による状態編集を検証する。
// 定義済みの状態であれば遷移グラフの制約なく適用される。
func TestService_SetStatus(t *testing.T) {
	stored := &model.Booking{
		ID:       "booking-1",
		Status:   model.BookingStatusCompleted,
		MeetLink: "https://meet.example.com/old",
	}
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			b := *stored
			return &b, nil
		},
	}

	svc := NewService(bookingRepo, &mockTeacherRepo{}, nil, nil)

	// COMPLETEDからPENDINGへの巻き戻しも許容される
	got, err := svc.SetStatus(context.Background(), admin, "booking-1", model.BookingStatusPending, nil)
	if err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if got.Status != model.BookingStatusPending {
		t.Errorf("Status = %q, want PENDING", got.Status)
	}
	// meetLink省略時は既存値を維持
	if got.MeetLink != "https://meet.example.com/old" {
		t.Errorf("MeetLink = %q, want existing link preserved", got.MeetLink)
	}
}

// TestService_SetStatus_UpdatesMeetLink はミーティングリンクの上書きを検証する。
func TestService_SetStatus_UpdatesMeetLink(t *testing.T) {
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: id, Status: model.BookingStatusPending}, nil
		},
	}

	svc := NewService(bookingRepo, &mockTeacherRepo{}, nil, nil)

	link := "https://meet.example.com/new"
	got, err := svc.SetStatus(context.Background(), admin, "booking-1", model.BookingStatusConfirmed, &link)
	if err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if got.MeetLink != link {
		t.Errorf("MeetLink = %q, want %q", got.MeetLink, link)
	}
}

// TestService_SetStatus_InvalidStatus は未定義の状態値が拒否されることを検証する。
func TestService_SetStatus_InvalidStatus(t *testing.T) {
	svc := NewService(&mockBookingRepo{}, &mockTeacherRepo{}, nil, nil)

	_, err := svc.SetStatus(context.Background(), admin, "booking-1", model.BookingStatus("SHIPPED"), nil)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidBookingStatus {
		t.Fatalf("expected INVALID_BOOKING_STATUS error, got %v", err)
	}
}

// TestService_SetStatus_NonAdmin は管理者以外の状態編集が拒否されることを検証する。
func TestService_SetStatus_NonAdmin(t *testing.T) {
	svc := NewService(&mockBookingRepo{}, &mockTeacherRepo{}, nil, nil)

	_, err := svc.SetStatus(context.Background(), student, "booking-1", model.BookingStatusConfirmed, nil)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeForbidden {
		t.Fatalf("expected FORBIDDEN error, got %v", err)
	}
}

// TestService_ListFor は役割ごとに異なる絞り込みで一覧が返ることを検証する。
func TestService_ListFor(t *testing.T) {
	var calledList string
	bookingRepo := &mockBookingRepo{
		listAllFn: func(ctx context.Context) ([]*model.Booking, error) {
			calledList = "all"
			return nil, nil
		},
		listByTeacherIDFn: func(ctx context.Context, teacherID string) ([]*model.Booking, error) {
			calledList = "teacher:" + teacherID
			return nil, nil
		},
		listByStudentIDFn: func(ctx context.Context, studentID string) ([]*model.Booking, error) {
			calledList = "student:" + studentID
			return nil, nil
		},
	}
	teacherRepo := &mockTeacherRepo{
		findByUserIDFn: func(ctx context.Context, userID string) (*model.Teacher, error) {
			return &model.Teacher{ID: "teacher-1", UserID: userID}, nil
		},
	}

	svc := NewService(bookingRepo, teacherRepo, nil, nil)

	tests := []struct {
		name  string
		actor model.Identity
		want  string
	}{
		{name: "管理者は全件", actor: admin, want: "all"},
		{name: "講師は自身の講師予約", actor: model.Identity{UserID: "teacher-user", Role: model.RoleTeacher}, want: "teacher:teacher-1"},
		{name: "受講者は自身の予約", actor: student, want: "student:student-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calledList = ""
			if _, err := svc.ListFor(context.Background(), tt.actor); err != nil {
				t.Fatalf("ListFor returned error: %v", err)
			}
			if calledList != tt.want {
				t.Errorf("called %q, want %q", calledList, tt.want)
			}
		})
	}
}

// TestService_ListFor_TeacherWithoutProfile はプロフィール未作成の講師に
// 空の一覧が返ることを検証する。
func TestService_ListFor_TeacherWithoutProfile(t *testing.T) {
	svc := NewService(&mockBookingRepo{}, &mockTeacherRepo{}, nil, nil)

	got, err := svc.ListFor(context.Background(), model.Identity{UserID: "new-teacher", Role: model.RoleTeacher})
	if err != nil {
		t.Fatalf("ListFor returned error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %d bookings", len(got))
	}
}
