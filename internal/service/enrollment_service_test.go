package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"snaproll/backend/internal/model"
)

func setupTestEnrollmentService() (EnrollmentService, *testMocks) {
	repo, mocks := newMockRepository()

	mocks.users.users["stu-001"] = &model.User{UserID: "stu-001", Name: "小明", Role: model.RoleStudent}
	mocks.sections.sections["sec-001"] = &model.Section{SectionID: "sec-001", TeacherID: "teacher-1", Title: "线性代数"}

	svc := NewEnrollmentService(repo, zap.NewNop())
	return svc, mocks
}

func TestEnrollmentService_Join(t *testing.T) {
	svc, mocks := setupTestEnrollmentService()
	ctx := context.Background()

	if err := svc.Join(ctx, "stu-001", "sec-001"); err != nil {
		t.Fatalf("Join 应成功: %v", err)
	}

	e, err := mocks.enrollments.GetBySectionAndStudent(ctx, "sec-001", "stu-001")
	if err != nil {
		t.Fatalf("选课记录应已写入: %v", err)
	}
	if e.RemovedAt != nil {
		t.Error("新选课记录不应带退课时间")
	}
}

func TestEnrollmentService_Join_AlreadyEnrolled(t *testing.T) {
	svc, _ := setupTestEnrollmentService()
	ctx := context.Background()

	if err := svc.Join(ctx, "stu-001", "sec-001"); err != nil {
		t.Fatalf("Join 应成功: %v", err)
	}
	if err := svc.Join(ctx, "stu-001", "sec-001"); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Errorf("期望 ErrAlreadyEnrolled，实际: %v", err)
	}
}

func TestEnrollmentService_Join_SectionMissing(t *testing.T) {
	svc, _ := setupTestEnrollmentService()

	if err := svc.Join(context.Background(), "stu-001", "sec-none"); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("期望 ErrSectionNotFound，实际: %v", err)
	}
}

func TestEnrollmentService_Leave(t *testing.T) {
	svc, mocks := setupTestEnrollmentService()
	ctx := context.Background()

	if err := svc.Join(ctx, "stu-001", "sec-001"); err != nil {
		t.Fatalf("Join 应成功: %v", err)
	}
	if err := svc.Leave(ctx, "stu-001", "sec-001"); err != nil {
		t.Fatalf("Leave 应成功: %v", err)
	}

	e, _ := mocks.enrollments.GetBySectionAndStudent(ctx, "sec-001", "stu-001")
	if e.RemovedAt == nil {
		t.Fatal("退课应写入 removed_at")
	}
	if EnrolledAsOf(e, time.Now()) {
		t.Error("退课后不应再在窗口内")
	}
}

func TestEnrollmentService_Leave_NotEnrolled(t *testing.T) {
	svc, _ := setupTestEnrollmentService()

	if err := svc.Leave(context.Background(), "stu-001", "sec-001"); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("期望 ErrNotEnrolled，实际: %v", err)
	}
}

func TestEnrollmentService_Rejoin_ReusesRow(t *testing.T) {
	svc, mocks := setupTestEnrollmentService()
	ctx := context.Background()

	if err := svc.Join(ctx, "stu-001", "sec-001"); err != nil {
		t.Fatalf("Join 应成功: %v", err)
	}
	firstID := mocks.enrollments.enrollments[enrollKey("sec-001", "stu-001")].EnrollmentID

	if err := svc.Leave(ctx, "stu-001", "sec-001"); err != nil {
		t.Fatalf("Leave 应成功: %v", err)
	}
	if err := svc.Join(ctx, "stu-001", "sec-001"); err != nil {
		t.Fatalf("重新 Join 应成功: %v", err)
	}

	e, _ := mocks.enrollments.GetBySectionAndStudent(ctx, "sec-001", "stu-001")
	if e.EnrollmentID != firstID {
		t.Error("重新加入应复用原行，不创建新记录")
	}
	if e.RemovedAt != nil {
		t.Error("重新加入应清空 removed_at")
	}
	if len(mocks.enrollments.enrollments) != 1 {
		t.Errorf("同一 (课程班, 学生) 只应有一行，实际 %d", len(mocks.enrollments.enrollments))
	}
}
