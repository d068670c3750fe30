package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"snaproll/backend/internal/model"
)

func setupTestClassDayService(t *testing.T) (ClassDayService, *testMocks) {
	t.Helper()
	repo, mocks := newMockRepository()

	mocks.users.users["teacher-1"] = &model.User{UserID: "teacher-1", Name: "王老师", Role: model.RoleTeacher}
	mocks.sections.sections["sec-001"] = &model.Section{SectionID: "sec-001", TeacherID: "teacher-1", Title: "线性代数"}

	svc := NewClassDayService(repo, testAttendanceConfig(), testLocation(t), zap.NewNop())
	return svc, mocks
}

func TestClassDayService_StartAttendance_CreatesDay(t *testing.T) {
	svc, mocks := setupTestClassDayService(t)
	loc := testLocation(t)

	result, err := svc.StartAttendance(context.Background(), "teacher-1", "sec-001")
	if err != nil {
		t.Fatalf("StartAttendance 应成功: %v", err)
	}

	if len(result.AttendanceCode) != 4 {
		t.Errorf("期望 4 位签到码，实际 %q", result.AttendanceCode)
	}
	for _, r := range result.AttendanceCode {
		if r < '0' || r > '9' {
			t.Errorf("签到码应为纯数字，实际 %q", result.AttendanceCode)
		}
	}
	if result.ExpiresAt == nil {
		t.Fatal("应设置签到码过期时间")
	}
	ttl := time.Until(*result.ExpiresAt)
	if ttl < 23*time.Hour || ttl > 25*time.Hour {
		t.Errorf("过期时间应约为 24 小时后，实际 %v", ttl)
	}
	if !result.Date.Equal(StartOfDay(time.Now(), loc)) {
		t.Errorf("课程日应为民用日零点，实际 %v", result.Date)
	}

	day := mocks.classDays.days[result.ClassDayID]
	if day == nil {
		t.Fatal("课程日应已落库")
	}
	if !day.Held {
		t.Error("开启签到应标记 Held")
	}
}

func TestClassDayService_StartAttendance_SameDayRotates(t *testing.T) {
	svc, mocks := setupTestClassDayService(t)
	ctx := context.Background()

	first, err := svc.StartAttendance(ctx, "teacher-1", "sec-001")
	if err != nil {
		t.Fatalf("首次 StartAttendance 应成功: %v", err)
	}

	second, err := svc.StartAttendance(ctx, "teacher-1", "sec-001")
	if err != nil {
		t.Fatalf("二次 StartAttendance 应成功: %v", err)
	}

	if first.ClassDayID != second.ClassDayID {
		t.Error("同日重复开启应复用同一课程日")
	}
	if len(mocks.classDays.days) != 1 {
		t.Errorf("同日不应产生重复课程日，实际 %d 条", len(mocks.classDays.days))
	}

	// 注意：4 位码有万分之一概率碰撞，这里只断言轮换写回生效
	day := mocks.classDays.days[second.ClassDayID]
	if day.AttendanceCode != second.AttendanceCode {
		t.Error("轮换后的签到码应已写回")
	}
}

func TestClassDayService_StartAttendance_NotOwner(t *testing.T) {
	svc, mocks := setupTestClassDayService(t)
	mocks.users.users["teacher-2"] = &model.User{UserID: "teacher-2", Name: "李老师", Role: model.RoleTeacher}

	_, err := svc.StartAttendance(context.Background(), "teacher-2", "sec-001")
	if !errors.Is(err, ErrNotSectionOwner) {
		t.Errorf("期望 ErrNotSectionOwner，实际: %v", err)
	}
}

func TestClassDayService_StartAttendance_SectionMissing(t *testing.T) {
	svc, _ := setupTestClassDayService(t)

	_, err := svc.StartAttendance(context.Background(), "teacher-1", "sec-none")
	if !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("期望 ErrSectionNotFound，实际: %v", err)
	}
}

func TestGenerateAttendanceCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateAttendanceCode(4)
		if err != nil {
			t.Fatalf("生成签到码失败: %v", err)
		}
		if len(code) != 4 {
			t.Fatalf("期望长度 4，实际 %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("签到码应为纯数字，实际 %q", code)
			}
		}
	}

	// 左侧补零：长码位数固定
	code, err := generateAttendanceCode(8)
	if err != nil {
		t.Fatalf("生成签到码失败: %v", err)
	}
	if len(code) != 8 {
		t.Errorf("期望长度 8，实际 %q", code)
	}
}
