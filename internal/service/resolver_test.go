package service

import (
	"testing"
	"time"

	"snaproll/backend/internal/model"
)

// 解析器是考勤核心的唯一真相，这里覆盖优先级与日界的全部分支

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("加载时区失败: %v", err)
	}
	return loc
}

// ── 日界计算 ──

func TestStartOfDay(t *testing.T) {
	loc := testLocation(t)

	// UTC 2026-06-15 03:00 = 纽约 2026-06-14 23:00，民用日应为 6 月 14 日
	instant := time.Date(2026, 6, 15, 3, 0, 0, 0, time.UTC)
	start := StartOfDay(instant, loc)

	want := time.Date(2026, 6, 14, 0, 0, 0, 0, loc)
	if !start.Equal(want) {
		t.Errorf("期望 %v，实际 %v", want, start)
	}
}

func TestEndOfDay_Normal(t *testing.T) {
	loc := testLocation(t)

	start := time.Date(2026, 6, 14, 0, 0, 0, 0, loc)
	end := EndOfDay(start, loc)

	if got := end.Sub(start); got != 24*time.Hour {
		t.Errorf("普通日期望 24h，实际 %v", got)
	}
}

func TestEndOfDay_DSTSpringForward(t *testing.T) {
	loc := testLocation(t)

	// 2026-03-08 纽约进入夏令时，当天只有 23 小时
	start := time.Date(2026, 3, 8, 0, 0, 0, 0, loc)
	end := EndOfDay(start, loc)

	if got := end.Sub(start); got != 23*time.Hour {
		t.Errorf("夏令时切换日期望 23h，实际 %v", got)
	}
}

func TestEndOfDay_DSTFallBack(t *testing.T) {
	loc := testLocation(t)

	// 2026-11-01 纽约退出夏令时，当天有 25 小时
	start := time.Date(2026, 11, 1, 0, 0, 0, 0, loc)
	end := EndOfDay(start, loc)

	if got := end.Sub(start); got != 25*time.Hour {
		t.Errorf("冬令时切换日期望 25h，实际 %v", got)
	}
}

// ── 选课窗口 ──

func TestEnrolledAsOf(t *testing.T) {
	base := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	removed := base.Add(48 * time.Hour)

	tests := []struct {
		name string
		e    *model.Enrollment
		at   time.Time
		want bool
	}{
		{"nil 记录", nil, base, false},
		{"窗口内", &model.Enrollment{CreatedAt: base}, base.Add(time.Hour), true},
		{"加入时刻本身算在册", &model.Enrollment{CreatedAt: base}, base, true},
		{"加入之前", &model.Enrollment{CreatedAt: base}, base.Add(-time.Second), false},
		{"退课之前", &model.Enrollment{CreatedAt: base, RemovedAt: &removed}, removed.Add(-time.Second), true},
		{"退课时刻不再在册", &model.Enrollment{CreatedAt: base, RemovedAt: &removed}, removed, false},
		{"退课之后", &model.Enrollment{CreatedAt: base, RemovedAt: &removed}, removed.Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EnrolledAsOf(tt.e, tt.at); got != tt.want {
				t.Errorf("期望 %v，实际 %v", tt.want, got)
			}
		})
	}
}

// ── Resolve ──

func resolverDay(loc *time.Location, y int, m time.Month, d int) *model.ClassDay {
	return &model.ClassDay{
		ClassDayID: "day-x",
		SectionID:  "sec-x",
		Date:       time.Date(y, m, d, 0, 0, 0, 0, loc),
	}
}

func TestResolve_OverrideWins(t *testing.T) {
	loc := testLocation(t)
	day := resolverDay(loc, 2026, 6, 14)

	res := Resolve(ResolveInput{
		ClassDay: day,
		Record:   &model.AttendanceRecord{Status: model.StatusPresent},
		Override: &model.ManualStatusChange{Status: model.StatusExcused, TeacherID: "t-1"},
		Now:      day.Date.Add(2 * time.Hour),
		Location: loc,
	})

	if res.Status != model.StatusExcused {
		t.Errorf("改判应覆盖记录，期望 EXCUSED，实际 %s", res.Status)
	}
	if res.OriginalStatus != model.StatusPresent {
		t.Errorf("原始状态应保留 PRESENT，实际 %s", res.OriginalStatus)
	}
	if !res.IsManual || res.ManualChange == nil {
		t.Error("改判生效时应携带溯源信息")
	}
}

func TestResolve_OpenDayNoRecord(t *testing.T) {
	loc := testLocation(t)
	day := resolverDay(loc, 2026, 6, 14)

	res := Resolve(ResolveInput{
		ClassDay:   day,
		Enrollment: &model.Enrollment{CreatedAt: day.Date.Add(-time.Hour)},
		Now:        day.Date.Add(10 * time.Hour), // 日界未关闭
		Location:   loc,
	})

	if res.Status != model.StatusBlank {
		t.Errorf("日界未关闭的空单元格应为 BLANK，实际 %s", res.Status)
	}
	if res.IsManual {
		t.Error("无改判时 IsManual 应为 false")
	}
}

func TestResolve_ClosedDayFallbackAbsent(t *testing.T) {
	loc := testLocation(t)
	day := resolverDay(loc, 2026, 6, 14)

	res := Resolve(ResolveInput{
		ClassDay:   day,
		Enrollment: &model.Enrollment{CreatedAt: day.Date.Add(-time.Hour)},
		Now:        day.Date.Add(30 * time.Hour), // 日界已过
		Location:   loc,
	})

	if res.Status != model.StatusAbsent {
		t.Errorf("日界关闭后在册空单元格应为 ABSENT，实际 %s", res.Status)
	}
	if res.OriginalStatus != model.StatusBlank {
		t.Errorf("兜底不改变原始状态，期望 BLANK，实际 %s", res.OriginalStatus)
	}
}

func TestResolve_ClosedDayFallbackNotJoined(t *testing.T) {
	loc := testLocation(t)
	day := resolverDay(loc, 2026, 6, 14)
	end := EndOfDay(day.Date, loc)

	// 日界关闭之后才加入的学生
	res := Resolve(ResolveInput{
		ClassDay:   day,
		Enrollment: &model.Enrollment{CreatedAt: end.Add(time.Hour)},
		Now:        end.Add(48 * time.Hour),
		Location:   loc,
	})

	if res.Status != model.StatusNotJoined {
		t.Errorf("日界关闭时不在窗口内应为 NOT_JOINED，实际 %s", res.Status)
	}
}

func TestResolve_ClosedDayRemovedBeforeEnd(t *testing.T) {
	loc := testLocation(t)
	day := resolverDay(loc, 2026, 6, 14)
	removed := day.Date.Add(6 * time.Hour) // 当天中途退课

	res := Resolve(ResolveInput{
		ClassDay:   day,
		Enrollment: &model.Enrollment{CreatedAt: day.Date.Add(-240 * time.Hour), RemovedAt: &removed},
		Now:        day.Date.Add(30 * time.Hour),
		Location:   loc,
	})

	if res.Status != model.StatusNotJoined {
		t.Errorf("日界关闭前已退课应为 NOT_JOINED，实际 %s", res.Status)
	}
}

func TestResolve_BlankRecordTreatedAsNoRecord(t *testing.T) {
	loc := testLocation(t)
	day := resolverDay(loc, 2026, 6, 14)

	// 导入路径可能留下 BLANK 记录行，兜底逻辑应视同没有记录
	res := Resolve(ResolveInput{
		ClassDay:   day,
		Enrollment: &model.Enrollment{CreatedAt: day.Date.Add(-time.Hour)},
		Record:     &model.AttendanceRecord{Status: model.StatusBlank},
		Now:        day.Date.Add(30 * time.Hour),
		Location:   loc,
	})

	if res.Status != model.StatusAbsent {
		t.Errorf("BLANK 记录在日界关闭后应走兜底 ABSENT，实际 %s", res.Status)
	}
}

func TestResolve_PresentRecordSurvivesClose(t *testing.T) {
	loc := testLocation(t)
	day := resolverDay(loc, 2026, 6, 14)

	res := Resolve(ResolveInput{
		ClassDay:   day,
		Enrollment: &model.Enrollment{CreatedAt: day.Date.Add(-time.Hour)},
		Record:     &model.AttendanceRecord{Status: model.StatusPresent},
		Now:        day.Date.Add(30 * time.Hour),
		Location:   loc,
	})

	if res.Status != model.StatusPresent {
		t.Errorf("有效记录不受日界关闭影响，实际 %s", res.Status)
	}
}

func TestFallbackStatus_SharedPredicate(t *testing.T) {
	loc := testLocation(t)
	day := resolverDay(loc, 2026, 6, 14)
	end := EndOfDay(day.Date, loc)

	enrolled := &model.Enrollment{CreatedAt: day.Date.Add(-time.Hour)}
	if got := FallbackStatus(enrolled, end); got != model.StatusAbsent {
		t.Errorf("在册学生兜底应为 ABSENT，实际 %s", got)
	}

	late := &model.Enrollment{CreatedAt: end.Add(time.Minute)}
	if got := FallbackStatus(late, end); got != model.StatusNotJoined {
		t.Errorf("迟加入学生兜底应为 NOT_JOINED，实际 %s", got)
	}

	if got := FallbackStatus(nil, end); got != model.StatusNotJoined {
		t.Errorf("无选课记录兜底应为 NOT_JOINED，实际 %s", got)
	}
}
