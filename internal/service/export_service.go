package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"snaproll/backend/internal/dto"
	"snaproll/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoClassDays  = errors.New("该课程班暂无课程日")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 历史导出为 Excel (.xlsx)：行=学生、列=课程日、单元格=有效状态，
//     数据全部来自状态解析器，与面板读到的完全一致
//   - 课程日历导出为 iCalendar (.ics)，供学生端订阅
//   - 均以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response
type ExportService interface {
	// ExportHistory 导出考勤历史为 Excel
	ExportHistory(ctx context.Context, teacherID, sectionID string) (*bytes.Buffer, string, error)
	// ExportCalendar 导出课程日历为 iCalendar
	ExportCalendar(ctx context.Context, callerID, callerRole, sectionID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo       *repository.Repository
	attendance AttendanceService
	sections   SectionService
	loc        *time.Location
	logger     *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, attendance AttendanceService, sections SectionService, loc *time.Location, logger *zap.Logger) ExportService {
	return &exportService{
		repo:       repo,
		attendance: attendance,
		sections:   sections,
		loc:        loc,
		logger:     logger,
	}
}

// ────────────────────── ExportHistory ──────────────────────

func (s *exportService) ExportHistory(ctx context.Context, teacherID, sectionID string) (*bytes.Buffer, string, error) {
	section, err := ownsSection(ctx, s.repo, teacherID, sectionID)
	if err != nil {
		return nil, "", err
	}

	// limit=0 取全部课程日；单元格全部经过状态解析器
	history, _, err := s.attendance.History(ctx, teacherID, sectionID, 0, 0)
	if err != nil {
		return nil, "", err
	}
	if len(history) == 0 {
		return nil, "", ErrExportNoClassDays
	}

	// History 按日期倒序返回，导出按时间正序呈现
	days := make([]dto.ClassDayHistory, len(history))
	for i := range history {
		days[len(history)-1-i] = history[i]
	}

	// 行索引：学生顺序以首个课程日的单元格顺序为准（即选课顺序）
	type studentRow struct {
		id   string
		name string
	}
	var students []studentRow
	seen := make(map[string]bool)
	for _, day := range days {
		for _, cell := range day.Cells {
			if !seen[cell.StudentID] {
				seen[cell.StudentID] = true
				students = append(students, studentRow{id: cell.StudentID, name: cell.StudentName})
			}
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Attendance"
	f.SetSheetName(f.GetSheetName(0), sheet)

	// 表头：A1=学生，之后每列一个课程日
	if err := f.SetCellValue(sheet, "A1", "Student"); err != nil {
		return nil, "", ErrExportGenerateFail
	}
	for col, day := range days {
		cellName, err := excelize.CoordinatesToCellName(col+2, 1)
		if err != nil {
			return nil, "", ErrExportGenerateFail
		}
		if err := f.SetCellValue(sheet, cellName, day.Date.In(s.loc).Format("2006-01-02")); err != nil {
			return nil, "", ErrExportGenerateFail
		}
	}

	// 单元格索引：class_day_id + student_id → 有效状态
	statusIdx := make(map[string]string)
	for _, day := range days {
		for _, cell := range day.Cells {
			statusIdx[day.ClassDayID+"/"+cell.StudentID] = cell.Status
		}
	}

	for row, student := range students {
		nameCell, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return nil, "", ErrExportGenerateFail
		}
		label := student.name
		if label == "" {
			label = student.id
		}
		if err := f.SetCellValue(sheet, nameCell, label); err != nil {
			return nil, "", ErrExportGenerateFail
		}

		for col, day := range days {
			cellName, err := excelize.CoordinatesToCellName(col+2, row+2)
			if err != nil {
				return nil, "", ErrExportGenerateFail
			}
			if err := f.SetCellValue(sheet, cellName, statusIdx[day.ClassDayID+"/"+student.id]); err != nil {
				return nil, "", ErrExportGenerateFail
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("写出 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance-%s.xlsx", sanitizeFilename(section.Title))
	return buf, filename, nil
}

// ────────────────────── ExportCalendar ──────────────────────

func (s *exportService) ExportCalendar(ctx context.Context, callerID, callerRole, sectionID string) (*bytes.Buffer, string, error) {
	// 成员可见性校验复用课程班读取路径
	section, err := s.sections.GetByID(ctx, callerID, callerRole, sectionID)
	if err != nil {
		return nil, "", err
	}

	days, _, err := s.repo.ClassDay.ListBySection(ctx, sectionID, 0, 0)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrExportNoClassDays
		}
		return nil, "", err
	}
	if len(days) == 0 {
		return nil, "", ErrExportNoClassDays
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//snaproll//attendance//EN")

	for i := range days {
		day := &days[i]
		event := cal.AddEvent(fmt.Sprintf("%s@snaproll", day.ClassDayID))
		event.SetDtStampTime(day.CreatedAt)
		event.SetAllDayStartAt(day.Date.In(s.loc))
		event.SetAllDayEndAt(EndOfDay(day.Date, s.loc))
		event.SetSummary(section.Title)
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("%s.ics", sanitizeFilename(section.Title))
	return buf, filename, nil
}

// sanitizeFilename 文件名兜底：空标题退回固定名，去掉路径分隔符
func sanitizeFilename(title string) string {
	if title == "" {
		return "section"
	}
	out := make([]rune, 0, len(title))
	for _, r := range title {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
