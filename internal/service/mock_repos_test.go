package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"snaproll/backend/internal/model"
	"snaproll/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

// ── Mock SectionRepository ──

type mockSectionRepo struct {
	sections map[string]*model.Section
	seq      int
}

func newMockSectionRepo() *mockSectionRepo {
	return &mockSectionRepo{sections: make(map[string]*model.Section)}
}

func (m *mockSectionRepo) Create(_ context.Context, section *model.Section) error {
	if section.SectionID == "" {
		m.seq++
		section.SectionID = fmt.Sprintf("sec-%03d", m.seq)
	}
	if section.CreatedAt.IsZero() {
		section.CreatedAt = time.Now()
	}
	m.sections[section.SectionID] = section
	return nil
}

func (m *mockSectionRepo) GetByID(_ context.Context, id string) (*model.Section, error) {
	if s, ok := m.sections[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectionRepo) ListByTeacher(_ context.Context, teacherID string) ([]model.Section, error) {
	var result []model.Section
	for _, s := range m.sections {
		if s.TeacherID == teacherID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSectionRepo) ListByIDs(_ context.Context, ids []string) ([]model.Section, error) {
	var result []model.Section
	for _, id := range ids {
		if s, ok := m.sections[id]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	enrollments map[string]*model.Enrollment // key: sectionID/studentID
	users       *mockUserRepo                // Preload("Student") 模拟
	seq         int
}

func newMockEnrollmentRepo(users *mockUserRepo) *mockEnrollmentRepo {
	return &mockEnrollmentRepo{
		enrollments: make(map[string]*model.Enrollment),
		users:       users,
	}
}

func enrollKey(sectionID, studentID string) string { return sectionID + "/" + studentID }

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	if e.EnrollmentID == "" {
		m.seq++
		e.EnrollmentID = fmt.Sprintf("enr-%03d", m.seq)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	m.enrollments[enrollKey(e.SectionID, e.StudentID)] = e
	return nil
}

func (m *mockEnrollmentRepo) GetBySectionAndStudent(_ context.Context, sectionID, studentID string) (*model.Enrollment, error) {
	if e, ok := m.enrollments[enrollKey(sectionID, studentID)]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) ListBySection(_ context.Context, sectionID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.SectionID != sectionID {
			continue
		}
		copied := *e
		if m.users != nil {
			if u, ok := m.users.users[e.StudentID]; ok {
				copied.Student = u
			}
		}
		result = append(result, copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockEnrollmentRepo) Update(_ context.Context, e *model.Enrollment) error {
	m.enrollments[enrollKey(e.SectionID, e.StudentID)] = e
	return nil
}

// ── Mock ClassDayRepository ──

type mockClassDayRepo struct {
	days map[string]*model.ClassDay
	seq  int
}

func newMockClassDayRepo() *mockClassDayRepo {
	return &mockClassDayRepo{days: make(map[string]*model.ClassDay)}
}

func (m *mockClassDayRepo) Create(_ context.Context, day *model.ClassDay) error {
	if day.ClassDayID == "" {
		m.seq++
		day.ClassDayID = fmt.Sprintf("day-%03d", m.seq)
	}
	now := time.Now()
	if day.CreatedAt.IsZero() {
		day.CreatedAt = now
	}
	day.UpdatedAt = now
	m.days[day.ClassDayID] = day
	return nil
}

func (m *mockClassDayRepo) GetByID(_ context.Context, id string) (*model.ClassDay, error) {
	if d, ok := m.days[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassDayRepo) GetBySectionAndDate(_ context.Context, sectionID string, date time.Time) (*model.ClassDay, error) {
	for _, d := range m.days {
		if d.SectionID == sectionID && d.Date.Equal(date) {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassDayRepo) GetByCode(_ context.Context, code string) (*model.ClassDay, error) {
	var best *model.ClassDay
	for _, d := range m.days {
		if d.AttendanceCode != code {
			continue
		}
		if best == nil || d.UpdatedAt.After(best.UpdatedAt) {
			best = d
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (m *mockClassDayRepo) Update(_ context.Context, day *model.ClassDay) error {
	day.UpdatedAt = time.Now()
	m.days[day.ClassDayID] = day
	return nil
}

func (m *mockClassDayRepo) ListBySection(_ context.Context, sectionID string, offset, limit int) ([]model.ClassDay, int64, error) {
	var all []model.ClassDay
	for _, d := range m.days {
		if d.SectionID == sectionID {
			all = append(all, *d)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Date.After(all[j].Date)
	})

	total := int64(len(all))
	if limit > 0 {
		if offset >= len(all) {
			return nil, total, nil
		}
		end := offset + limit
		if end > len(all) {
			end = len(all)
		}
		all = all[offset:end]
	}
	return all, total, nil
}

func (m *mockClassDayRepo) ListBefore(_ context.Context, cutoff time.Time) ([]model.ClassDay, error) {
	var result []model.ClassDay
	for _, d := range m.days {
		if d.Date.Before(cutoff) {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// ── Mock AttendanceRecordRepository ──

type mockAttendanceRecordRepo struct {
	records map[string]*model.AttendanceRecord // key: classDayID/studentID
	seq     int
}

func newMockAttendanceRecordRepo() *mockAttendanceRecordRepo {
	return &mockAttendanceRecordRepo{records: make(map[string]*model.AttendanceRecord)}
}

func recordCell(classDayID, studentID string) string { return classDayID + "/" + studentID }

func (m *mockAttendanceRecordRepo) Create(_ context.Context, r *model.AttendanceRecord) error {
	key := recordCell(r.ClassDayID, r.StudentID)
	if _, exists := m.records[key]; exists {
		return fmt.Errorf("唯一约束冲突: %s", key)
	}
	if r.RecordID == "" {
		m.seq++
		r.RecordID = fmt.Sprintf("rec-%03d", m.seq)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	m.records[key] = r
	return nil
}

func (m *mockAttendanceRecordRepo) GetByClassDayAndStudent(_ context.Context, classDayID, studentID string) (*model.AttendanceRecord, error) {
	if r, ok := m.records[recordCell(classDayID, studentID)]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRecordRepo) ListByClassDay(_ context.Context, classDayID string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.ClassDayID == classDayID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRecordRepo) ListByClassDays(_ context.Context, classDayIDs []string) ([]model.AttendanceRecord, error) {
	wanted := make(map[string]bool, len(classDayIDs))
	for _, id := range classDayIDs {
		wanted[id] = true
	}
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if wanted[r.ClassDayID] {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRecordRepo) Update(_ context.Context, r *model.AttendanceRecord) error {
	r.UpdatedAt = time.Now()
	m.records[recordCell(r.ClassDayID, r.StudentID)] = r
	return nil
}

// ── Mock ManualStatusChangeRepository ──

type mockManualChangeRepo struct {
	changes map[string]*model.ManualStatusChange // key: classDayID/studentID
	users   *mockUserRepo                        // Preload("Teacher") 模拟
	seq     int
}

func newMockManualChangeRepo(users *mockUserRepo) *mockManualChangeRepo {
	return &mockManualChangeRepo{
		changes: make(map[string]*model.ManualStatusChange),
		users:   users,
	}
}

func (m *mockManualChangeRepo) Upsert(_ context.Context, change *model.ManualStatusChange) error {
	key := recordCell(change.ClassDayID, change.StudentID)
	change.CreatedAt = time.Now()
	if existing, ok := m.changes[key]; ok {
		change.ChangeID = existing.ChangeID
	} else {
		m.seq++
		change.ChangeID = fmt.Sprintf("chg-%03d", m.seq)
	}
	m.changes[key] = change
	return nil
}

func (m *mockManualChangeRepo) attach(change *model.ManualStatusChange) model.ManualStatusChange {
	copied := *change
	if m.users != nil {
		if u, ok := m.users.users[change.TeacherID]; ok {
			copied.Teacher = u
		}
	}
	return copied
}

func (m *mockManualChangeRepo) GetByClassDayAndStudent(_ context.Context, classDayID, studentID string) (*model.ManualStatusChange, error) {
	if c, ok := m.changes[recordCell(classDayID, studentID)]; ok {
		copied := m.attach(c)
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockManualChangeRepo) ListByClassDay(_ context.Context, classDayID string) ([]model.ManualStatusChange, error) {
	var result []model.ManualStatusChange
	for _, c := range m.changes {
		if c.ClassDayID == classDayID {
			result = append(result, m.attach(c))
		}
	}
	return result, nil
}

func (m *mockManualChangeRepo) ListByClassDays(_ context.Context, classDayIDs []string) ([]model.ManualStatusChange, error) {
	wanted := make(map[string]bool, len(classDayIDs))
	for _, id := range classDayIDs {
		wanted[id] = true
	}
	var result []model.ManualStatusChange
	for _, c := range m.changes {
		if wanted[c.ClassDayID] {
			result = append(result, m.attach(c))
		}
	}
	return result, nil
}

func (m *mockManualChangeRepo) Delete(_ context.Context, classDayID, studentID string) error {
	delete(m.changes, recordCell(classDayID, studentID))
	return nil
}

// ── Mock RateLimitBucketRepository ──

type mockRateLimitRepo struct {
	buckets []*model.RateLimitBucket
	seq     int
}

func newMockRateLimitRepo() *mockRateLimitRepo {
	return &mockRateLimitRepo{}
}

func (m *mockRateLimitRepo) Create(_ context.Context, b *model.RateLimitBucket) error {
	if b.BucketID == "" {
		m.seq++
		b.BucketID = fmt.Sprintf("bkt-%03d", m.seq)
	}
	m.buckets = append(m.buckets, b)
	return nil
}

func (m *mockRateLimitRepo) GetFreshest(_ context.Context, actorID, key string) (*model.RateLimitBucket, error) {
	var best *model.RateLimitBucket
	for _, b := range m.buckets {
		if b.ActorID != actorID || b.BucketKey != key {
			continue
		}
		if best == nil || b.WindowStart.After(best.WindowStart) {
			best = b
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (m *mockRateLimitRepo) GetBlocked(_ context.Context, actorID, key string, now time.Time) (*model.RateLimitBucket, error) {
	var best *model.RateLimitBucket
	for _, b := range m.buckets {
		if b.ActorID != actorID || b.BucketKey != key {
			continue
		}
		if b.BlockedUntil == nil || !b.BlockedUntil.After(now) {
			continue
		}
		if best == nil || b.BlockedUntil.After(*best.BlockedUntil) {
			best = b
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (m *mockRateLimitRepo) Update(_ context.Context, b *model.RateLimitBucket) error {
	for i, existing := range m.buckets {
		if existing.BucketID == b.BucketID {
			m.buckets[i] = b
			return nil
		}
	}
	m.buckets = append(m.buckets, b)
	return nil
}

// ── 聚合装配 ──

type testMocks struct {
	users       *mockUserRepo
	sections    *mockSectionRepo
	enrollments *mockEnrollmentRepo
	classDays   *mockClassDayRepo
	records     *mockAttendanceRecordRepo
	changes     *mockManualChangeRepo
	buckets     *mockRateLimitRepo
}

// newMockRepository 组装全量 mock 仓储
// db 为 nil，Transaction 直接执行回调，无事务语义
func newMockRepository() (*repository.Repository, *testMocks) {
	m := &testMocks{
		users:   newMockUserRepo(),
		buckets: newMockRateLimitRepo(),
	}
	m.sections = newMockSectionRepo()
	m.enrollments = newMockEnrollmentRepo(m.users)
	m.classDays = newMockClassDayRepo()
	m.records = newMockAttendanceRecordRepo()
	m.changes = newMockManualChangeRepo(m.users)

	repo := &repository.Repository{
		User:             m.users,
		Section:          m.sections,
		Enrollment:       m.enrollments,
		ClassDay:         m.classDays,
		AttendanceRecord: m.records,
		ManualChange:     m.changes,
		RateLimitBucket:  m.buckets,
	}
	return repo, m
}
