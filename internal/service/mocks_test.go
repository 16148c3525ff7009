package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/dms-admin-api/internal/models"
	"github.com/noah-isme/dms-admin-api/pkg/sheets"
)

type mockTeacherRepo struct {
	items     map[string]*models.Teacher
	order     []string
	seq       int
	createErr error
	updateErr error
}

func newMockTeacherRepo(teachers ...models.Teacher) *mockTeacherRepo {
	m := &mockTeacherRepo{items: make(map[string]*models.Teacher)}
	for i := range teachers {
		t := teachers[i]
		_ = m.Create(context.Background(), &t)
	}
	return m
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	all, _ := m.ListAll(ctx)
	return all, len(all), nil
}

func (m *mockTeacherRepo) ListAll(ctx context.Context) ([]models.Teacher, error) {
	out := make([]models.Teacher, 0, len(m.order))
	for _, id := range m.order {
		if t, ok := m.items[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.items[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for id, t := range m.items {
		if strings.EqualFold(t.Email, email) && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if m.createErr != nil {
		return m.createErr
	}
	if teacher.ID == "" {
		m.seq++
		teacher.ID = fmt.Sprintf("teacher-%d", m.seq)
	}
	now := time.Now()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now
	cp := *teacher
	m.items[teacher.ID] = &cp
	m.order = append(m.order, teacher.ID)
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.items[teacher.ID]; !ok {
		return sql.ErrNoRows
	}
	teacher.UpdatedAt = time.Now()
	cp := *teacher
	m.items[teacher.ID] = &cp
	return nil
}

func (m *mockTeacherRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type mockStudentRepo struct {
	items        map[string]*models.Student
	order        []string
	seq          int
	updates      int
	createdCodes []string
	updateErr    func(*models.Student) error
}

func newMockStudentRepo(students ...models.Student) *mockStudentRepo {
	m := &mockStudentRepo{items: make(map[string]*models.Student)}
	for i := range students {
		s := students[i]
		_ = m.Create(context.Background(), &s)
	}
	return m
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	all, _ := m.ListAll(ctx)
	return all, len(all), nil
}

func (m *mockStudentRepo) ListAll(ctx context.Context) ([]models.Student, error) {
	out := make([]models.Student, 0, len(m.order))
	for _, id := range m.order {
		if s, ok := m.items[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockStudentRepo) ListStudentCodes(ctx context.Context) ([]string, error) {
	var codes []string
	for _, id := range m.order {
		if s, ok := m.items[id]; ok && s.StudentCode != "" {
			codes = append(codes, s.StudentCode)
		}
	}
	return codes, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for id, s := range m.items {
		if strings.EqualFold(s.Email, email) && s.Status == models.StudentStatusActive && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		m.seq++
		student.ID = fmt.Sprintf("student-%d", m.seq)
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	m.createdCodes = append(m.createdCodes, student.StudentCode)
	cp := *student
	m.items[student.ID] = &cp
	m.order = append(m.order, student.ID)
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if m.updateErr != nil {
		if err := m.updateErr(student); err != nil {
			return err
		}
	}
	if _, ok := m.items[student.ID]; !ok {
		return sql.ErrNoRows
	}
	m.updates++
	cp := *student
	m.items[student.ID] = &cp
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type fakeSheet struct {
	rows     map[string][]sheets.Row
	readErr  error
	pushErr  error
	pushed   []sheets.Request
	canPush  bool
	rowCount int
}

func newFakeSheet() *fakeSheet {
	return &fakeSheet{rows: make(map[string][]sheets.Row), canPush: true}
}

func (f *fakeSheet) ReadTab(ctx context.Context, sheetID, tab string) ([]sheets.Row, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.rows[tab], nil
}

func (f *fakeSheet) CanPush() bool { return f.canPush }

func (f *fakeSheet) Push(ctx context.Context, sheetID string, req sheets.Request) (sheets.Ack, error) {
	f.pushed = append(f.pushed, req)
	if f.pushErr != nil {
		return sheets.Ack{}, f.pushErr
	}
	f.rowCount++
	return sheets.Ack{RowNumber: f.rowCount + 1}, nil
}

func enrollmentRow(number int, cells ...string) sheets.Row {
	return sheets.Row{Number: number, Cells: cells}
}
