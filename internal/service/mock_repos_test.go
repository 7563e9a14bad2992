package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"shift-kanri/internal/model"
	"shift-kanri/internal/repository"
)

// ── Mock GroupRepository ──

type mockGroupRepo struct {
	groups    map[uint]*model.Group
	nextID    uint
	employees *mockEmployeeRepo
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{groups: make(map[uint]*model.Group), nextID: 1}
}

func (m *mockGroupRepo) Create(_ context.Context, group *model.Group) error {
	group.ID = m.nextID
	m.nextID++
	m.groups[group.ID] = group
	return nil
}

func (m *mockGroupRepo) GetByID(_ context.Context, id uint) (*model.Group, error) {
	if g, ok := m.groups[id]; ok {
		copied := *g
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) GetByName(_ context.Context, name string) (*model.Group, error) {
	for _, g := range m.groups {
		if g.Name == name {
			copied := *g
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) List(_ context.Context) ([]model.Group, error) {
	ids := make([]uint, 0, len(m.groups))
	for id := range m.groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := make([]model.Group, 0, len(ids))
	for _, id := range ids {
		result = append(result, *m.groups[id])
	}
	return result, nil
}

func (m *mockGroupRepo) Update(_ context.Context, group *model.Group) error {
	if _, ok := m.groups[group.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.groups[group.ID] = group
	return nil
}

func (m *mockGroupRepo) Delete(_ context.Context, id uint) error {
	delete(m.groups, id)
	return nil
}

func (m *mockGroupRepo) CountActiveEmployees(_ context.Context, groupID uint) (int64, error) {
	if m.employees == nil {
		return 0, nil
	}
	var count int64
	for _, e := range m.employees.employees {
		if e.GroupID == groupID && e.TerminationDate == nil {
			count++
		}
	}
	return count, nil
}

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[uint]*model.Employee
	nextID    uint
	groups    *mockGroupRepo
	histories *mockNameHistoryRepo
	roles     *mockRoleAssignmentRepo
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[uint]*model.Employee), nextID: 1}
}

func (m *mockEmployeeRepo) Create(_ context.Context, employee *model.Employee, initial *model.EmployeeNameHistory) error {
	employee.ID = m.nextID
	m.nextID++
	m.employees[employee.ID] = employee
	if m.histories != nil {
		initial.EmployeeID = employee.ID
		initial.ID = m.histories.nextID
		m.histories.nextID++
		m.histories.entries[initial.ID] = initial
	}
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id uint) (*model.Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *e
	if m.groups != nil {
		if g, ok := m.groups.groups[e.GroupID]; ok {
			groupCopy := *g
			copied.Group = &groupCopy
		}
	}
	return &copied, nil
}

func (m *mockEmployeeRepo) GetDetail(ctx context.Context, id uint) (*model.Employee, error) {
	e, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.histories != nil {
		entries, _ := m.histories.ListByEmployee(ctx, id)
		e.NameHistory = entries
	}
	if m.roles != nil {
		assignments, _ := m.roles.ListByEmployee(ctx, id)
		e.FunctionRoles = assignments
	}
	return e, nil
}

func (m *mockEmployeeRepo) ListWithFilters(_ context.Context, f *repository.EmployeeListFilters, offset, limit int) ([]model.Employee, int64, error) {
	var matched []model.Employee
	for _, e := range m.employees {
		if f.Q != "" && !strings.Contains(e.Name, f.Q) {
			continue
		}
		if f.Group != nil && e.GroupID != *f.Group {
			continue
		}
		switch f.Status {
		case "inactive":
			if e.TerminationDate == nil {
				continue
			}
		case "all":
		default:
			if e.TerminationDate != nil {
				continue
			}
		}
		matched = append(matched, *e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockEmployeeRepo) ListActiveByGroup(_ context.Context, groupID uint) ([]model.Employee, error) {
	var result []model.Employee
	for _, e := range m.employees {
		if e.GroupID == groupID && e.TerminationDate == nil {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockEmployeeRepo) ListByIDs(_ context.Context, ids []uint) ([]model.Employee, error) {
	var result []model.Employee
	for _, id := range ids {
		if e, ok := m.employees[id]; ok {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEmployeeRepo) SearchIDsByName(_ context.Context, q string) ([]uint, error) {
	var ids []uint
	for _, e := range m.employees {
		if strings.Contains(e.Name, q) {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

func (m *mockEmployeeRepo) Update(_ context.Context, employee *model.Employee) error {
	e, ok := m.employees[employee.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.GroupID = employee.GroupID
	e.AssignmentDate = employee.AssignmentDate
	e.TerminationDate = employee.TerminationDate
	return nil
}

// ── Mock FunctionRoleRepository ──

type mockFunctionRoleRepo struct {
	roles map[uint]*model.FunctionRole
}

// newMockFunctionRoleRepo マイグレーションの初期データ相当で初期化する
func newMockFunctionRoleRepo() *mockFunctionRoleRepo {
	return &mockFunctionRoleRepo{roles: map[uint]*model.FunctionRole{
		1: {ID: 1, RoleCode: "SUPPORT", RoleName: "サポート", RoleType: "FUNCTION", IsActive: true},
		2: {ID: 2, RoleCode: "DEV", RoleName: "開発", RoleType: "FUNCTION", IsActive: true},
		3: {ID: 3, RoleCode: "LEADER", RoleName: "リーダー", RoleType: "DUTY", IsActive: true},
	}}
}

func (m *mockFunctionRoleRepo) GetByID(_ context.Context, id uint) (*model.FunctionRole, error) {
	if r, ok := m.roles[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFunctionRoleRepo) ListActive(_ context.Context) ([]model.FunctionRole, error) {
	ids := make([]uint, 0, len(m.roles))
	for id := range m.roles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var result []model.FunctionRole
	for _, id := range ids {
		if m.roles[id].IsActive {
			result = append(result, *m.roles[id])
		}
	}
	return result, nil
}

// ── Mock NameHistoryRepository ──

type mockNameHistoryRepo struct {
	entries   map[uint]*model.EmployeeNameHistory
	nextID    uint
	employees *mockEmployeeRepo
}

func newMockNameHistoryRepo() *mockNameHistoryRepo {
	return &mockNameHistoryRepo{entries: make(map[uint]*model.EmployeeNameHistory), nextID: 1}
}

func (m *mockNameHistoryRepo) ListByEmployee(_ context.Context, employeeID uint) ([]model.EmployeeNameHistory, error) {
	var result []model.EmployeeNameHistory
	for _, e := range m.entries {
		if e.EmployeeID == employeeID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ValidFrom.After(result[j].ValidFrom) })
	return result, nil
}

func (m *mockNameHistoryRepo) GetByID(_ context.Context, id uint) (*model.EmployeeNameHistory, error) {
	if e, ok := m.entries[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNameHistoryRepo) GetCurrent(_ context.Context, employeeID uint) (*model.EmployeeNameHistory, error) {
	for _, e := range m.entries {
		if e.EmployeeID == employeeID && e.IsCurrent {
			copied := *e
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNameHistoryRepo) FindPrevious(_ context.Context, employeeID uint, before time.Time, exceptID uint) (*model.EmployeeNameHistory, error) {
	var found *model.EmployeeNameHistory
	for _, e := range m.entries {
		if e.EmployeeID != employeeID || e.ID == exceptID || e.IsCurrent || !e.ValidFrom.Before(before) {
			continue
		}
		if found == nil || e.ValidFrom.After(found.ValidFrom) {
			found = e
		}
	}
	if found == nil {
		return nil, nil
	}
	copied := *found
	return &copied, nil
}

func (m *mockNameHistoryRepo) FindNext(_ context.Context, employeeID uint, after time.Time, exceptID uint) (*model.EmployeeNameHistory, error) {
	var found *model.EmployeeNameHistory
	for _, e := range m.entries {
		if e.EmployeeID != employeeID || e.ID == exceptID || !e.ValidFrom.After(after) {
			continue
		}
		if found == nil || e.ValidFrom.Before(found.ValidFrom) {
			found = e
		}
	}
	if found == nil {
		return nil, nil
	}
	copied := *found
	return &copied, nil
}

func (m *mockNameHistoryRepo) FindLatestExcept(_ context.Context, employeeID uint, exceptID uint) (*model.EmployeeNameHistory, error) {
	var found *model.EmployeeNameHistory
	for _, e := range m.entries {
		if e.EmployeeID != employeeID || e.ID == exceptID {
			continue
		}
		if found == nil || e.ValidFrom.After(found.ValidFrom) {
			found = e
		}
	}
	if found == nil {
		return nil, nil
	}
	copied := *found
	return &copied, nil
}

func (m *mockNameHistoryRepo) Append(_ context.Context, entry *model.EmployeeNameHistory) error {
	closedTo := entry.ValidFrom.AddDate(0, 0, -1)
	for _, e := range m.entries {
		if e.EmployeeID == entry.EmployeeID && e.IsCurrent {
			e.IsCurrent = false
			to := closedTo
			e.ValidTo = &to
		}
	}
	entry.ID = m.nextID
	m.nextID++
	m.entries[entry.ID] = entry
	m.mirror(entry.EmployeeID, entry.Name, entry.NameKana)
	return nil
}

func (m *mockNameHistoryRepo) Apply(_ context.Context, mu *repository.NameHistoryMutation) error {
	if mu.Update != nil {
		e, ok := m.entries[mu.Update.ID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		e.Name = mu.Update.Name
		e.NameKana = mu.Update.NameKana
		e.ValidFrom = mu.Update.ValidFrom
		e.ValidTo = mu.Update.ValidTo
		e.Note = mu.Update.Note
	}
	if mu.DeleteID != nil {
		delete(m.entries, *mu.DeleteID)
	}
	for _, p := range mu.Neighbors {
		e, ok := m.entries[p.ID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		if p.SetValidTo {
			e.ValidTo = p.ValidTo
		}
		if p.MakeCurrent {
			e.IsCurrent = true
			e.ValidTo = nil
		}
	}
	if mu.Mirror != nil {
		m.mirror(mu.Mirror.EmployeeID, mu.Mirror.Name, mu.Mirror.NameKana)
	}
	return nil
}

func (m *mockNameHistoryRepo) mirror(employeeID uint, name string, nameKana *string) {
	if m.employees == nil {
		return
	}
	if e, ok := m.employees.employees[employeeID]; ok {
		e.Name = name
		e.NameKana = nameKana
	}
}

// ── Mock RoleAssignmentRepository ──

type mockRoleAssignmentRepo struct {
	assignments map[uint]*model.EmployeeFunctionRole
	nextID      uint
	roles       *mockFunctionRoleRepo
	// forceDuplicate 挿入時に一意制約違反を模擬する
	forceDuplicate bool
}

func newMockRoleAssignmentRepo() *mockRoleAssignmentRepo {
	return &mockRoleAssignmentRepo{assignments: make(map[uint]*model.EmployeeFunctionRole), nextID: 1}
}

func (m *mockRoleAssignmentRepo) ListByEmployee(_ context.Context, employeeID uint) ([]model.EmployeeFunctionRole, error) {
	var result []model.EmployeeFunctionRole
	for _, a := range m.assignments {
		if a.EmployeeID == employeeID {
			copied := *a
			m.attachRole(&copied)
			result = append(result, copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })
	return result, nil
}

func (m *mockRoleAssignmentRepo) GetByID(_ context.Context, id uint) (*model.EmployeeFunctionRole, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *a
	m.attachRole(&copied)
	return &copied, nil
}

func (m *mockRoleAssignmentRepo) AssignWithClose(_ context.Context, a *model.EmployeeFunctionRole) error {
	if m.forceDuplicate {
		return gorm.ErrDuplicatedKey
	}
	closedTo := a.StartDate.AddDate(0, 0, -1)
	for _, existing := range m.assignments {
		if existing.EmployeeID == a.EmployeeID && existing.RoleType == a.RoleType && existing.EndDate == nil {
			to := closedTo
			existing.EndDate = &to
		}
	}
	a.ID = m.nextID
	m.nextID++
	stored := *a
	m.assignments[a.ID] = &stored
	return nil
}

func (m *mockRoleAssignmentRepo) UpdateFields(_ context.Context, id uint, fields map[string]interface{}) error {
	a, ok := m.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "is_primary":
			a.IsPrimary = v.(bool)
		case "start_date":
			a.StartDate = v.(time.Time)
		case "end_date":
			if v == nil {
				a.EndDate = nil
			} else {
				d := v.(time.Time)
				a.EndDate = &d
			}
		}
	}
	return nil
}

func (m *mockRoleAssignmentRepo) Delete(_ context.Context, id uint) error {
	delete(m.assignments, id)
	return nil
}

func (m *mockRoleAssignmentRepo) attachRole(a *model.EmployeeFunctionRole) {
	if m.roles == nil {
		return
	}
	if r, ok := m.roles.roles[a.FunctionRoleID]; ok {
		copied := *r
		a.FunctionRole = &copied
	}
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts        map[uint]*model.Shift
	histories     map[uint]*model.ShiftChangeHistory
	nextShiftID   uint
	nextHistoryID uint
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{
		shifts:        make(map[uint]*model.Shift),
		histories:     make(map[uint]*model.ShiftChangeHistory),
		nextShiftID:   1,
		nextHistoryID: 1,
	}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	for _, s := range m.shifts {
		if s.EmployeeID == shift.EmployeeID && s.ShiftDate.Equal(shift.ShiftDate) {
			return gorm.ErrDuplicatedKey
		}
	}
	shift.ID = m.nextShiftID
	m.nextShiftID++
	stored := *shift
	m.shifts[shift.ID] = &stored
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id uint) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) ListByEmployeeIDs(_ context.Context, employeeIDs []uint, from, to time.Time) ([]model.Shift, error) {
	idSet := make(map[uint]struct{}, len(employeeIDs))
	for _, id := range employeeIDs {
		idSet[id] = struct{}{}
	}
	var result []model.Shift
	for _, s := range m.shifts {
		if _, ok := idSet[s.EmployeeID]; !ok {
			continue
		}
		if s.ShiftDate.Before(from) || s.ShiftDate.After(to) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ShiftDate.Before(result[j].ShiftDate) })
	return result, nil
}

func (m *mockShiftRepo) ListByIDs(_ context.Context, ids []uint) ([]model.Shift, error) {
	var result []model.Shift
	for _, id := range ids {
		if s, ok := m.shifts[id]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockShiftRepo) UpdateWithHistory(_ context.Context, shiftID uint, fields map[string]interface{}, note *string) (*model.Shift, int, error) {
	s, ok := m.shifts[shiftID]
	if !ok {
		return nil, 0, gorm.ErrRecordNotFound
	}
	version := s.LastVersion + 1

	snapshot := model.SnapshotOf(s, model.ShiftChangeUpdate, version)
	snapshot.Note = note
	snapshot.ID = m.nextHistoryID
	snapshot.ChangedAt = time.Now()
	m.nextHistoryID++
	m.histories[snapshot.ID] = snapshot

	applyShiftFields(s, fields)
	s.LastVersion = version

	copied := *s
	return &copied, version, nil
}

func (m *mockShiftRepo) DeleteWithHistory(_ context.Context, shiftID uint, note *string) (int, error) {
	s, ok := m.shifts[shiftID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	version := s.LastVersion + 1

	snapshot := model.SnapshotOf(s, model.ShiftChangeDelete, version)
	snapshot.Note = note
	snapshot.ID = m.nextHistoryID
	snapshot.ChangedAt = time.Now()
	m.nextHistoryID++
	m.histories[snapshot.ID] = snapshot

	delete(m.shifts, shiftID)
	return version, nil
}

func (m *mockShiftRepo) GetHistoryByID(_ context.Context, historyID uint) (*model.ShiftChangeHistory, error) {
	if h, ok := m.histories[historyID]; ok {
		copied := *h
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) GetHistoryByVersion(_ context.Context, shiftID uint, version int) (*model.ShiftChangeHistory, error) {
	for _, h := range m.histories {
		if h.ShiftID == shiftID && h.Version == version {
			copied := *h
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) ListHistory(_ context.Context, filters *repository.ShiftHistoryFilters, offset, limit int) ([]model.ShiftChangeHistory, int64, error) {
	var matched []model.ShiftChangeHistory
	for _, h := range m.histories {
		if filters != nil {
			if filters.EmployeeIDs != nil && !containsID(filters.EmployeeIDs, h.EmployeeID) {
				continue
			}
			if filters.From != nil && h.ShiftDate.Before(*filters.From) {
				continue
			}
			if filters.To != nil && h.ShiftDate.After(*filters.To) {
				continue
			}
			if filters.ChangeType != "" && h.ChangeType != filters.ChangeType {
				continue
			}
		}
		matched = append(matched, *h)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockShiftRepo) DeleteHistory(_ context.Context, historyID uint) error {
	delete(m.histories, historyID)
	return nil
}

func applyShiftFields(s *model.Shift, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "shift_code":
			s.ShiftCode = toStrPtr(v)
		case "start_time":
			s.StartTime = toStrPtr(v)
		case "end_time":
			s.EndTime = toStrPtr(v)
		case "is_holiday":
			s.IsHoliday = v.(bool)
		case "is_paid_leave":
			s.IsPaidLeave = v.(bool)
		case "is_remote":
			s.IsRemote = v.(bool)
		}
	}
}

func toStrPtr(v interface{}) *string {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		return &t
	case *string:
		return t
	}
	return nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ── テストフィクスチャ ──

// newTestRepository 相互参照を張った Mock 一式で Repository 集約を組み立てる
func newTestRepository() (*repository.Repository, *mockGroupRepo, *mockEmployeeRepo, *mockNameHistoryRepo, *mockRoleAssignmentRepo, *mockShiftRepo) {
	groupRepo := newMockGroupRepo()
	employeeRepo := newMockEmployeeRepo()
	historyRepo := newMockNameHistoryRepo()
	roleRepo := newMockRoleAssignmentRepo()
	shiftRepo := newMockShiftRepo()
	functionRoleRepo := newMockFunctionRoleRepo()

	groupRepo.employees = employeeRepo
	employeeRepo.groups = groupRepo
	employeeRepo.histories = historyRepo
	employeeRepo.roles = roleRepo
	historyRepo.employees = employeeRepo
	roleRepo.roles = functionRoleRepo

	repo := &repository.Repository{
		Group:          groupRepo,
		Employee:       employeeRepo,
		FunctionRole:   functionRoleRepo,
		NameHistory:    historyRepo,
		RoleAssignment: roleRepo,
		Shift:          shiftRepo,
	}
	return repo, groupRepo, employeeRepo, historyRepo, roleRepo, shiftRepo
}

// mustDate テスト用日付リテラル
func mustDate(s string) time.Time {
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func strPtr(s string) *string { return &s }
