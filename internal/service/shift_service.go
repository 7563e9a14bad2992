package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-kanri/internal/dto"
	"shift-kanri/internal/model"
	"shift-kanri/internal/repository"
	appErrors "shift-kanri/pkg/errors"
)

// ── シフトモジュール業務エラー ──

var (
	ErrShiftNotFound         = errors.New("シフトが見つかりません")
	ErrShiftDuplicate        = errors.New("同じ日付のシフトが既に存在します")
	ErrShiftHistoryNotFound  = errors.New("変更履歴が見つかりません")
	ErrShiftVersionNotFound  = errors.New("指定されたバージョンが見つかりません")
	ErrNoShiftsInBulkRequest = errors.New("更新対象のシフトが指定されていません")
)

// ShiftService シフト・変更履歴業務インタフェース。
// 更新・削除のたびに直前状態を version 連番付きで履歴へ積み（capture-then-apply）、
// 任意の過去バージョンへの復元を通常の更新として記録する。
type ShiftService interface {
	Calendar(ctx context.Context, req *dto.ShiftCalendarRequest) (*dto.ShiftCalendarResponse, error)
	Create(ctx context.Context, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error)
	Update(ctx context.Context, shiftID uint, req *dto.UpdateShiftRequest) (*dto.ShiftResponse, error)
	BulkUpdate(ctx context.Context, req *dto.BulkUpdateShiftsRequest) (*dto.BulkUpdateShiftsResponse, error)
	Restore(ctx context.Context, shiftID uint, version int) (*dto.ShiftResponse, error)
	Delete(ctx context.Context, shiftID uint, note *string) error
	ListHistory(ctx context.Context, req *dto.ShiftHistoryListRequest) ([]dto.ShiftHistoryResponse, int64, error)
	DeleteHistory(ctx context.Context, historyID uint) error
}

type shiftService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftService ShiftService を作成する
func NewShiftService(repo *repository.Repository, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, logger: logger}
}

// ────────────────────── カレンダー ──────────────────────

func (s *shiftService) Calendar(ctx context.Context, req *dto.ShiftCalendarRequest) (*dto.ShiftCalendarResponse, error) {
	now := time.Now()
	year, month := req.Year, req.Month
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	var groups []model.Group
	if req.Group != nil {
		group, err := s.repo.Group.GetByID(ctx, *req.Group)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGroupNotFound
			}
			s.logger.Error("グループ取得に失敗", zap.Uint("group_id", *req.Group), zap.Error(err))
			return nil, err
		}
		groups = []model.Group{*group}
	} else {
		var err error
		groups, err = s.repo.Group.List(ctx)
		if err != nil {
			s.logger.Error("グループ一覧取得に失敗", zap.Error(err))
			return nil, err
		}
	}

	resp := &dto.ShiftCalendarResponse{
		Year:        year,
		Month:       month,
		DaysInMonth: last.Day(),
		Groups:      []dto.CalendarGroup{},
	}

	for _, g := range groups {
		employees, err := s.repo.Employee.ListActiveByGroup(ctx, g.ID)
		if err != nil {
			s.logger.Error("従業員一覧取得に失敗", zap.Uint("group_id", g.ID), zap.Error(err))
			return nil, err
		}

		ids := make([]uint, 0, len(employees))
		for _, e := range employees {
			ids = append(ids, e.ID)
		}
		shifts, err := s.repo.Shift.ListByEmployeeIDs(ctx, ids, first, last)
		if err != nil {
			s.logger.Error("シフト取得に失敗", zap.Uint("group_id", g.ID), zap.Error(err))
			return nil, err
		}
		byEmployee := make(map[uint][]dto.CalendarShift, len(ids))
		for i := range shifts {
			sh := &shifts[i]
			byEmployee[sh.EmployeeID] = append(byEmployee[sh.EmployeeID], dto.CalendarShift{
				ID:          sh.ID,
				Date:        formatDate(sh.ShiftDate),
				ShiftCode:   sh.ShiftCode,
				StartTime:   sh.StartTime,
				EndTime:     sh.EndTime,
				IsHoliday:   sh.IsHoliday,
				IsPaidLeave: sh.IsPaidLeave,
				IsRemote:    sh.IsRemote,
			})
		}

		calGroup := dto.CalendarGroup{ID: g.ID, Name: g.Name, Employees: []dto.CalendarEmployee{}}
		for _, e := range employees {
			row := dto.CalendarEmployee{ID: e.ID, Name: e.Name, Shifts: byEmployee[e.ID]}
			if row.Shifts == nil {
				row.Shifts = []dto.CalendarShift{}
			}
			calGroup.Employees = append(calGroup.Employees, row)
		}
		resp.Groups = append(resp.Groups, calGroup)
	}
	return resp, nil
}

// ────────────────────── 登録・更新 ──────────────────────

func (s *shiftService) Create(ctx context.Context, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error) {
	if _, err := s.repo.Employee.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("従業員取得に失敗", zap.Uint("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}
	shiftDate, err := parseDate("shift_date", req.ShiftDate)
	if err != nil {
		return nil, err
	}
	if err := validateTimeOfDay("start_time", req.StartTime); err != nil {
		return nil, err
	}
	if err := validateTimeOfDay("end_time", req.EndTime); err != nil {
		return nil, err
	}

	shift := &model.Shift{
		EmployeeID:  req.EmployeeID,
		ShiftDate:   shiftDate,
		ShiftCode:   req.ShiftCode,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsHoliday:   req.IsHoliday,
		IsPaidLeave: req.IsPaidLeave,
		IsRemote:    req.IsRemote,
	}
	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		if appErrors.IsDuplicateKey(err) {
			return nil, ErrShiftDuplicate
		}
		s.logger.Error("シフト登録に失敗", zap.Uint("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}
	resp := toShiftResponse(shift)
	return &resp, nil
}

func (s *shiftService) Update(ctx context.Context, shiftID uint, req *dto.UpdateShiftRequest) (*dto.ShiftResponse, error) {
	fields, err := buildShiftFields(&req.ShiftUpdateFields)
	if err != nil {
		return nil, err
	}

	updated, _, err := s.repo.Shift.UpdateWithHistory(ctx, shiftID, fields, req.Note)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("シフト更新に失敗", zap.Uint("shift_id", shiftID), zap.Error(err))
		return nil, err
	}
	resp := toShiftResponse(updated)
	return &resp, nil
}

// BulkUpdate 各シフトを個別・逐次に更新し、それぞれに履歴バージョンを積む。
// 全体を1トランザクションにはしない: 途中で失敗しても適用済み分は巻き戻さず、
// 成功件数と失敗 ID を返す。
func (s *shiftService) BulkUpdate(ctx context.Context, req *dto.BulkUpdateShiftsRequest) (*dto.BulkUpdateShiftsResponse, error) {
	if len(req.ShiftIDs) == 0 {
		return nil, ErrNoShiftsInBulkRequest
	}
	fields, err := buildShiftFields(&req.Updates)
	if err != nil {
		return nil, err
	}

	resp := &dto.BulkUpdateShiftsResponse{}
	for _, id := range req.ShiftIDs {
		if _, _, err := s.repo.Shift.UpdateWithHistory(ctx, id, fields, req.Note); err != nil {
			s.logger.Warn("一括更新中のシフト更新に失敗", zap.Uint("shift_id", id), zap.Error(err))
			resp.FailedIDs = append(resp.FailedIDs, id)
			continue
		}
		resp.Count++
	}
	return resp, nil
}

// Restore 指定バージョンの履歴の値を通常の更新経路で現在状態へ適用する。
// 復元自体も新しいバージョンとして記録され、巻き戻しは行わない。
// 履歴側ノートは生成メッセージで固定する。
func (s *shiftService) Restore(ctx context.Context, shiftID uint, version int) (*dto.ShiftResponse, error) {
	snapshot, err := s.repo.Shift.GetHistoryByVersion(ctx, shiftID, version)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftVersionNotFound
		}
		s.logger.Error("履歴バージョン取得に失敗",
			zap.Uint("shift_id", shiftID), zap.Int("version", version), zap.Error(err))
		return nil, err
	}

	fields := map[string]interface{}{
		"shift_code":    snapshot.ShiftCode,
		"start_time":    snapshot.StartTime,
		"end_time":      snapshot.EndTime,
		"is_holiday":    snapshot.IsHoliday,
		"is_paid_leave": snapshot.IsPaidLeave,
		"is_remote":     snapshot.IsRemote,
	}
	note := fmt.Sprintf("Version %d からの復元", version)

	updated, _, err := s.repo.Shift.UpdateWithHistory(ctx, shiftID, fields, &note)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("シフト復元に失敗",
			zap.Uint("shift_id", shiftID), zap.Int("version", version), zap.Error(err))
		return nil, err
	}
	resp := toShiftResponse(updated)
	return &resp, nil
}

func (s *shiftService) Delete(ctx context.Context, shiftID uint, note *string) error {
	if _, err := s.repo.Shift.DeleteWithHistory(ctx, shiftID, note); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		s.logger.Error("シフト削除に失敗", zap.Uint("shift_id", shiftID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 変更履歴 ──────────────────────

func (s *shiftService) ListHistory(ctx context.Context, req *dto.ShiftHistoryListRequest) ([]dto.ShiftHistoryResponse, int64, error) {
	filters := &repository.ShiftHistoryFilters{}
	if req.Q != "" {
		ids, err := s.repo.Employee.SearchIDsByName(ctx, req.Q)
		if err != nil {
			s.logger.Error("従業員氏名検索に失敗", zap.String("q", req.Q), zap.Error(err))
			return nil, 0, err
		}
		if len(ids) == 0 {
			return []dto.ShiftHistoryResponse{}, 0, nil
		}
		filters.EmployeeIDs = ids
	}
	from, err := parseOptionalDate("from", req.From)
	if err != nil {
		return nil, 0, err
	}
	filters.From = from
	to, err := parseOptionalDate("to", req.To)
	if err != nil {
		return nil, 0, err
	}
	filters.To = to
	if req.Type != "" && req.Type != "all" {
		filters.ChangeType = req.Type
	}

	entries, total, err := s.repo.Shift.ListHistory(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("変更履歴取得に失敗", zap.Error(err))
		return nil, 0, err
	}

	employeeNames, err := s.employeeNamesFor(ctx, entries)
	if err != nil {
		return nil, 0, err
	}
	currentShifts, err := s.currentShiftsFor(ctx, entries)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.ShiftHistoryResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		row := dto.ShiftHistoryResponse{
			ID:         e.ID,
			ShiftID:    e.ShiftID,
			Employee:   dto.HistoryEmployee{ID: e.EmployeeID, Name: employeeNames[e.EmployeeID]},
			ShiftDate:  formatDate(e.ShiftDate),
			ChangeType: e.ChangeType,
			Version:    e.Version,
			ChangedAt:  e.ChangedAt.Format(time.RFC3339),
			Note:       e.Note,
			Previous: dto.ShiftState{
				ShiftCode:   e.ShiftCode,
				StartTime:   e.StartTime,
				EndTime:     e.EndTime,
				IsHoliday:   e.IsHoliday,
				IsPaidLeave: e.IsPaidLeave,
				IsRemote:    e.IsRemote,
			},
		}
		// 削除済みシフトは現在状態なし
		if current, ok := currentShifts[e.ShiftID]; ok {
			row.Current = &dto.ShiftState{
				ShiftCode:   current.ShiftCode,
				StartTime:   current.StartTime,
				EndTime:     current.EndTime,
				IsHoliday:   current.IsHoliday,
				IsPaidLeave: current.IsPaidLeave,
				IsRemote:    current.IsRemote,
			}
		}
		result = append(result, row)
	}
	return result, total, nil
}

func (s *shiftService) DeleteHistory(ctx context.Context, historyID uint) error {
	if _, err := s.repo.Shift.GetHistoryByID(ctx, historyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftHistoryNotFound
		}
		s.logger.Error("変更履歴取得に失敗", zap.Uint("history_id", historyID), zap.Error(err))
		return err
	}
	// バージョン番号は永続割り当てのため、削除後の連番詰め直しはしない
	if err := s.repo.Shift.DeleteHistory(ctx, historyID); err != nil {
		s.logger.Error("変更履歴削除に失敗", zap.Uint("history_id", historyID), zap.Error(err))
		return err
	}
	return nil
}

func (s *shiftService) employeeNamesFor(ctx context.Context, entries []model.ShiftChangeHistory) (map[uint]string, error) {
	seen := make(map[uint]struct{}, len(entries))
	ids := make([]uint, 0, len(entries))
	for i := range entries {
		id := entries[i].EmployeeID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	employees, err := s.repo.Employee.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("従業員取得に失敗", zap.Error(err))
		return nil, err
	}
	names := make(map[uint]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}
	return names, nil
}

func (s *shiftService) currentShiftsFor(ctx context.Context, entries []model.ShiftChangeHistory) (map[uint]*model.Shift, error) {
	seen := make(map[uint]struct{}, len(entries))
	ids := make([]uint, 0, len(entries))
	for i := range entries {
		id := entries[i].ShiftID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	shifts, err := s.repo.Shift.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("シフト取得に失敗", zap.Error(err))
		return nil, err
	}
	byID := make(map[uint]*model.Shift, len(shifts))
	for i := range shifts {
		byID[shifts[i].ID] = &shifts[i]
	}
	return byID, nil
}

// ── DTO 変換 ──

// buildShiftFields nil でないフィールドだけを更新対象にする。
// 文字列フィールドの空文字指定は NULL 化として扱う
func buildShiftFields(f *dto.ShiftUpdateFields) (map[string]interface{}, error) {
	if err := validateTimeOfDay("start_time", f.StartTime); err != nil {
		return nil, err
	}
	if err := validateTimeOfDay("end_time", f.EndTime); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if f.ShiftCode != nil {
		fields["shift_code"] = emptyToNil(f.ShiftCode)
	}
	if f.StartTime != nil {
		fields["start_time"] = emptyToNil(f.StartTime)
	}
	if f.EndTime != nil {
		fields["end_time"] = emptyToNil(f.EndTime)
	}
	if f.IsHoliday != nil {
		fields["is_holiday"] = *f.IsHoliday
	}
	if f.IsPaidLeave != nil {
		fields["is_paid_leave"] = *f.IsPaidLeave
	}
	if f.IsRemote != nil {
		fields["is_remote"] = *f.IsRemote
	}
	return fields, nil
}

func toShiftResponse(s *model.Shift) dto.ShiftResponse {
	return dto.ShiftResponse{
		ID:          s.ID,
		EmployeeID:  s.EmployeeID,
		ShiftDate:   formatDate(s.ShiftDate),
		ShiftCode:   s.ShiftCode,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		IsHoliday:   s.IsHoliday,
		IsPaidLeave: s.IsPaidLeave,
		IsRemote:    s.IsRemote,
	}
}
