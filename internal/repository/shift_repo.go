package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shift-kanri/internal/model"
)

// ShiftHistoryFilters 変更履歴一覧の絞り込み条件
type ShiftHistoryFilters struct {
	EmployeeIDs []uint // 氏名検索の結果。nil なら絞り込みなし
	From        *time.Time
	To          *time.Time
	ChangeType  string
}

// ShiftRepository シフトデータアクセスインタフェース
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	GetByID(ctx context.Context, id uint) (*model.Shift, error)
	ListByEmployeeIDs(ctx context.Context, employeeIDs []uint, from, to time.Time) ([]model.Shift, error)
	ListByIDs(ctx context.Context, ids []uint) ([]model.Shift, error)
	UpdateWithHistory(ctx context.Context, shiftID uint, fields map[string]interface{}, note *string) (*model.Shift, int, error)
	DeleteWithHistory(ctx context.Context, shiftID uint, note *string) (int, error)
	GetHistoryByID(ctx context.Context, historyID uint) (*model.ShiftChangeHistory, error)
	GetHistoryByVersion(ctx context.Context, shiftID uint, version int) (*model.ShiftChangeHistory, error)
	ListHistory(ctx context.Context, filters *ShiftHistoryFilters, offset, limit int) ([]model.ShiftChangeHistory, int64, error)
	DeleteHistory(ctx context.Context, historyID uint) error
}

type shiftRepo struct {
	db *gorm.DB
}

func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id uint) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).First(&shift, id).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) ListByEmployeeIDs(ctx context.Context, employeeIDs []uint, from, to time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	if len(employeeIDs) == 0 {
		return shifts, nil
	}
	err := r.db.WithContext(ctx).
		Where("employee_id IN ?", employeeIDs).
		Where("shift_date BETWEEN ? AND ?", from, to).
		Order("shift_date ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) ListByIDs(ctx context.Context, ids []uint) ([]model.Shift, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&shifts).Error
	return shifts, err
}

// UpdateWithHistory シフト行をロックして変更前スナップショットを履歴へ積んでから更新する。
// version はロック下でシフト行の last_version から採番するため、同一シフトへの
// 並行更新でも衝突せず、履歴行を削除した後も番号を再利用しない。
func (r *shiftRepo) UpdateWithHistory(ctx context.Context, shiftID uint, fields map[string]interface{}, note *string) (*model.Shift, int, error) {
	var updated model.Shift
	var version int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Shift
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&current, shiftID).Error; err != nil {
			return err
		}
		v := current.LastVersion + 1

		snapshot := model.SnapshotOf(&current, model.ShiftChangeUpdate, v)
		snapshot.Note = note
		if err := tx.Create(snapshot).Error; err != nil {
			return err
		}

		updates := make(map[string]interface{}, len(fields)+1)
		for k, val := range fields {
			updates[k] = val
		}
		updates["last_version"] = v
		if err := tx.Model(&model.Shift{}).
			Where("id = ?", shiftID).
			Updates(updates).Error; err != nil {
			return err
		}

		version = v
		return tx.First(&updated, shiftID).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return &updated, version, nil
}

// DeleteWithHistory 最終状態を DELETE スナップショットとして残してからシフト行を削除する。
// 履歴側に shift_id の外部キーは張っていないため、削除後もスナップショットは参照できる。
func (r *shiftRepo) DeleteWithHistory(ctx context.Context, shiftID uint, note *string) (int, error) {
	var version int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Shift
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&current, shiftID).Error; err != nil {
			return err
		}
		v := current.LastVersion + 1
		snapshot := model.SnapshotOf(&current, model.ShiftChangeDelete, v)
		snapshot.Note = note
		if err := tx.Create(snapshot).Error; err != nil {
			return err
		}
		version = v
		return tx.Delete(&model.Shift{}, shiftID).Error
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (r *shiftRepo) GetHistoryByID(ctx context.Context, historyID uint) (*model.ShiftChangeHistory, error) {
	var entry model.ShiftChangeHistory
	err := r.db.WithContext(ctx).First(&entry, historyID).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *shiftRepo) GetHistoryByVersion(ctx context.Context, shiftID uint, version int) (*model.ShiftChangeHistory, error) {
	var entry model.ShiftChangeHistory
	err := r.db.WithContext(ctx).
		Where("shift_id = ? AND version = ?", shiftID, version).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *shiftRepo) ListHistory(ctx context.Context, filters *ShiftHistoryFilters, offset, limit int) ([]model.ShiftChangeHistory, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.ShiftChangeHistory{})
	if filters != nil {
		if filters.EmployeeIDs != nil {
			query = query.Where("employee_id IN ?", filters.EmployeeIDs)
		}
		if filters.From != nil {
			query = query.Where("shift_date >= ?", *filters.From)
		}
		if filters.To != nil {
			query = query.Where("shift_date <= ?", *filters.To)
		}
		if filters.ChangeType != "" {
			query = query.Where("change_type = ?", filters.ChangeType)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.ShiftChangeHistory
	err := query.
		Order("changed_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *shiftRepo) DeleteHistory(ctx context.Context, historyID uint) error {
	return r.db.WithContext(ctx).Delete(&model.ShiftChangeHistory{}, historyID).Error
}
