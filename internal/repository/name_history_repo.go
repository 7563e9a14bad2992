package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shift-kanri/internal/model"
)

// NeighborPatch 隣接する氏名履歴レコードへの修正指示
type NeighborPatch struct {
	ID          uint
	SetValidTo  bool
	ValidTo     *time.Time
	MakeCurrent bool
}

// MasterMirror 従業員マスタへの氏名ミラー指示
type MasterMirror struct {
	EmployeeID uint
	Name       string
	NameKana   *string
}

// NameHistoryMutation 氏名履歴への複合変更を 1 トランザクションで表現する。
// 適用順序は Update → Delete → NeighborPatch → Mirror で固定
// (is_current の部分ユニーク制約上、削除前に別レコードを昇格できないため)。
type NameHistoryMutation struct {
	Update    *model.EmployeeNameHistory
	DeleteID  *uint
	Neighbors []NeighborPatch
	Mirror    *MasterMirror
}

// NameHistoryRepository 氏名履歴データアクセスインタフェース
type NameHistoryRepository interface {
	ListByEmployee(ctx context.Context, employeeID uint) ([]model.EmployeeNameHistory, error)
	GetByID(ctx context.Context, id uint) (*model.EmployeeNameHistory, error)
	GetCurrent(ctx context.Context, employeeID uint) (*model.EmployeeNameHistory, error)
	FindPrevious(ctx context.Context, employeeID uint, before time.Time, exceptID uint) (*model.EmployeeNameHistory, error)
	FindNext(ctx context.Context, employeeID uint, after time.Time, exceptID uint) (*model.EmployeeNameHistory, error)
	FindLatestExcept(ctx context.Context, employeeID uint, exceptID uint) (*model.EmployeeNameHistory, error)
	Append(ctx context.Context, entry *model.EmployeeNameHistory) error
	Apply(ctx context.Context, m *NameHistoryMutation) error
}

type nameHistoryRepo struct {
	db *gorm.DB
}

func NewNameHistoryRepo(db *gorm.DB) NameHistoryRepository {
	return &nameHistoryRepo{db: db}
}

func (r *nameHistoryRepo) ListByEmployee(ctx context.Context, employeeID uint) ([]model.EmployeeNameHistory, error) {
	var entries []model.EmployeeNameHistory
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("valid_from DESC").
		Find(&entries).Error
	return entries, err
}

func (r *nameHistoryRepo) GetByID(ctx context.Context, id uint) (*model.EmployeeNameHistory, error) {
	var entry model.EmployeeNameHistory
	err := r.db.WithContext(ctx).First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *nameHistoryRepo) GetCurrent(ctx context.Context, employeeID uint) (*model.EmployeeNameHistory, error) {
	var entry model.EmployeeNameHistory
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND is_current", employeeID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindPrevious 指定日より前で最新の過去レコードを返す。
// 現行レコードは対象外：隣接修復が現行の valid_to を閉じてはならない
func (r *nameHistoryRepo) FindPrevious(ctx context.Context, employeeID uint, before time.Time, exceptID uint) (*model.EmployeeNameHistory, error) {
	var entry model.EmployeeNameHistory
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND valid_from < ? AND id <> ? AND NOT is_current", employeeID, before, exceptID).
		Order("valid_from DESC").
		First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *nameHistoryRepo) FindNext(ctx context.Context, employeeID uint, after time.Time, exceptID uint) (*model.EmployeeNameHistory, error) {
	var entry model.EmployeeNameHistory
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND valid_from > ? AND id <> ?", employeeID, after, exceptID).
		Order("valid_from ASC").
		First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *nameHistoryRepo) FindLatestExcept(ctx context.Context, employeeID uint, exceptID uint) (*model.EmployeeNameHistory, error) {
	var entry model.EmployeeNameHistory
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND id <> ?", employeeID, exceptID).
		Order("valid_from DESC").
		First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Append 現行レコードを閉じて新しい現行レコードを追加し、従業員マスタへ氏名をミラーする。
// entry.ValidTo は nil、IsCurrent は true を前提とする。
func (r *nameHistoryRepo) Append(ctx context.Context, entry *model.EmployeeNameHistory) error {
	closedTo := entry.ValidFrom.AddDate(0, 0, -1)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.EmployeeNameHistory{}).
			Where("employee_id = ? AND is_current", entry.EmployeeID).
			Updates(map[string]interface{}{
				"valid_to":   closedTo,
				"is_current": false,
			}).Error; err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Model(&model.Employee{}).
			Where("id = ?", entry.EmployeeID).
			Updates(map[string]interface{}{
				"name":      entry.Name,
				"name_kana": entry.NameKana,
			}).Error
	})
}

func (r *nameHistoryRepo) Apply(ctx context.Context, m *NameHistoryMutation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.Update != nil {
			if err := tx.Model(&model.EmployeeNameHistory{}).
				Where("id = ?", m.Update.ID).
				Updates(map[string]interface{}{
					"name":       m.Update.Name,
					"name_kana":  m.Update.NameKana,
					"valid_from": m.Update.ValidFrom,
					"valid_to":   m.Update.ValidTo,
					"note":       m.Update.Note,
				}).Error; err != nil {
				return err
			}
		}
		if m.DeleteID != nil {
			if err := tx.Delete(&model.EmployeeNameHistory{}, *m.DeleteID).Error; err != nil {
				return err
			}
		}
		for _, p := range m.Neighbors {
			updates := map[string]interface{}{}
			if p.SetValidTo {
				updates["valid_to"] = p.ValidTo
			}
			if p.MakeCurrent {
				updates["is_current"] = true
				updates["valid_to"] = nil
			}
			if len(updates) == 0 {
				continue
			}
			if err := tx.Model(&model.EmployeeNameHistory{}).
				Where("id = ?", p.ID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		if m.Mirror != nil {
			if err := tx.Model(&model.Employee{}).
				Where("id = ?", m.Mirror.EmployeeID).
				Updates(map[string]interface{}{
					"name":      m.Mirror.Name,
					"name_kana": m.Mirror.NameKana,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
