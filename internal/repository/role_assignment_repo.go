package repository

import (
	"context"

	"gorm.io/gorm"

	"shift-kanri/internal/model"
)

// RoleAssignmentRepository 役割割り当てデータアクセスインタフェース
type RoleAssignmentRepository interface {
	ListByEmployee(ctx context.Context, employeeID uint) ([]model.EmployeeFunctionRole, error)
	GetByID(ctx context.Context, id uint) (*model.EmployeeFunctionRole, error)
	AssignWithClose(ctx context.Context, a *model.EmployeeFunctionRole) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type roleAssignmentRepo struct {
	db *gorm.DB
}

func NewRoleAssignmentRepo(db *gorm.DB) RoleAssignmentRepository {
	return &roleAssignmentRepo{db: db}
}

func (r *roleAssignmentRepo) ListByEmployee(ctx context.Context, employeeID uint) ([]model.EmployeeFunctionRole, error) {
	var assignments []model.EmployeeFunctionRole
	err := r.db.WithContext(ctx).
		Preload("FunctionRole").
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *roleAssignmentRepo) GetByID(ctx context.Context, id uint) (*model.EmployeeFunctionRole, error) {
	var assignment model.EmployeeFunctionRole
	err := r.db.WithContext(ctx).Preload("FunctionRole").First(&assignment, id).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// AssignWithClose 同じ役割カテゴリの現行割り当てを開始日前日で閉じてから新規割り当てを追加する。
// 同日開始の重複は部分ユニーク制約が弾き、gorm.ErrDuplicatedKey として返る。
func (r *roleAssignmentRepo) AssignWithClose(ctx context.Context, a *model.EmployeeFunctionRole) error {
	closedTo := a.StartDate.AddDate(0, 0, -1)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.EmployeeFunctionRole{}).
			Where("employee_id = ? AND role_type = ? AND end_date IS NULL", a.EmployeeID, a.RoleType).
			Update("end_date", closedTo).Error; err != nil {
			return err
		}
		return tx.Create(a).Error
	})
}

func (r *roleAssignmentRepo) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.EmployeeFunctionRole{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *roleAssignmentRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.EmployeeFunctionRole{}, id).Error
}
