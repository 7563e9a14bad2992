package repository

import (
	"context"

	"gorm.io/gorm"

	"shift-kanri/internal/model"
)

// EmployeeListFilters 従業員一覧の絞り込み条件
type EmployeeListFilters struct {
	Q      string // 氏名・かなの部分一致
	Group  *uint
	Status string // active | inactive | all
	Role   *uint  // 現行割当のある役割 ID
	Sort   string // name | assignment_date
	Order  string // asc | desc
}

// EmployeeRepository 従業員データアクセスインタフェース
type EmployeeRepository interface {
	// Create 従業員と初期氏名履歴を同一トランザクションで登録する
	Create(ctx context.Context, employee *model.Employee, initial *model.EmployeeNameHistory) error
	GetByID(ctx context.Context, id uint) (*model.Employee, error)
	// GetDetail 役割・氏名履歴込みで取得する
	GetDetail(ctx context.Context, id uint) (*model.Employee, error)
	ListWithFilters(ctx context.Context, f *EmployeeListFilters, offset, limit int) ([]model.Employee, int64, error)
	ListActiveByGroup(ctx context.Context, groupID uint) ([]model.Employee, error)
	ListByIDs(ctx context.Context, ids []uint) ([]model.Employee, error)
	SearchIDsByName(ctx context.Context, q string) ([]uint, error)
	Update(ctx context.Context, employee *model.Employee) error
}

type employeeRepo struct {
	db *gorm.DB
}

func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) Create(ctx context.Context, employee *model.Employee, initial *model.EmployeeNameHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(employee).Error; err != nil {
			return err
		}
		initial.EmployeeID = employee.ID
		return tx.Create(initial).Error
	})
}

func (r *employeeRepo) GetByID(ctx context.Context, id uint) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.WithContext(ctx).
		Preload("Group").
		First(&employee, id).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) GetDetail(ctx context.Context, id uint) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("FunctionRoles", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_date DESC")
		}).
		Preload("FunctionRoles.FunctionRole").
		Preload("NameHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("valid_from DESC")
		}).
		First(&employee, id).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) ListWithFilters(ctx context.Context, f *EmployeeListFilters, offset, limit int) ([]model.Employee, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Employee{})

	if f.Q != "" {
		like := "%" + f.Q + "%"
		db = db.Where("name ILIKE ? OR name_kana ILIKE ?", like, like)
	}
	if f.Group != nil {
		db = db.Where("group_id = ?", *f.Group)
	}
	switch f.Status {
	case "inactive":
		db = db.Where("termination_date IS NOT NULL")
	case "all":
		// 絞り込み無し
	default:
		db = db.Where("termination_date IS NULL")
	}
	if f.Role != nil {
		db = db.Where(
			"id IN (?)",
			r.db.Model(&model.EmployeeFunctionRole{}).
				Select("employee_id").
				Where("function_role_id = ? AND end_date IS NULL", *f.Role),
		)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := "name"
	if f.Sort == "assignment_date" {
		sort = "assignment_date"
	}
	order := "ASC"
	if f.Order == "desc" {
		order = "DESC"
	}

	var employees []model.Employee
	err := db.
		Preload("Group").
		Preload("FunctionRoles", "end_date IS NULL").
		Preload("FunctionRoles.FunctionRole").
		Order(sort + " " + order).
		Offset(offset).Limit(limit).
		Find(&employees).Error
	return employees, total, err
}

func (r *employeeRepo) ListActiveByGroup(ctx context.Context, groupID uint) ([]model.Employee, error) {
	var employees []model.Employee
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND termination_date IS NULL", groupID).
		Order("name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *employeeRepo) ListByIDs(ctx context.Context, ids []uint) ([]model.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var employees []model.Employee
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&employees).Error
	return employees, err
}

func (r *employeeRepo) SearchIDsByName(ctx context.Context, q string) ([]uint, error) {
	like := "%" + q + "%"
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Where("name ILIKE ? OR name_kana ILIKE ?", like, like).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *employeeRepo) Update(ctx context.Context, employee *model.Employee) error {
	return r.db.WithContext(ctx).
		Model(employee).
		Updates(map[string]interface{}{
			"group_id":         employee.GroupID,
			"assignment_date":  employee.AssignmentDate,
			"termination_date": employee.TerminationDate,
		}).Error
}
