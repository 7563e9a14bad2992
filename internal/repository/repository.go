package repository

import "gorm.io/gorm"

// Repository 全 Repository の集約
type Repository struct {
	Group          GroupRepository
	Employee       EmployeeRepository
	FunctionRole   FunctionRoleRepository
	NameHistory    NameHistoryRepository
	RoleAssignment RoleAssignmentRepository
	Shift          ShiftRepository
}

// NewRepository Repository 集約を作成する
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Group:          NewGroupRepo(db),
		Employee:       NewEmployeeRepo(db),
		FunctionRole:   NewFunctionRoleRepo(db),
		NameHistory:    NewNameHistoryRepo(db),
		RoleAssignment: NewRoleAssignmentRepo(db),
		Shift:          NewShiftRepo(db),
	}
}
