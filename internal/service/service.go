package service

import (
	"go.uber.org/zap"

	"shift-kanri/internal/repository"
)

// Service 全 Service の集約
type Service struct {
	Group       GroupService
	Employee    EmployeeService
	NameHistory NameHistoryService
	Role        RoleService
	Shift       ShiftService
	Export      ExportService
}

// NewService Service 集約を作成する
func NewService(repo *repository.Repository, logger *zap.Logger) *Service {
	shift := NewShiftService(repo, logger)
	return &Service{
		Group:       NewGroupService(repo, logger),
		Employee:    NewEmployeeService(repo, logger),
		NameHistory: NewNameHistoryService(repo, logger),
		Role:        NewRoleService(repo, logger),
		Shift:       shift,
		Export:      NewExportService(repo, shift, logger),
	}
}
