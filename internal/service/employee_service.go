package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-kanri/internal/dto"
	"shift-kanri/internal/model"
	"shift-kanri/internal/repository"
)

// ── 従業員モジュール業務エラー ──

var ErrEmployeeNotFound = errors.New("従業員が見つかりません")

// EmployeeService 従業員業務インタフェース
type EmployeeService interface {
	List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeListItem, int64, error)
	Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*dto.EmployeeDetailResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.EmployeeDetailResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateEmployeeRequest) (*dto.EmployeeDetailResponse, error)
}

type employeeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEmployeeService EmployeeService を作成する
func NewEmployeeService(repo *repository.Repository, logger *zap.Logger) EmployeeService {
	return &employeeService{repo: repo, logger: logger}
}

func (s *employeeService) List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeListItem, int64, error) {
	filters := &repository.EmployeeListFilters{
		Q:      req.Q,
		Group:  req.Group,
		Status: req.Status,
		Role:   req.Role,
		Sort:   req.Sort,
		Order:  req.Order,
	}
	employees, total, err := s.repo.Employee.ListWithFilters(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("従業員一覧取得に失敗", zap.Error(err))
		return nil, 0, err
	}

	items := make([]dto.EmployeeListItem, 0, len(employees))
	for i := range employees {
		items = append(items, toEmployeeListItem(&employees[i]))
	}
	return items, total, nil
}

func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*dto.EmployeeDetailResponse, error) {
	if _, err := s.repo.Group.GetByID(ctx, req.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("グループ取得に失敗", zap.Uint("group_id", req.GroupID), zap.Error(err))
		return nil, err
	}

	assignmentDate, err := parseOptionalDate("assignment_date", req.AssignmentDate)
	if err != nil {
		return nil, err
	}

	employee := &model.Employee{
		Name:           req.Name,
		NameKana:       req.NameKana,
		GroupID:        req.GroupID,
		AssignmentDate: assignmentDate,
	}

	// 初期氏名履歴: 着任日があればそこから、なければ登録日から有効
	validFrom := model.DateOnly(time.Now())
	if assignmentDate != nil {
		validFrom = *assignmentDate
	}
	initial := &model.EmployeeNameHistory{
		Name:      req.Name,
		NameKana:  req.NameKana,
		ValidFrom: validFrom,
		IsCurrent: true,
	}

	if err := s.repo.Employee.Create(ctx, employee, initial); err != nil {
		s.logger.Error("従業員登録に失敗", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, employee.ID)
}

func (s *employeeService) GetByID(ctx context.Context, id uint) (*dto.EmployeeDetailResponse, error) {
	employee, err := s.repo.Employee.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("従業員取得に失敗", zap.Uint("employee_id", id), zap.Error(err))
		return nil, err
	}
	return toEmployeeDetail(employee), nil
}

func (s *employeeService) Update(ctx context.Context, id uint, req *dto.UpdateEmployeeRequest) (*dto.EmployeeDetailResponse, error) {
	employee, err := s.repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("従業員取得に失敗", zap.Uint("employee_id", id), zap.Error(err))
		return nil, err
	}

	if req.GroupID != nil {
		if _, err := s.repo.Group.GetByID(ctx, *req.GroupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGroupNotFound
			}
			return nil, err
		}
		employee.GroupID = *req.GroupID
	}
	if req.AssignmentDate != nil {
		d, err := parseOptionalDate("assignment_date", req.AssignmentDate)
		if err != nil {
			return nil, err
		}
		employee.AssignmentDate = d
	}
	if req.TerminationDate != nil {
		d, err := parseOptionalDate("termination_date", req.TerminationDate)
		if err != nil {
			return nil, err
		}
		employee.TerminationDate = d
	}

	if err := s.repo.Employee.Update(ctx, employee); err != nil {
		s.logger.Error("従業員更新に失敗", zap.Uint("employee_id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ── DTO 変換 ──

func toEmployeeListItem(e *model.Employee) dto.EmployeeListItem {
	item := dto.EmployeeListItem{
		ID:              e.ID,
		Name:            e.Name,
		NameKana:        e.NameKana,
		AssignmentDate:  formatDatePtr(e.AssignmentDate),
		TerminationDate: formatDatePtr(e.TerminationDate),
		IsActive:        e.IsActive(),
		Roles:           []dto.RoleBrief{},
	}
	if e.Group != nil {
		item.Group = &dto.GroupRef{ID: e.Group.ID, Name: e.Group.Name}
	}
	for _, r := range e.FunctionRoles {
		if r.FunctionRole == nil {
			continue
		}
		item.Roles = append(item.Roles, dto.RoleBrief{
			ID:        r.ID,
			RoleName:  r.FunctionRole.RoleName,
			RoleType:  r.RoleType,
			IsPrimary: r.IsPrimary,
		})
	}
	return item
}

func toEmployeeDetail(e *model.Employee) *dto.EmployeeDetailResponse {
	detail := &dto.EmployeeDetailResponse{
		ID:              e.ID,
		Name:            e.Name,
		NameKana:        e.NameKana,
		GroupID:         e.GroupID,
		AssignmentDate:  formatDatePtr(e.AssignmentDate),
		TerminationDate: formatDatePtr(e.TerminationDate),
		IsActive:        e.IsActive(),
		Roles:           []dto.RoleAssignmentResponse{},
		NameHistory:     []dto.NameHistoryResponse{},
	}
	if e.Group != nil {
		detail.Group = &dto.GroupRef{ID: e.Group.ID, Name: e.Group.Name}
	}
	for i := range e.FunctionRoles {
		detail.Roles = append(detail.Roles, toRoleAssignmentResponse(&e.FunctionRoles[i]))
	}
	for i := range e.NameHistory {
		detail.NameHistory = append(detail.NameHistory, toNameHistoryResponse(&e.NameHistory[i]))
	}
	return detail
}
