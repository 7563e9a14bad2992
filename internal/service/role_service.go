package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-kanri/internal/dto"
	"shift-kanri/internal/model"
	"shift-kanri/internal/repository"
	appErrors "shift-kanri/pkg/errors"
)

// ── 役割割当モジュール業務エラー ──

var (
	ErrFunctionRoleNotFound   = errors.New("役割が見つかりません")
	ErrRoleAssignmentNotFound = errors.New("役割割当が見つかりません")
	ErrRoleConflict           = errors.New("この従業員には同じ役割カテゴリの現行レコードが既に存在します")
)

// RoleService 役割割当業務インタフェース。
// カテゴリ（role_type）ごとに現行割当は高々1件。新規割当が
// 既存の現行割当を開始日前日で自動的に閉じる。
type RoleService interface {
	ListFunctionRoles(ctx context.Context) ([]dto.FunctionRoleResponse, error)
	ListByEmployee(ctx context.Context, employeeID uint) (*dto.EmployeeRolesResponse, error)
	Assign(ctx context.Context, employeeID uint, req *dto.RoleAssignRequest) (*dto.RoleAssignmentResponse, error)
	Edit(ctx context.Context, employeeID, assignmentID uint, req *dto.RoleEditRequest) (*dto.RoleAssignmentResponse, error)
	Delete(ctx context.Context, employeeID, assignmentID uint) error
}

type roleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRoleService RoleService を作成する
func NewRoleService(repo *repository.Repository, logger *zap.Logger) RoleService {
	return &roleService{repo: repo, logger: logger}
}

func (s *roleService) ListFunctionRoles(ctx context.Context) ([]dto.FunctionRoleResponse, error) {
	roles, err := s.repo.FunctionRole.ListActive(ctx)
	if err != nil {
		s.logger.Error("役割マスタ取得に失敗", zap.Error(err))
		return nil, err
	}
	result := make([]dto.FunctionRoleResponse, 0, len(roles))
	for _, r := range roles {
		result = append(result, dto.FunctionRoleResponse{
			ID:       r.ID,
			RoleCode: r.RoleCode,
			RoleName: r.RoleName,
			RoleType: r.RoleType,
			IsActive: r.IsActive,
		})
	}
	return result, nil
}

func (s *roleService) ListByEmployee(ctx context.Context, employeeID uint) (*dto.EmployeeRolesResponse, error) {
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	assignments, err := s.repo.RoleAssignment.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("役割割当一覧取得に失敗", zap.Uint("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	resp := &dto.EmployeeRolesResponse{
		Current: []dto.RoleAssignmentResponse{},
		Past:    []dto.RoleAssignmentResponse{},
	}
	for i := range assignments {
		r := toRoleAssignmentResponse(&assignments[i])
		if assignments[i].EndDate == nil {
			resp.Current = append(resp.Current, r)
		} else {
			resp.Past = append(resp.Past, r)
		}
	}
	return resp, nil
}

// Assign 同カテゴリの現行割当を閉じて新しい割当を作成する。
// レコード確認と挿入の合間に別リクエストが割り込んだ場合は
// 部分一意制約が競合を検出し ErrRoleConflict として返す。
func (s *roleService) Assign(ctx context.Context, employeeID uint, req *dto.RoleAssignRequest) (*dto.RoleAssignmentResponse, error) {
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	role, err := s.repo.FunctionRole.GetByID(ctx, req.FunctionRoleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFunctionRoleNotFound
		}
		s.logger.Error("役割取得に失敗", zap.Uint("function_role_id", req.FunctionRoleID), zap.Error(err))
		return nil, err
	}
	startDate, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}

	assignment := &model.EmployeeFunctionRole{
		EmployeeID:     employeeID,
		FunctionRoleID: role.ID,
		RoleType:       role.RoleType,
		IsPrimary:      req.IsPrimary,
		StartDate:      startDate,
	}
	if err := s.repo.RoleAssignment.AssignWithClose(ctx, assignment); err != nil {
		if appErrors.IsDuplicateKey(err) {
			return nil, ErrRoleConflict
		}
		s.logger.Error("役割割当に失敗",
			zap.Uint("employee_id", employeeID), zap.String("role_type", role.RoleType), zap.Error(err))
		return nil, err
	}

	assignment.FunctionRole = role
	resp := toRoleAssignmentResponse(assignment)
	return &resp, nil
}

// Edit 部分更新。end_date はキーの有無が意味を持ち、
// 明示的な null 指定は割当の再オープンとしてそのまま反映する
// （同カテゴリの他レコードとの再検証は行わない）。
func (s *roleService) Edit(ctx context.Context, employeeID, assignmentID uint, req *dto.RoleEditRequest) (*dto.RoleAssignmentResponse, error) {
	if _, err := s.getOwnedAssignment(ctx, employeeID, assignmentID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.IsPrimary != nil {
		fields["is_primary"] = *req.IsPrimary
	}
	if req.StartDate != nil {
		d, err := parseDate("start_date", *req.StartDate)
		if err != nil {
			return nil, err
		}
		fields["start_date"] = d
	}
	if req.EndDateSet {
		if req.EndDate == nil {
			fields["end_date"] = nil
		} else {
			d, err := parseDate("end_date", *req.EndDate)
			if err != nil {
				return nil, err
			}
			fields["end_date"] = d
		}
	}

	if len(fields) > 0 {
		if err := s.repo.RoleAssignment.UpdateFields(ctx, assignmentID, fields); err != nil {
			if appErrors.IsDuplicateKey(err) {
				return nil, ErrRoleConflict
			}
			s.logger.Error("役割割当の更新に失敗", zap.Uint("assignment_id", assignmentID), zap.Error(err))
			return nil, err
		}
	}

	updated, err := s.repo.RoleAssignment.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	resp := toRoleAssignmentResponse(updated)
	return &resp, nil
}

// Delete 無条件削除。役割割当は氏名履歴と違い連続分割の修復を必要としない
func (s *roleService) Delete(ctx context.Context, employeeID, assignmentID uint) error {
	if _, err := s.getOwnedAssignment(ctx, employeeID, assignmentID); err != nil {
		return err
	}
	if err := s.repo.RoleAssignment.Delete(ctx, assignmentID); err != nil {
		s.logger.Error("役割割当の削除に失敗", zap.Uint("assignment_id", assignmentID), zap.Error(err))
		return err
	}
	return nil
}

func (s *roleService) ensureEmployee(ctx context.Context, employeeID uint) error {
	if _, err := s.repo.Employee.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		s.logger.Error("従業員取得に失敗", zap.Uint("employee_id", employeeID), zap.Error(err))
		return err
	}
	return nil
}

func (s *roleService) getOwnedAssignment(ctx context.Context, employeeID, assignmentID uint) (*model.EmployeeFunctionRole, error) {
	assignment, err := s.repo.RoleAssignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleAssignmentNotFound
		}
		s.logger.Error("役割割当取得に失敗", zap.Uint("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}
	if assignment.EmployeeID != employeeID {
		return nil, ErrRoleAssignmentNotFound
	}
	return assignment, nil
}

func toRoleAssignmentResponse(a *model.EmployeeFunctionRole) dto.RoleAssignmentResponse {
	resp := dto.RoleAssignmentResponse{
		ID:             a.ID,
		FunctionRoleID: a.FunctionRoleID,
		RoleType:       a.RoleType,
		IsPrimary:      a.IsPrimary,
		StartDate:      formatDate(a.StartDate),
		EndDate:        formatDatePtr(a.EndDate),
	}
	if a.FunctionRole != nil {
		resp.RoleName = a.FunctionRole.RoleName
		resp.RoleCode = a.FunctionRole.RoleCode
	}
	return resp
}
