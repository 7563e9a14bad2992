package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-kanri/internal/dto"
	"shift-kanri/internal/model"
	"shift-kanri/internal/repository"
)

// ── グループモジュール業務エラー ──

var (
	ErrGroupNotFound   = errors.New("グループが見つかりません")
	ErrGroupNameExists = errors.New("同じ名前のグループが既に存在します")
)

// GroupInUseError 在籍従業員が残っているグループの削除エラー
type GroupInUseError struct {
	Count int64
}

func (e *GroupInUseError) Error() string {
	return fmt.Sprintf("このグループには%d名の従業員が所属しています。削除できません。", e.Count)
}

// GroupService グループ業務インタフェース
type GroupService interface {
	Create(ctx context.Context, req *dto.GroupRequest) (*dto.GroupResponse, error)
	List(ctx context.Context) ([]dto.GroupResponse, error)
	Update(ctx context.Context, id uint, req *dto.GroupRequest) (*dto.GroupResponse, error)
	Delete(ctx context.Context, id uint) error
}

type groupService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGroupService GroupService を作成する
func NewGroupService(repo *repository.Repository, logger *zap.Logger) GroupService {
	return &groupService{repo: repo, logger: logger}
}

func (s *groupService) Create(ctx context.Context, req *dto.GroupRequest) (*dto.GroupResponse, error) {
	existing, err := s.repo.Group.GetByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("グループ検索に失敗", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrGroupNameExists
	}

	group := &model.Group{Name: req.Name}
	if err := s.repo.Group.Create(ctx, group); err != nil {
		s.logger.Error("グループ作成に失敗", zap.Error(err))
		return nil, err
	}
	return &dto.GroupResponse{ID: group.ID, Name: group.Name}, nil
}

func (s *groupService) List(ctx context.Context) ([]dto.GroupResponse, error) {
	groups, err := s.repo.Group.List(ctx)
	if err != nil {
		s.logger.Error("グループ一覧取得に失敗", zap.Error(err))
		return nil, err
	}

	result := make([]dto.GroupResponse, 0, len(groups))
	for _, g := range groups {
		count, err := s.repo.Group.CountActiveEmployees(ctx, g.ID)
		if err != nil {
			s.logger.Error("在籍人数取得に失敗", zap.Uint("group_id", g.ID), zap.Error(err))
			return nil, err
		}
		result = append(result, dto.GroupResponse{
			ID:            g.ID,
			Name:          g.Name,
			EmployeeCount: count,
		})
	}
	return result, nil
}

func (s *groupService) Update(ctx context.Context, id uint, req *dto.GroupRequest) (*dto.GroupResponse, error) {
	group, err := s.repo.Group.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("グループ取得に失敗", zap.Uint("group_id", id), zap.Error(err))
		return nil, err
	}

	if group.Name != req.Name {
		existing, err := s.repo.Group.GetByName(ctx, req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("グループ検索に失敗", zap.Error(err))
			return nil, err
		}
		if existing != nil {
			return nil, ErrGroupNameExists
		}
	}

	group.Name = req.Name
	if err := s.repo.Group.Update(ctx, group); err != nil {
		s.logger.Error("グループ更新に失敗", zap.Uint("group_id", id), zap.Error(err))
		return nil, err
	}

	count, err := s.repo.Group.CountActiveEmployees(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.GroupResponse{ID: group.ID, Name: group.Name, EmployeeCount: count}, nil
}

func (s *groupService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Group.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		s.logger.Error("グループ取得に失敗", zap.Uint("group_id", id), zap.Error(err))
		return err
	}

	count, err := s.repo.Group.CountActiveEmployees(ctx, id)
	if err != nil {
		s.logger.Error("在籍人数取得に失敗", zap.Uint("group_id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return &GroupInUseError{Count: count}
	}

	if err := s.repo.Group.Delete(ctx, id); err != nil {
		s.logger.Error("グループ削除に失敗", zap.Uint("group_id", id), zap.Error(err))
		return err
	}
	return nil
}
