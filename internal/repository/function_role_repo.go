package repository

import (
	"context"

	"gorm.io/gorm"

	"shift-kanri/internal/model"
)

// FunctionRoleRepository 役割マスタデータアクセスインタフェース
type FunctionRoleRepository interface {
	GetByID(ctx context.Context, id uint) (*model.FunctionRole, error)
	ListActive(ctx context.Context) ([]model.FunctionRole, error)
}

type functionRoleRepo struct {
	db *gorm.DB
}

func NewFunctionRoleRepo(db *gorm.DB) FunctionRoleRepository {
	return &functionRoleRepo{db: db}
}

func (r *functionRoleRepo) GetByID(ctx context.Context, id uint) (*model.FunctionRole, error) {
	var role model.FunctionRole
	err := r.db.WithContext(ctx).First(&role, id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *functionRoleRepo) ListActive(ctx context.Context) ([]model.FunctionRole, error) {
	var roles []model.FunctionRole
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&roles).Error
	return roles, err
}
