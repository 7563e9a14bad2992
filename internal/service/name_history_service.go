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

// ── 氏名履歴モジュール業務エラー ──

var ErrNameHistoryNotFound = errors.New("氏名履歴が見つかりません")

// NameHistoryService 氏名履歴業務インタフェース。
// 従業員ごとの履歴は valid_from で時間を分割し、追加・編集・削除の
// いずれの後も「隙間なし・重なりなし・現行ちょうど1件」を保つ。
type NameHistoryService interface {
	List(ctx context.Context, employeeID uint) ([]dto.NameHistoryResponse, error)
	Append(ctx context.Context, employeeID uint, req *dto.NameChangeRequest) (*dto.NameHistoryResponse, error)
	Edit(ctx context.Context, employeeID, entryID uint, req *dto.NameChangeRequest) (*dto.NameHistoryResponse, error)
	Delete(ctx context.Context, employeeID, entryID uint) error
}

type nameHistoryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNameHistoryService NameHistoryService を作成する
func NewNameHistoryService(repo *repository.Repository, logger *zap.Logger) NameHistoryService {
	return &nameHistoryService{repo: repo, logger: logger}
}

func (s *nameHistoryService) List(ctx context.Context, employeeID uint) ([]dto.NameHistoryResponse, error) {
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	entries, err := s.repo.NameHistory.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("氏名履歴一覧取得に失敗", zap.Uint("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.NameHistoryResponse, 0, len(entries))
	for i := range entries {
		result = append(result, toNameHistoryResponse(&entries[i]))
	}
	return result, nil
}

// Append 現行レコードを閉じ、新しい現行レコードを追加し、従業員マスタへ反映する。
// 3ステップは1トランザクションで、途中状態は外部から観測されない。
func (s *nameHistoryService) Append(ctx context.Context, employeeID uint, req *dto.NameChangeRequest) (*dto.NameHistoryResponse, error) {
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	validFrom, err := parseDate("valid_from", req.ValidFrom)
	if err != nil {
		return nil, err
	}

	entry := &model.EmployeeNameHistory{
		EmployeeID: employeeID,
		Name:       req.Name,
		NameKana:   req.NameKana,
		ValidFrom:  validFrom,
		IsCurrent:  true,
		Note:       req.Note,
	}
	if err := s.repo.NameHistory.Append(ctx, entry); err != nil {
		s.logger.Error("氏名変更の追加に失敗",
			zap.Uint("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	resp := toNameHistoryResponse(entry)
	return &resp, nil
}

// Edit 履歴レコードの内容と valid_from を更新し、直前レコードの valid_to を
// 新しい valid_from の前日に付け替えて隣接を修復する。
// 現行レコードの編集時は従業員マスタの氏名も追従させる。
func (s *nameHistoryService) Edit(ctx context.Context, employeeID, entryID uint, req *dto.NameChangeRequest) (*dto.NameHistoryResponse, error) {
	entry, err := s.getOwnedEntry(ctx, employeeID, entryID)
	if err != nil {
		return nil, err
	}
	validFrom, err := parseDate("valid_from", req.ValidFrom)
	if err != nil {
		return nil, err
	}

	updated := *entry
	updated.Name = req.Name
	updated.NameKana = req.NameKana
	updated.ValidFrom = validFrom
	updated.Note = req.Note

	mutation := &repository.NameHistoryMutation{Update: &updated}

	prev, err := s.repo.NameHistory.FindPrevious(ctx, employeeID, validFrom, entryID)
	if err != nil {
		s.logger.Error("直前履歴の検索に失敗", zap.Uint("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	if prev != nil {
		closedTo := validFrom.AddDate(0, 0, -1)
		mutation.Neighbors = append(mutation.Neighbors, repository.NeighborPatch{
			ID:         prev.ID,
			SetValidTo: true,
			ValidTo:    &closedTo,
		})
	}
	if entry.IsCurrent {
		mutation.Mirror = &repository.MasterMirror{
			EmployeeID: employeeID,
			Name:       req.Name,
			NameKana:   req.NameKana,
		}
	}

	if err := s.repo.NameHistory.Apply(ctx, mutation); err != nil {
		s.logger.Error("氏名履歴の更新に失敗",
			zap.Uint("employee_id", employeeID), zap.Uint("entry_id", entryID), zap.Error(err))
		return nil, err
	}

	resp := toNameHistoryResponse(&updated)
	return &resp, nil
}

// Delete 履歴レコードを削除し、分割不変条件が崩れないよう隣接レコードを修復する。
//   - 現行レコードの削除: 残りの最新レコードを現行へ昇格しマスタへ反映。
//     残りがなければそのまま削除（氏名履歴が1件だけの従業員）。
//   - 過去レコードの削除: 前後が共に存在すれば前の valid_to を後の valid_from の
//     前日へ付け替えて橋渡し。後続がなければ前のレコードを現行へ昇格。
func (s *nameHistoryService) Delete(ctx context.Context, employeeID, entryID uint) error {
	entry, err := s.getOwnedEntry(ctx, employeeID, entryID)
	if err != nil {
		return err
	}

	mutation := &repository.NameHistoryMutation{DeleteID: &entry.ID}

	if entry.IsCurrent {
		latest, err := s.repo.NameHistory.FindLatestExcept(ctx, employeeID, entryID)
		if err != nil {
			s.logger.Error("残存履歴の検索に失敗", zap.Uint("employee_id", employeeID), zap.Error(err))
			return err
		}
		if latest != nil {
			mutation.Neighbors = append(mutation.Neighbors, repository.NeighborPatch{
				ID:          latest.ID,
				MakeCurrent: true,
			})
			mutation.Mirror = &repository.MasterMirror{
				EmployeeID: employeeID,
				Name:       latest.Name,
				NameKana:   latest.NameKana,
			}
		}
	} else {
		prev, err := s.repo.NameHistory.FindPrevious(ctx, employeeID, entry.ValidFrom, entryID)
		if err != nil {
			s.logger.Error("直前履歴の検索に失敗", zap.Uint("employee_id", employeeID), zap.Error(err))
			return err
		}
		next, err := s.repo.NameHistory.FindNext(ctx, employeeID, entry.ValidFrom, entryID)
		if err != nil {
			s.logger.Error("直後履歴の検索に失敗", zap.Uint("employee_id", employeeID), zap.Error(err))
			return err
		}
		switch {
		case prev != nil && next != nil:
			bridged := next.ValidFrom.AddDate(0, 0, -1)
			mutation.Neighbors = append(mutation.Neighbors, repository.NeighborPatch{
				ID:         prev.ID,
				SetValidTo: true,
				ValidTo:    &bridged,
			})
		case prev != nil:
			mutation.Neighbors = append(mutation.Neighbors, repository.NeighborPatch{
				ID:          prev.ID,
				MakeCurrent: true,
			})
			mutation.Mirror = &repository.MasterMirror{
				EmployeeID: employeeID,
				Name:       prev.Name,
				NameKana:   prev.NameKana,
			}
		}
		// prev が無い（最古レコードの削除）場合は修復不要
	}

	if err := s.repo.NameHistory.Apply(ctx, mutation); err != nil {
		s.logger.Error("氏名履歴の削除に失敗",
			zap.Uint("employee_id", employeeID), zap.Uint("entry_id", entryID), zap.Error(err))
		return err
	}
	return nil
}

func (s *nameHistoryService) ensureEmployee(ctx context.Context, employeeID uint) error {
	if _, err := s.repo.Employee.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		s.logger.Error("従業員取得に失敗", zap.Uint("employee_id", employeeID), zap.Error(err))
		return err
	}
	return nil
}

// getOwnedEntry 履歴を取得し、指定従業員のものであることを確認する
func (s *nameHistoryService) getOwnedEntry(ctx context.Context, employeeID, entryID uint) (*model.EmployeeNameHistory, error) {
	entry, err := s.repo.NameHistory.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNameHistoryNotFound
		}
		s.logger.Error("氏名履歴取得に失敗", zap.Uint("entry_id", entryID), zap.Error(err))
		return nil, err
	}
	if entry.EmployeeID != employeeID {
		return nil, ErrNameHistoryNotFound
	}
	return entry, nil
}

func toNameHistoryResponse(e *model.EmployeeNameHistory) dto.NameHistoryResponse {
	return dto.NameHistoryResponse{
		ID:        e.ID,
		Name:      e.Name,
		NameKana:  e.NameKana,
		ValidFrom: formatDate(e.ValidFrom),
		ValidTo:   formatDatePtr(e.ValidTo),
		IsCurrent: e.IsCurrent,
		Note:      e.Note,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}
