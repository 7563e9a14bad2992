package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"shift-kanri/internal/dto"
	"shift-kanri/internal/model"
)

func setupShiftTest(t *testing.T) (ShiftService, *mockShiftRepo, uint) {
	t.Helper()
	repo, groupRepo, employeeRepo, _, _, shiftRepo := newTestRepository()

	group := &model.Group{Name: "サポート1"}
	if err := groupRepo.Create(context.Background(), group); err != nil {
		t.Fatalf("グループ作成に失敗: %v", err)
	}
	employee := &model.Employee{Name: "山田 太郎", GroupID: group.ID}
	initial := &model.EmployeeNameHistory{Name: "山田 太郎", ValidFrom: mustDate("2024-01-01"), IsCurrent: true}
	if err := employeeRepo.Create(context.Background(), employee, initial); err != nil {
		t.Fatalf("従業員作成に失敗: %v", err)
	}

	svc := NewShiftService(repo, zap.NewNop())
	return svc, shiftRepo, employee.ID
}

func createTestShift(t *testing.T, svc ShiftService, employeeID uint, date, code string) *dto.ShiftResponse {
	t.Helper()
	shift, err := svc.Create(context.Background(), &dto.CreateShiftRequest{
		EmployeeID: employeeID,
		ShiftDate:  date,
		ShiftCode:  strPtr(code),
		StartTime:  strPtr("09:00"),
		EndTime:    strPtr("18:00"),
	})
	if err != nil {
		t.Fatalf("シフト作成に失敗: %v", err)
	}
	return shift
}

// ── Create ──

func TestShiftService_Create_Duplicate(t *testing.T) {
	svc, _, employeeID := setupShiftTest(t)

	createTestShift(t, svc, employeeID, "2024-06-03", "A")
	_, err := svc.Create(context.Background(), &dto.CreateShiftRequest{
		EmployeeID: employeeID,
		ShiftDate:  "2024-06-03",
	})
	if !errors.Is(err, ErrShiftDuplicate) {
		t.Errorf("ErrShiftDuplicate のはず: %v", err)
	}
}

func TestShiftService_Create_InvalidTime(t *testing.T) {
	svc, _, employeeID := setupShiftTest(t)

	_, err := svc.Create(context.Background(), &dto.CreateShiftRequest{
		EmployeeID: employeeID,
		ShiftDate:  "2024-06-03",
		StartTime:  strPtr("25:00"),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("ValidationError のはず: %v", err)
	}
}

// ── Update ──

func TestShiftService_Update_CapturesPreviousState(t *testing.T) {
	svc, shiftRepo, employeeID := setupShiftTest(t)

	shift := createTestShift(t, svc, employeeID, "2024-06-03", "A")

	updated, err := svc.Update(context.Background(), shift.ID, &dto.UpdateShiftRequest{
		ShiftUpdateFields: dto.ShiftUpdateFields{ShiftCode: strPtr("B")},
	})
	if err != nil {
		t.Fatalf("Update は成功するはず: %v", err)
	}
	if updated.ShiftCode == nil || *updated.ShiftCode != "B" {
		t.Errorf("更新後のシフトコードは B のはず: %v", updated.ShiftCode)
	}

	snapshot, err := shiftRepo.GetHistoryByVersion(context.Background(), shift.ID, 1)
	if err != nil {
		t.Fatalf("version 1 の履歴があるはず: %v", err)
	}
	if snapshot.ChangeType != model.ShiftChangeUpdate {
		t.Errorf("change_type は UPDATE のはず: %s", snapshot.ChangeType)
	}
	if snapshot.ShiftCode == nil || *snapshot.ShiftCode != "A" {
		t.Errorf("履歴は変更前の状態を捉えるはず: %v", snapshot.ShiftCode)
	}
}

func TestShiftService_Update_PartialFields(t *testing.T) {
	svc, _, employeeID := setupShiftTest(t)

	shift := createTestShift(t, svc, employeeID, "2024-06-03", "A")

	isRemote := true
	updated, err := svc.Update(context.Background(), shift.ID, &dto.UpdateShiftRequest{
		ShiftUpdateFields: dto.ShiftUpdateFields{IsRemote: &isRemote},
	})
	if err != nil {
		t.Fatalf("Update は成功するはず: %v", err)
	}
	if !updated.IsRemote {
		t.Error("is_remote が更新されるはず")
	}
	// 指定しなかったフィールドは変化しない
	if updated.ShiftCode == nil || *updated.ShiftCode != "A" {
		t.Errorf("shift_code は変化しないはず: %v", updated.ShiftCode)
	}
	if updated.StartTime == nil || *updated.StartTime != "09:00" {
		t.Errorf("start_time は変化しないはず: %v", updated.StartTime)
	}
}

func TestShiftService_Update_NotFound(t *testing.T) {
	svc, _, _ := setupShiftTest(t)

	_, err := svc.Update(context.Background(), 999, &dto.UpdateShiftRequest{})
	if !errors.Is(err, ErrShiftNotFound) {
		t.Errorf("ErrShiftNotFound のはず: %v", err)
	}
}

// ── Restore ──

func TestShiftService_Restore(t *testing.T) {
	svc, shiftRepo, employeeID := setupShiftTest(t)

	shift := createTestShift(t, svc, employeeID, "2024-06-03", "A")

	// A → B → C と更新し、version 1 (A) へ復元する
	if _, err := svc.Update(context.Background(), shift.ID, &dto.UpdateShiftRequest{
		ShiftUpdateFields: dto.ShiftUpdateFields{ShiftCode: strPtr("B")},
	}); err != nil {
		t.Fatalf("Update に失敗: %v", err)
	}
	if _, err := svc.Update(context.Background(), shift.ID, &dto.UpdateShiftRequest{
		ShiftUpdateFields: dto.ShiftUpdateFields{ShiftCode: strPtr("C")},
	}); err != nil {
		t.Fatalf("Update に失敗: %v", err)
	}

	restored, err := svc.Restore(context.Background(), shift.ID, 1)
	if err != nil {
		t.Fatalf("Restore は成功するはず: %v", err)
	}
	if restored.ShiftCode == nil || *restored.ShiftCode != "A" {
		t.Errorf("復元後のシフトコードは A のはず: %v", restored.ShiftCode)
	}

	// 復元は巻き戻しではなく新バージョンとして記録される
	v3, err := shiftRepo.GetHistoryByVersion(context.Background(), shift.ID, 3)
	if err != nil {
		t.Fatalf("復元は version 3 を積むはず: %v", err)
	}
	if v3.ShiftCode == nil || *v3.ShiftCode != "C" {
		t.Errorf("version 3 は復元直前の状態 C を捉えるはず: %v", v3.ShiftCode)
	}
	if v3.Note == nil || *v3.Note != "Version 1 からの復元" {
		t.Errorf("復元ノートが生成されるはず: %v", v3.Note)
	}

	// 既存の履歴はそのまま残る
	if _, err := shiftRepo.GetHistoryByVersion(context.Background(), shift.ID, 1); err != nil {
		t.Errorf("version 1 は消えないはず: %v", err)
	}
	if _, err := shiftRepo.GetHistoryByVersion(context.Background(), shift.ID, 2); err != nil {
		t.Errorf("version 2 は消えないはず: %v", err)
	}
}

func TestShiftService_Restore_VersionNotFound(t *testing.T) {
	svc, _, employeeID := setupShiftTest(t)

	shift := createTestShift(t, svc, employeeID, "2024-06-03", "A")

	_, err := svc.Restore(context.Background(), shift.ID, 5)
	if !errors.Is(err, ErrShiftVersionNotFound) {
		t.Errorf("ErrShiftVersionNotFound のはず: %v", err)
	}
}

func TestShiftService_VersionsNotReusedAfterHistoryDelete(t *testing.T) {
	svc, shiftRepo, employeeID := setupShiftTest(t)

	shift := createTestShift(t, svc, employeeID, "2024-06-03", "A")

	if _, err := svc.Update(context.Background(), shift.ID, &dto.UpdateShiftRequest{
		ShiftUpdateFields: dto.ShiftUpdateFields{ShiftCode: strPtr("B")},
	}); err != nil {
		t.Fatalf("Update に失敗: %v", err)
	}
	if _, err := svc.Update(context.Background(), shift.ID, &dto.UpdateShiftRequest{
		ShiftUpdateFields: dto.ShiftUpdateFields{ShiftCode: strPtr("C")},
	}); err != nil {
		t.Fatalf("Update に失敗: %v", err)
	}

	// 最新の履歴行 (version 2) を消しても次の採番は 3 のまま
	v2, _ := shiftRepo.GetHistoryByVersion(context.Background(), shift.ID, 2)
	if err := svc.DeleteHistory(context.Background(), v2.ID); err != nil {
		t.Fatalf("DeleteHistory に失敗: %v", err)
	}

	if _, err := svc.Update(context.Background(), shift.ID, &dto.UpdateShiftRequest{
		ShiftUpdateFields: dto.ShiftUpdateFields{ShiftCode: strPtr("D")},
	}); err != nil {
		t.Fatalf("Update に失敗: %v", err)
	}
	if _, err := shiftRepo.GetHistoryByVersion(context.Background(), shift.ID, 3); err != nil {
		t.Errorf("削除後も version は単調増加のはず: %v", err)
	}
	if _, err := shiftRepo.GetHistoryByVersion(context.Background(), shift.ID, 2); err == nil {
		t.Error("version 2 は復活しないはず")
	}
}

// ── BulkUpdate ──

func TestShiftService_BulkUpdate_PartialFailure(t *testing.T) {
	svc, shiftRepo, employeeID := setupShiftTest(t)

	s1 := createTestShift(t, svc, employeeID, "2024-06-03", "A")
	s2 := createTestShift(t, svc, employeeID, "2024-06-04", "A")

	isHoliday := true
	resp, err := svc.BulkUpdate(context.Background(), &dto.BulkUpdateShiftsRequest{
		ShiftIDs: []uint{s1.ID, 999, s2.ID},
		Updates:  dto.ShiftUpdateFields{IsHoliday: &isHoliday},
	})
	if err != nil {
		t.Fatalf("BulkUpdate は成功するはず: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("成功は2件のはず: %d", resp.Count)
	}
	if len(resp.FailedIDs) != 1 || resp.FailedIDs[0] != 999 {
		t.Errorf("失敗 ID は [999] のはず: %v", resp.FailedIDs)
	}

	// 失敗があっても適用済み分は巻き戻らず、個別に履歴が積まれる
	for _, id := range []uint{s1.ID, s2.ID} {
		updated, _ := shiftRepo.GetByID(context.Background(), id)
		if !updated.IsHoliday {
			t.Errorf("shift %d は更新済みのはず", id)
		}
		if _, err := shiftRepo.GetHistoryByVersion(context.Background(), id, 1); err != nil {
			t.Errorf("shift %d の履歴があるはず: %v", id, err)
		}
	}
}

// ── Delete / 履歴一覧 ──

func TestShiftService_Delete_RecordsFinalState(t *testing.T) {
	svc, shiftRepo, employeeID := setupShiftTest(t)

	shift := createTestShift(t, svc, employeeID, "2024-06-03", "A")

	if err := svc.Delete(context.Background(), shift.ID, nil); err != nil {
		t.Fatalf("Delete は成功するはず: %v", err)
	}
	if _, err := shiftRepo.GetByID(context.Background(), shift.ID); err == nil {
		t.Error("シフト本体は消えるはず")
	}

	snapshot, err := shiftRepo.GetHistoryByVersion(context.Background(), shift.ID, 1)
	if err != nil {
		t.Fatalf("DELETE スナップショットがあるはず: %v", err)
	}
	if snapshot.ChangeType != model.ShiftChangeDelete {
		t.Errorf("change_type は DELETE のはず: %s", snapshot.ChangeType)
	}
	if snapshot.ShiftCode == nil || *snapshot.ShiftCode != "A" {
		t.Errorf("最終状態を捉えるはず: %v", snapshot.ShiftCode)
	}
}

func TestShiftService_ListHistory_DeletedShiftHasNoCurrent(t *testing.T) {
	svc, _, employeeID := setupShiftTest(t)

	kept := createTestShift(t, svc, employeeID, "2024-06-03", "A")
	removed := createTestShift(t, svc, employeeID, "2024-06-04", "B")

	if _, err := svc.Update(context.Background(), kept.ID, &dto.UpdateShiftRequest{
		ShiftUpdateFields: dto.ShiftUpdateFields{ShiftCode: strPtr("C")},
	}); err != nil {
		t.Fatalf("Update に失敗: %v", err)
	}
	if err := svc.Delete(context.Background(), removed.ID, nil); err != nil {
		t.Fatalf("Delete に失敗: %v", err)
	}

	rows, total, err := svc.ListHistory(context.Background(), &dto.ShiftHistoryListRequest{})
	if err != nil {
		t.Fatalf("ListHistory は成功するはず: %v", err)
	}
	if total != 2 {
		t.Fatalf("履歴は2件のはず: %d", total)
	}
	for _, row := range rows {
		switch row.ShiftID {
		case kept.ID:
			if row.Current == nil {
				t.Error("現存シフトの履歴には現在状態が付くはず")
			}
		case removed.ID:
			if row.Current != nil {
				t.Error("削除済みシフトの履歴に現在状態は付かないはず")
			}
		}
		if row.Employee.Name != "山田 太郎" {
			t.Errorf("従業員名が埋まるはず: %s", row.Employee.Name)
		}
	}
}

func TestShiftService_ListHistory_FilterByType(t *testing.T) {
	svc, _, employeeID := setupShiftTest(t)

	s1 := createTestShift(t, svc, employeeID, "2024-06-03", "A")
	s2 := createTestShift(t, svc, employeeID, "2024-06-04", "B")
	if _, err := svc.Update(context.Background(), s1.ID, &dto.UpdateShiftRequest{
		ShiftUpdateFields: dto.ShiftUpdateFields{ShiftCode: strPtr("C")},
	}); err != nil {
		t.Fatalf("Update に失敗: %v", err)
	}
	if err := svc.Delete(context.Background(), s2.ID, nil); err != nil {
		t.Fatalf("Delete に失敗: %v", err)
	}

	rows, total, err := svc.ListHistory(context.Background(), &dto.ShiftHistoryListRequest{Type: "DELETE"})
	if err != nil {
		t.Fatalf("ListHistory は成功するはず: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("DELETE は1件のはず: total=%d", total)
	}
	if rows[0].ChangeType != model.ShiftChangeDelete {
		t.Errorf("change_type は DELETE のはず: %s", rows[0].ChangeType)
	}
}

func TestShiftService_DeleteHistory_NotFound(t *testing.T) {
	svc, _, _ := setupShiftTest(t)

	if err := svc.DeleteHistory(context.Background(), 999); !errors.Is(err, ErrShiftHistoryNotFound) {
		t.Errorf("ErrShiftHistoryNotFound のはず: %v", err)
	}
}

// ── カレンダー ──

func TestShiftService_Calendar(t *testing.T) {
	svc, _, employeeID := setupShiftTest(t)

	createTestShift(t, svc, employeeID, "2024-06-03", "A")
	createTestShift(t, svc, employeeID, "2024-06-10", "B")
	// 範囲外の月
	createTestShift(t, svc, employeeID, "2024-07-01", "C")

	cal, err := svc.Calendar(context.Background(), &dto.ShiftCalendarRequest{Year: 2024, Month: 6})
	if err != nil {
		t.Fatalf("Calendar は成功するはず: %v", err)
	}
	if cal.DaysInMonth != 30 {
		t.Errorf("2024年6月は30日のはず: %d", cal.DaysInMonth)
	}
	if len(cal.Groups) != 1 || len(cal.Groups[0].Employees) != 1 {
		t.Fatalf("グループ1件・従業員1名のはず: %+v", cal.Groups)
	}
	shifts := cal.Groups[0].Employees[0].Shifts
	if len(shifts) != 2 {
		t.Errorf("6月のシフトは2件のはず: %d", len(shifts))
	}
}

func TestShiftService_Calendar_GroupNotFound(t *testing.T) {
	svc, _, _ := setupShiftTest(t)

	unknown := uint(999)
	_, err := svc.Calendar(context.Background(), &dto.ShiftCalendarRequest{Year: 2024, Month: 6, Group: &unknown})
	if !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("ErrGroupNotFound のはず: %v", err)
	}
}
