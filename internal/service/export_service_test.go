package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"shift-kanri/internal/dto"
	"shift-kanri/internal/model"
)

func setupExportTest(t *testing.T) (ExportService, ShiftService, uint) {
	t.Helper()
	repo, groupRepo, employeeRepo, _, _, _ := newTestRepository()

	group := &model.Group{Name: "サポート1"}
	if err := groupRepo.Create(context.Background(), group); err != nil {
		t.Fatalf("グループ作成に失敗: %v", err)
	}
	employee := &model.Employee{Name: "山田 太郎", GroupID: group.ID}
	initial := &model.EmployeeNameHistory{Name: "山田 太郎", ValidFrom: mustDate("2024-01-01"), IsCurrent: true}
	if err := employeeRepo.Create(context.Background(), employee, initial); err != nil {
		t.Fatalf("従業員作成に失敗: %v", err)
	}

	shiftSvc := NewShiftService(repo, zap.NewNop())
	return NewExportService(repo, shiftSvc, zap.NewNop()), shiftSvc, employee.ID
}

func TestExportService_ExportMonthlyXLSX(t *testing.T) {
	svc, shiftSvc, employeeID := setupExportTest(t)

	createTestShift(t, shiftSvc, employeeID, "2024-06-03", "A")

	buf, filename, err := svc.ExportMonthlyXLSX(context.Background(), &dto.ShiftCalendarRequest{Year: 2024, Month: 6})
	if err != nil {
		t.Fatalf("ExportMonthlyXLSX は成功するはず: %v", err)
	}
	if filename != "シフト表_2024-06.xlsx" {
		t.Errorf("ファイル名が一致しない: %s", filename)
	}
	if buf.Len() == 0 {
		t.Error("生成結果が空")
	}
	// xlsx は zip コンテナ
	if !strings.HasPrefix(buf.String(), "PK") {
		t.Error("xlsx (zip) 形式のはず")
	}
}

func TestExportService_ExportMonthlyXLSX_GroupNotFound(t *testing.T) {
	svc, _, _ := setupExportTest(t)

	unknown := uint(999)
	_, _, err := svc.ExportMonthlyXLSX(context.Background(), &dto.ShiftCalendarRequest{Year: 2024, Month: 6, Group: &unknown})
	if !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("ErrGroupNotFound のはず: %v", err)
	}
}

func TestExportService_ExportEmployeeICS(t *testing.T) {
	svc, shiftSvc, employeeID := setupExportTest(t)

	createTestShift(t, shiftSvc, employeeID, "2024-06-03", "A")
	// 時刻なしの休暇は終日イベント
	if _, err := shiftSvc.Create(context.Background(), &dto.CreateShiftRequest{
		EmployeeID: employeeID,
		ShiftDate:  "2024-06-04",
		IsHoliday:  true,
	}); err != nil {
		t.Fatalf("シフト作成に失敗: %v", err)
	}

	buf, filename, err := svc.ExportEmployeeICS(context.Background(), employeeID, 2024, 6)
	if err != nil {
		t.Fatalf("ExportEmployeeICS は成功するはず: %v", err)
	}
	if want := "shift_1_2024-06.ics"; filename != want {
		t.Errorf("ファイル名が一致しない: %s", filename)
	}
	body := buf.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") {
		t.Error("VCALENDAR を含むはず")
	}
	if got := strings.Count(body, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("イベントは2件のはず: %d", got)
	}
	if !strings.Contains(body, "METHOD:PUBLISH") {
		t.Error("METHOD:PUBLISH を含むはず")
	}
}

func TestExportService_ExportEmployeeICS_NoShifts(t *testing.T) {
	svc, _, employeeID := setupExportTest(t)

	_, _, err := svc.ExportEmployeeICS(context.Background(), employeeID, 2024, 6)
	if !errors.Is(err, ErrExportNoShifts) {
		t.Errorf("ErrExportNoShifts のはず: %v", err)
	}
}

func TestExportService_ExportEmployeeICS_EmployeeNotFound(t *testing.T) {
	svc, _, _ := setupExportTest(t)

	_, _, err := svc.ExportEmployeeICS(context.Background(), 999, 2024, 6)
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("ErrEmployeeNotFound のはず: %v", err)
	}
}
