package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-kanri/internal/dto"
	"shift-kanri/internal/model"
	"shift-kanri/internal/repository"
)

// ── エクスポートモジュール業務エラー ──

var (
	ErrExportNoShifts     = errors.New("対象期間にシフトがありません")
	ErrExportGenerateFail = errors.New("ファイル生成に失敗しました")
)

// ExportService エクスポート業務インタフェース
//
// 設計メモ:
//   - 月次シフト表を Excel (.xlsx)、従業員別シフトを iCalendar (.ics) で出力する
//   - 生成結果は bytes.Buffer で返し、Handler 層がレスポンスヘッダを設定して書き出す
type ExportService interface {
	// ExportMonthlyXLSX 月次シフト表を Excel 形式で出力する
	ExportMonthlyXLSX(ctx context.Context, req *dto.ShiftCalendarRequest) (*bytes.Buffer, string, error)
	// ExportEmployeeICS 従業員1名の月間シフトを iCalendar 形式で出力する
	ExportEmployeeICS(ctx context.Context, employeeID uint, year, month int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	shift  ShiftService
	logger *zap.Logger
}

// NewExportService ExportService を作成する
func NewExportService(repo *repository.Repository, shift ShiftService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, shift: shift, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportMonthlyXLSX — 月次シフト表
// ═══════════════════════════════════════════════════════════
//
// 出力形式:
//   - Sheet "シフト表"
//   - 行: グループごとに従業員1名1行
//   - 列: グループ / 氏名 / 1日〜月末日
//   - セル: シフトコード、無ければ開始-終了時刻、休暇は記号

func (s *exportService) ExportMonthlyXLSX(ctx context.Context, req *dto.ShiftCalendarRequest) (*bytes.Buffer, string, error) {
	cal, err := s.shift.Calendar(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "シフト表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 16)
	lastCol, _ := excelize.ColumnNumberToName(2 + cal.DaysInMonth)
	f.SetColWidth(sheetName, "C", lastCol, 6)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// タイトル行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%d年%d月 シフト表", cal.Year, cal.Month))
	f.MergeCell(sheetName, "A1", fmt.Sprintf("%s1", lastCol))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// ヘッダ行
	row := 2
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "グループ")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), "氏名")
	for d := 1; d <= cal.DaysInMonth; d++ {
		col, _ := excelize.ColumnNumberToName(2 + d)
		f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), d)
	}

	// データ行
	row = 3
	for _, g := range cal.Groups {
		for _, e := range g.Employees {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), g.Name)
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), e.Name)
			for _, sh := range e.Shifts {
				d, err := time.Parse(model.DateFormat, sh.Date)
				if err != nil {
					continue
				}
				col, _ := excelize.ColumnNumberToName(2 + d.Day())
				f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), cellTextFor(&sh))
			}
			row++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("Excel 書き出しに失敗", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("シフト表_%d-%02d.xlsx", cal.Year, cal.Month)
	return buf, filename, nil
}

func cellTextFor(sh *dto.CalendarShift) string {
	switch {
	case sh.IsHoliday:
		return "休"
	case sh.IsPaidLeave:
		return "有"
	case sh.ShiftCode != nil && *sh.ShiftCode != "":
		return *sh.ShiftCode
	case sh.StartTime != nil && sh.EndTime != nil:
		return fmt.Sprintf("%s-%s", *sh.StartTime, *sh.EndTime)
	default:
		return "-"
	}
}

// ═══════════════════════════════════════════════════════════
// ExportEmployeeICS — 従業員別シフトカレンダー
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportEmployeeICS(ctx context.Context, employeeID uint, year, month int) (*bytes.Buffer, string, error) {
	employee, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrEmployeeNotFound
		}
		s.logger.Error("従業員取得に失敗", zap.Uint("employee_id", employeeID), zap.Error(err))
		return nil, "", err
	}

	now := time.Now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	shifts, err := s.repo.Shift.ListByEmployeeIDs(ctx, []uint{employeeID}, first, last)
	if err != nil {
		s.logger.Error("シフト取得に失敗", zap.Uint("employee_id", employeeID), zap.Error(err))
		return nil, "", err
	}
	if len(shifts) == 0 {
		return nil, "", ErrExportNoShifts
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shift-kanri//JP")

	for i := range shifts {
		sh := &shifts[i]
		event := cal.AddEvent(fmt.Sprintf("shift-%d@shift-kanri", sh.ID))
		event.SetDtStampTime(now)
		event.SetSummary(icsSummaryFor(employee, sh))

		start, end, ok := shiftTimesFor(sh)
		if ok {
			event.SetStartAt(start)
			event.SetEndAt(end)
		} else {
			// 時刻のないシフト・休暇は終日イベント
			event.SetAllDayStartAt(sh.ShiftDate)
			event.SetAllDayEndAt(sh.ShiftDate.AddDate(0, 0, 1))
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("shift_%d_%d-%02d.ics", employeeID, year, month)
	return buf, filename, nil
}

func icsSummaryFor(e *model.Employee, sh *model.Shift) string {
	switch {
	case sh.IsHoliday:
		return fmt.Sprintf("%s 休日", e.Name)
	case sh.IsPaidLeave:
		return fmt.Sprintf("%s 有給", e.Name)
	case sh.ShiftCode != nil && *sh.ShiftCode != "":
		return fmt.Sprintf("%s シフト %s", e.Name, *sh.ShiftCode)
	default:
		return fmt.Sprintf("%s シフト", e.Name)
	}
}

// shiftTimesFor "HH:MM" の開始・終了をシフト日付に合成する。
// 終了が開始より前なら日付跨ぎとみなして翌日扱い
func shiftTimesFor(sh *model.Shift) (time.Time, time.Time, bool) {
	if sh.StartTime == nil || sh.EndTime == nil {
		return time.Time{}, time.Time{}, false
	}
	start, err1 := time.Parse("15:04", *sh.StartTime)
	end, err2 := time.Parse("15:04", *sh.EndTime)
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}
	d := sh.ShiftDate
	startAt := time.Date(d.Year(), d.Month(), d.Day(), start.Hour(), start.Minute(), 0, 0, time.UTC)
	endAt := time.Date(d.Year(), d.Month(), d.Day(), end.Hour(), end.Minute(), 0, 0, time.UTC)
	if !endAt.After(startAt) {
		endAt = endAt.AddDate(0, 0, 1)
	}
	return startAt, endAt, true
}
