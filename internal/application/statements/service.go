package statements

import (
	"bytes"
	"context"
	"fmt"

	"treasury-backend/internal/application/archive"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Service renders archives and consolidated reports as spreadsheet
// documents for download.
type Service struct {
	Archives          *archive.Service
	InstitutionName   string
	InstitutionDetail string
}

const sheetName = "Sheet1"

// ArchiveStatement renders one monthly archive as an .xlsx statement:
// institution header, period summary and the per-fund closing table.
func (s *Service) ArchiveStatement(ctx context.Context, archiveID uint) ([]byte, string, error) {
	detail, err := s.Archives.GetArchiveDetail(ctx, archiveID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 2})

	f.MergeCell(sheetName, "A1", "D1")
	f.SetCellValue(sheetName, "A1", s.InstitutionName)
	f.SetCellStyle(sheetName, "A1", "D1", titleStyle)
	if s.InstitutionDetail != "" {
		f.MergeCell(sheetName, "A2", "D2")
		f.SetCellValue(sheetName, "A2", s.InstitutionDetail)
	}

	f.SetCellValue(sheetName, "A4", "Monthly statement")
	f.SetCellValue(sheetName, "B4", detail.MonthYear)
	f.SetCellValue(sheetName, "A5", "Congregation")
	f.SetCellValue(sheetName, "B5", detail.BranchName)
	f.SetCellValue(sheetName, "A6", "Archived at")
	f.SetCellValue(sheetName, "B6", detail.ArchivedAt.Format("2006-01-02 15:04"))

	f.SetCellValue(sheetName, "A8", "Total tithes")
	setMoney(f, "B8", detail.TotalTithes, moneyStyle)
	f.SetCellValue(sheetName, "A9", "Total offerings")
	setMoney(f, "B9", detail.TotalOfferings, moneyStyle)
	f.SetCellValue(sheetName, "A10", "Final balance")
	setMoney(f, "B10", detail.FinalBalance, moneyStyle)

	row := 12
	for col, title := range []string{"Fund", "Initial balance", "Final balance"} {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		f.SetCellValue(sheetName, cell, title)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	for _, fund := range detail.Funds {
		row++
		nameCell, _ := excelize.CoordinatesToCellName(1, row)
		initCell, _ := excelize.CoordinatesToCellName(2, row)
		finalCell, _ := excelize.CoordinatesToCellName(3, row)
		f.SetCellValue(sheetName, nameCell, fund.FundName)
		setMoney(f, initCell, fund.InitialBalance, moneyStyle)
		setMoney(f, finalCell, fund.FinalBalance, moneyStyle)
	}

	f.SetColWidth(sheetName, "A", "A", 32)
	f.SetColWidth(sheetName, "B", "D", 18)

	buf, err := writeBuffer(f)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("statement-%s-%s.xlsx", detail.MonthYear, slug(detail.BranchName))
	return buf, filename, nil
}

// BranchBalancesReport renders the consolidated per-branch totals for one
// archived period.
func (s *Service) BranchBalancesReport(ctx context.Context, month string) ([]byte, string, error) {
	totals, err := s.Archives.BranchTotalsForMonth(ctx, month)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 2})

	f.MergeCell(sheetName, "A1", "B1")
	f.SetCellValue(sheetName, "A1", s.InstitutionName)
	f.SetCellStyle(sheetName, "A1", "B1", titleStyle)
	f.SetCellValue(sheetName, "A3", "Consolidated balances")
	f.SetCellValue(sheetName, "B3", month)

	row := 5
	f.SetCellValue(sheetName, "A5", "Congregation")
	f.SetCellValue(sheetName, "B5", "Total balance")
	f.SetCellStyle(sheetName, "A5", "B5", headerStyle)

	grand := decimal.Zero
	for _, t := range totals {
		row++
		nameCell, _ := excelize.CoordinatesToCellName(1, row)
		totalCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(sheetName, nameCell, t.BranchName)
		setMoney(f, totalCell, t.TotalBalance, moneyStyle)
		grand = grand.Add(t.TotalBalance)
	}
	row += 2
	nameCell, _ := excelize.CoordinatesToCellName(1, row)
	totalCell, _ := excelize.CoordinatesToCellName(2, row)
	f.SetCellValue(sheetName, nameCell, "Grand total")
	f.SetCellStyle(sheetName, nameCell, nameCell, headerStyle)
	setMoney(f, totalCell, grand, moneyStyle)

	f.SetColWidth(sheetName, "A", "A", 32)
	f.SetColWidth(sheetName, "B", "B", 18)

	buf, err := writeBuffer(f)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("balances-%s.xlsx", month), nil
}

func setMoney(f *excelize.File, cell string, v decimal.Decimal, style int) {
	amount, _ := v.Float64()
	f.SetCellValue(sheetName, cell, amount)
	f.SetCellStyle(sheetName, cell, cell, style)
}

func writeBuffer(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func slug(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
		case r == ' ' || r == '-' || r == '_':
			out = append(out, '-')
		}
	}
	return string(out)
}
