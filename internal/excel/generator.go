package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/freelance-ledger/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the earnings report workbook: a summary sheet with
// per-role totals and a sheet ranking the top clients.
func (g *Generator) Generate(report model.EarningsReport) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, report); err != nil {
		return nil, err
	}

	clientsSheet := "Top clients"
	if _, err := file.NewSheet(clientsSheet); err != nil {
		return nil, err
	}
	if err := g.writeClients(file, clientsSheet, report); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.EarningsReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Report")
	set("B1", "Earnings by profession")
	set("A2", "Period start")
	set("B2", formatDate(report.PeriodStart))
	set("A3", "Period end")
	set("B3", formatDate(report.PeriodEnd))
	set("A4", "Total earned")
	set("B4", sumRoleEarnings(report.ByRole))

	tableRow := 6
	set(fmt.Sprintf("A%d", tableRow), "Profession")
	set(fmt.Sprintf("B%d", tableRow), "Total earned")
	for i, row := range report.ByRole {
		set(fmt.Sprintf("A%d", tableRow+1+i), string(row.Role))
		set(fmt.Sprintf("B%d", tableRow+1+i), row.Total)
	}
	return nil
}

func (g *Generator) writeClients(file *excelize.File, sheet string, report model.EarningsReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Profile ID")
	set("B1", "Name")
	set("C1", "Total paid")
	for i, client := range report.TopClients {
		row := 2 + i
		set(fmt.Sprintf("A%d", row), client.ProfileID)
		set(fmt.Sprintf("B%d", row), client.Name)
		set(fmt.Sprintf("C%d", row), client.TotalPaid)
	}
	return nil
}

func sumRoleEarnings(rows []model.RoleEarnings) float64 {
	total := 0.0
	for _, row := range rows {
		total += row.Total
	}
	return total
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
