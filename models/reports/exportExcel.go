package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/utils"
	"github.com/xuri/excelize/v2"
)

// The fixed 21-column export schema. Column order matches the dashboard
// table; both CSV and XLSX bodies re-serialize the filtered, sorted set
// without reordering.
var exportHeaders = []string{
	"S.No", "Booking Date", "Project", "SPG/Praneeth", "Token", "Buyer Name",
	"Sale Person Name", "CRM Name", "SOL", "Type of Sale", "Land (sq yards)",
	"SBUA (sq feet)", "Facing", "Base sq ft price", "Amenities and Premiums",
	"Total Sale Price", "Amount Received", "Balance Amount",
	"Balance to be received by plan approval", "Notes",
	"Balance to be received during execution",
}

const exportSheet = "Dashboard"

func exportCells(r *DashboardRow) []string {
	bookingDate := ""
	if r.BookingDate != nil {
		bookingDate = r.BookingDate.Format("2006-01-02")
	}
	return []string{
		fmt.Sprint(r.SNo),
		bookingDate,
		r.Project,
		r.SpgPraneeth,
		fmt.Sprint(r.Token),
		r.BuyerName,
		r.SalePersonName,
		r.CrmName,
		r.Sol,
		r.TypeOfSale,
		r.LandSqyards.String(),
		r.SbuaSqft.String(),
		r.Facing,
		utils.FormatCurrency(r.BaseSqftPrice),
		utils.FormatCurrency(r.AmenitiesAndPremiums),
		utils.FormatCurrency(r.TotalSalePrice),
		utils.FormatCurrency(r.AmountReceived),
		utils.FormatCurrency(r.BalanceAmount),
		utils.FormatCurrency(r.BalanceByPlanApproval),
		r.Notes,
		utils.FormatCurrency(r.BalanceDuringExecution),
	}
}

// ExportCSV renders the rows as a CSV byte stream, header row first.
func ExportCSV(rows []*DashboardRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(exportCells(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportXLSX renders the rows as a single-sheet workbook.
func ExportXLSX(rows []*DashboardRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, r := range rows {
		for col, value := range exportCells(r) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
