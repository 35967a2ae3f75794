package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/config"
	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/utils"
	"github.com/shopspring/decimal"
)

// DashboardFilter narrows and orders the sale projection. Year/Month apply
// to the booking date; empty fields filter nothing.
type DashboardFilter struct {
	Year           string
	Month          string
	CrmName        string
	SalePersonName string
	SpgPraneeth    string
	TypeOfSale     string
	SortBy         string
	SortDir        string
	Limit          int
}

// DashboardRow carries the full export column set plus the ledger-adjusted
// financial fields.
type DashboardRow struct {
	ID                     int              `json:"id"`
	SNo                    int              `gorm:"column:s_no" json:"s_no"`
	BookingDate            *time.Time       `json:"booking_date"`
	Project                string           `json:"project"`
	SpgPraneeth            string           `json:"spg_praneeth"`
	Token                  int              `json:"token"`
	BuyerName              string           `json:"buyer_name"`
	SalePersonName         string           `json:"sale_person_name"`
	CrmName                string           `json:"crm_name"`
	Sol                    string           `json:"sol"`
	TypeOfSale             string           `json:"type_of_sale"`
	LandSqyards            decimal.Decimal  `json:"land_sqyards"`
	SbuaSqft               decimal.Decimal  `json:"sbua_sqft"`
	Facing                 string           `json:"facing"`
	BaseSqftPrice          decimal.Decimal  `json:"base_sqft_price"`
	AmenitiesAndPremiums   decimal.Decimal  `json:"amenities_and_premiums"`
	TotalSalePrice         decimal.Decimal  `json:"total_sale_price"`
	AmountReceived         decimal.Decimal  `json:"amount_received"`
	BalanceAmount          decimal.Decimal  `json:"balance_amount"`
	BalanceByPlanApproval  decimal.Decimal  `gorm:"column:balance_tobe_received_by_plan_approval" json:"balance_tobe_received_by_plan_approval"`
	Notes                  string           `json:"notes"`
	BalanceDuringExecution decimal.Decimal  `gorm:"column:balance_tobe_received_during_exec" json:"balance_tobe_received_during_exec"`
	PaymentsTotal          decimal.Decimal  `json:"payments_total"`

	// Derived per row after scan.
	AmountReceivedEffective decimal.Decimal `gorm:"-" json:"amount_received_effective"`
	BalanceAmountEffective  decimal.Decimal `gorm:"-" json:"balance_amount_effective"`
}

var sortColumns = map[string]string{
	"s_no":                                   "s_no",
	"booking_date":                           "booking_date",
	"project":                                "project",
	"spg_praneeth":                           "spg_praneeth",
	"token":                                  "token",
	"buyer_name":                             "buyer_name",
	"sale_person_name":                       "sale_person_name",
	"crm_name":                               "crm_name",
	"sol":                                    "sol",
	"type_of_sale":                           "type_of_sale",
	"land_sqyards":                           "land_sqyards",
	"sbua_sqft":                              "sbua_sqft",
	"facing":                                 "facing",
	"base_sqft_price":                        "base_sqft_price",
	"amenities_and_premiums":                 "amenities_and_premiums",
	"total_sale_price":                       "total_sale_price",
	"amount_received":                        "amount_received",
	"balance_amount":                         "balance_amount",
	"balance_tobe_received_by_plan_approval": "balance_tobe_received_by_plan_approval",
	"notes":                                  "notes",
	"balance_tobe_received_during_exec":      "balance_tobe_received_during_exec",
}

// OrderClause maps the requested sort onto the column whitelist. Anything
// off the list falls back to booking date descending. Sorting by booking
// date descending keeps rows without a date last and breaks ties by s_no
// descending.
func OrderClause(sortBy, sortDir string) string {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = "booking_date"
	}
	dir := "DESC"
	if strings.EqualFold(sortDir, "asc") {
		dir = "ASC"
	}
	if col == "booking_date" && dir == "DESC" {
		return "(booking_date IS NULL) ASC, booking_date DESC, s_no DESC"
	}
	return col + " " + dir
}

// NormalizeLimit pins the dashboard page size to 10, 25 or 50.
func NormalizeLimit(limit int) int {
	switch limit {
	case 25, 50:
		return limit
	}
	return 10
}

const dashboardBaseQuery = `
SELECT
    sd.id,
    sd.s_no,
    sd.booking_date,
    sd.project,
    sd.spg_praneeth,
    sd.token,
    sd.buyer_name,
    sd.sale_person_name,
    sd.crm_name,
    sd.sol,
    sd.type_of_sale,
    sd.land_sqyards,
    sd.sbua_sqft,
    sd.facing,
    sd.base_sqft_price,
    sd.amenities_and_premiums,
    sd.total_sale_price,
    sd.amount_received,
    sd.balance_amount,
    sd.balance_tobe_received_by_plan_approval,
    sd.notes,
    sd.balance_tobe_received_during_exec,
    COALESCE(pay.total, 0) AS payments_total
FROM
    sale_details sd
    LEFT JOIN (
        SELECT sale_id, SUM(amount) AS total FROM payments GROUP BY sale_id
    ) pay ON pay.sale_id = sd.id
WHERE 1=1`

func buildQuery(f *DashboardFilter) (string, []interface{}) {
	sql := dashboardBaseQuery
	args := make([]interface{}, 0, 6)
	if f.Year != "" {
		sql += " AND YEAR(sd.booking_date) = ?"
		args = append(args, f.Year)
	}
	if f.Month != "" {
		sql += " AND MONTH(sd.booking_date) = ?"
		args = append(args, strings.TrimLeft(f.Month, "0"))
	}
	if f.CrmName != "" {
		sql += " AND sd.crm_name = ?"
		args = append(args, f.CrmName)
	}
	if f.SalePersonName != "" {
		sql += " AND sd.sale_person_name = ?"
		args = append(args, f.SalePersonName)
	}
	if f.SpgPraneeth != "" {
		sql += " AND sd.spg_praneeth = ?"
		args = append(args, f.SpgPraneeth)
	}
	if f.TypeOfSale != "" {
		sql += " AND sd.type_of_sale = ?"
		args = append(args, f.TypeOfSale)
	}
	return sql, args
}

func scanRows(ctx context.Context, sql string, args []interface{}) ([]*DashboardRow, error) {
	db := config.GetDB()
	var rows []*DashboardRow
	if err := db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		r.AmountReceivedEffective = r.AmountReceived.Add(r.PaymentsTotal)
		r.BalanceAmountEffective = r.TotalSalePrice.Sub(r.AmountReceivedEffective)
	}
	return rows, nil
}

// GetDashboardRows is the admin dashboard projection: filtered, sorted,
// page-limited.
func GetDashboardRows(ctx context.Context, f *DashboardFilter) ([]*DashboardRow, error) {
	sql, args := buildQuery(f)
	sql += " ORDER BY " + OrderClause(f.SortBy, f.SortDir)
	sql += fmt.Sprintf(" LIMIT %d", NormalizeLimit(f.Limit))
	return scanRows(ctx, sql, args)
}

// GetExportRows is the full filtered set in booking-date-descending order,
// used by the CSV/XLSX exports.
func GetExportRows(ctx context.Context, f *DashboardFilter) ([]*DashboardRow, error) {
	sql, args := buildQuery(f)
	sql += " ORDER BY " + OrderClause("booking_date", "desc")
	return scanRows(ctx, sql, args)
}

// GetMySalesRows is the ownership-scoped listing for the calling principal:
// all of their rows, whitelisted sort, no page limit.
func GetMySalesRows(ctx context.Context, sortBy, sortDir string) ([]*DashboardRow, error) {
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return nil, utils.ErrorUnauthorized
	}
	f := &DashboardFilter{CrmName: username}
	sql, args := buildQuery(f)
	sql += " ORDER BY " + OrderClause(sortBy, sortDir)
	return scanRows(ctx, sql, args)
}

// FilterOptions returns the distinct values feeding the dashboard dropdown
// filters.
func FilterOptions(ctx context.Context) (crms []string, salesPeople []string, err error) {
	db := config.GetDB()
	crms = make([]string, 0)
	salesPeople = make([]string, 0)
	if err = db.WithContext(ctx).Table("sale_details").
		Distinct("crm_name").Where("crm_name IS NOT NULL AND crm_name <> ''").
		Order("crm_name").Pluck("crm_name", &crms).Error; err != nil {
		return nil, nil, err
	}
	if err = db.WithContext(ctx).Table("sale_details").
		Distinct("sale_person_name").Where("sale_person_name IS NOT NULL AND sale_person_name <> ''").
		Order("sale_person_name").Pluck("sale_person_name", &salesPeople).Error; err != nil {
		return nil, nil, err
	}
	return crms, salesPeople, nil
}
