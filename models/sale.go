package models

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/config"
	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is one property transaction. The derived quartet (total, balance and
// the two milestone amounts) is always server-computed; callers can never
// set it directly. crm_name is stamped from the creating principal and is
// immutable afterwards.
type Sale struct {
	ID                     int              `gorm:"primary_key" json:"id"`
	SNo                    int              `gorm:"column:s_no;index;not null" json:"s_no"`
	BookingDate            *time.Time       `gorm:"type:date" json:"booking_date"`
	Project                string           `gorm:"size:255" json:"project"`
	SpgPraneeth            string           `gorm:"size:100;not null" json:"spg_praneeth"`
	Token                  int              `gorm:"default:null" json:"token"`
	BuyerName              string           `gorm:"size:255" json:"buyer_name"`
	Sol                    string           `gorm:"size:255" json:"sol"`
	TypeOfSale             string           `gorm:"size:100;not null" json:"type_of_sale"`
	LandSqyards            decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"land_sqyards"`
	SbuaSqft               decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"sbua_sqft"`
	Facing                 string           `gorm:"size:100" json:"facing"`
	BaseSqftPrice          decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"base_sqft_price"`
	AmenitiesAndPremiums   decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"amenities_and_premiums"`
	TotalSalePrice         decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"total_sale_price"`
	AmountReceived         decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"amount_received"`
	BalanceAmount          decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"balance_amount"`
	BalanceByPlanApproval  decimal.Decimal  `gorm:"column:balance_tobe_received_by_plan_approval;type:decimal(20,4);default:0" json:"balance_tobe_received_by_plan_approval"`
	Notes                  string           `gorm:"type:text" json:"notes"`
	BalanceDuringExecution decimal.Decimal  `gorm:"column:balance_tobe_received_during_exec;type:decimal(20,4);default:0" json:"balance_tobe_received_during_exec"`
	SalePersonName         string           `gorm:"size:255" json:"sale_person_name"`
	CrmName                string           `gorm:"index;not null" json:"crm_name"`
	CreatedAt              time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Sale) TableName() string { return "sale_details" }

// NewSale carries raw form input. Numeric fields arrive as free text and go
// through utils.CleanAmount, so "₹12,34,000" and "1234000" are equivalent
// and garbage degrades to zero.
type NewSale struct {
	BookingDate          string `json:"booking_date"`
	Project              string `json:"project"`
	SpgPraneeth          string `json:"spg_praneeth"`
	Token                string `json:"token"`
	BuyerName            string `json:"buyer_name"`
	Sol                  string `json:"sol"`
	TypeOfSale           string `json:"type_of_sale"`
	LandSqyards          string `json:"land_sqyards"`
	SbuaSqft             string `json:"sbua_sqft"`
	Facing               string `json:"facing"`
	BaseSqftPrice        string `json:"base_sqft_price"`
	AmenitiesAndPremiums string `json:"amenities_and_premiums"`
	AmountReceived       string `json:"amount_received"`
	Notes                string `json:"notes"`
	SalePersonName       string `json:"sale_person_name"`
}

// Advisory locks serialize the read-then-write sequences (s_no assignment,
// payment append + recompute, pricing update + recompute).
// NOTE: GET_LOCK is connection-scoped, so these must be called on the same
// *gorm.DB transaction that does the write.
const saleSequenceLock = "sale_details:sequence"

func saleRowLock(saleID int) string {
	return fmt.Sprintf("sale_details:%d", saleID)
}

func acquireLock(tx *gorm.DB, name string) error {
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", name).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire lock %s", name)
	}
	return nil
}

func releaseLock(tx *gorm.DB, name string) {
	var ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", name).Scan(&ok).Error
}

func principalFromContext(ctx context.Context) (username string, role Role, err error) {
	u, ok := utils.GetUsernameFromContext(ctx)
	if !ok || u == "" {
		return "", "", utils.ErrorUnauthorized
	}
	r, ok := utils.GetRoleFromContext(ctx)
	if !ok || !Role(r).IsValid() {
		return "", "", utils.ErrorUnauthorized
	}
	return u, Role(r), nil
}

// validate checks the option-backed fields, applying the intake defaults
// (SPG, OTP) when the caller left them blank.
func (input *NewSale) validate(ctx context.Context) (spg string, typeOfSale string, err error) {
	spg = strings.TrimSpace(input.SpgPraneeth)
	if spg == "" {
		spg = "SPG"
	}
	typeOfSale = strings.ToUpper(strings.TrimSpace(input.TypeOfSale))
	if typeOfSale == "" {
		typeOfSale = SaleTypeOTP
	}

	ok, err := IsValidOption(ctx, OptionKindSpg, spg)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", fmt.Errorf("%w: spg_praneeth", utils.ErrorInvalidOption)
	}
	ok, err = IsValidOption(ctx, OptionKindSaleType, typeOfSale)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", fmt.Errorf("%w: type_of_sale", utils.ErrorInvalidOption)
	}
	return spg, typeOfSale, nil
}

// CreateSale records a new sale for the calling principal. On the standard
// (CRM) intake path SBUA is derived from land area; admins may enter SBUA
// directly, falling back to the derivation when the field is blank. s_no is
// max+1, assigned inside the insert transaction while holding the sequence
// lock so concurrent creations cannot collide.
func CreateSale(ctx context.Context, input *NewSale) (*Sale, error) {
	username, role, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	spg, typeOfSale, err := input.validate(ctx)
	if err != nil {
		return nil, err
	}

	base := utils.CleanAmount(input.BaseSqftPrice)
	amenities := utils.CleanAmount(input.AmenitiesAndPremiums)
	land := utils.CleanAmount(input.LandSqyards)
	received := utils.CleanAmount(input.AmountReceived)

	sbua := SbuaFromLand(land)
	if role == RoleAdmin && strings.TrimSpace(input.SbuaSqft) != "" {
		sbua = utils.CleanAmount(input.SbuaSqft)
	}

	recv := ComputeReceivables(base, amenities, sbua, received, typeOfSale)

	sale := Sale{
		BookingDate:            parseBookingDate(input.BookingDate),
		Project:                input.Project,
		SpgPraneeth:            spg,
		Token:                  parseIntField(input.Token),
		BuyerName:              input.BuyerName,
		Sol:                    input.Sol,
		TypeOfSale:             typeOfSale,
		LandSqyards:            land,
		SbuaSqft:               sbua,
		Facing:                 input.Facing,
		BaseSqftPrice:          base,
		AmenitiesAndPremiums:   amenities,
		TotalSalePrice:         recv.Total,
		AmountReceived:         received,
		BalanceAmount:          recv.Balance,
		BalanceByPlanApproval:  recv.DueAtPlanApproval,
		Notes:                  input.Notes,
		BalanceDuringExecution: recv.DueDuringExecution,
		SalePersonName:         input.SalePersonName,
		CrmName:                username,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	if err := acquireLock(tx, saleSequenceLock); err != nil {
		tx.Rollback()
		return nil, err
	}
	defer releaseLock(tx, saleSequenceLock)

	var nextSNo int
	if err := tx.Raw("SELECT COALESCE(MAX(s_no), 0) + 1 FROM sale_details").Scan(&nextSNo).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	sale.SNo = nextSNo

	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// GetSale fetches one sale. CRM callers only see their own rows; a row that
// exists but belongs to someone else is indistinguishable from a missing
// one. Admins can read any row (the dashboard detail view).
func GetSale(ctx context.Context, id int) (*Sale, error) {
	username, role, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var sale Sale
	q := db.WithContext(ctx).Where("id = ?", id)
	if role != RoleAdmin {
		q = q.Where("crm_name = ?", username)
	}
	if err := q.First(&sale).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorUnauthorized
		}
		return nil, err
	}
	return &sale, nil
}

// UpdateSale rewrites the allow-listed mutable fields and recomputes the
// derived quartet from the effective amount received (new initial amount +
// ledger sum). s_no, ownership and the derived fields themselves are never
// client-settable. Both roles edit only their own entries.
func UpdateSale(ctx context.Context, id int, input *NewSale) (*Sale, error) {
	username, _, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	spg, typeOfSale, err := input.validate(ctx)
	if err != nil {
		return nil, err
	}

	base := utils.CleanAmount(input.BaseSqftPrice)
	amenities := utils.CleanAmount(input.AmenitiesAndPremiums)
	land := utils.CleanAmount(input.LandSqyards)
	received := utils.CleanAmount(input.AmountReceived)
	sbua := SbuaFromLand(land)

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	if err := acquireLock(tx, saleRowLock(id)); err != nil {
		tx.Rollback()
		return nil, err
	}
	defer releaseLock(tx, saleRowLock(id))

	var sale Sale
	if err := tx.Where("id = ? AND crm_name = ?", id, username).First(&sale).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorUnauthorized
		}
		return nil, err
	}

	paySum, err := ledgerSum(tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	recv := ComputeReceivables(base, amenities, sbua, received.Add(paySum), typeOfSale)

	updates := map[string]interface{}{
		"booking_date":                           parseBookingDate(input.BookingDate),
		"project":                                input.Project,
		"spg_praneeth":                           spg,
		"token":                                  parseIntField(input.Token),
		"buyer_name":                             input.BuyerName,
		"sol":                                    input.Sol,
		"type_of_sale":                           typeOfSale,
		"land_sqyards":                           land,
		"sbua_sqft":                              sbua,
		"facing":                                 input.Facing,
		"base_sqft_price":                        base,
		"amenities_and_premiums":                 amenities,
		"amount_received":                        received,
		"notes":                                  input.Notes,
		"sale_person_name":                       input.SalePersonName,
		"total_sale_price":                       recv.Total,
		"balance_amount":                         recv.Balance,
		"balance_tobe_received_by_plan_approval": recv.DueAtPlanApproval,
		"balance_tobe_received_during_exec":      recv.DueDuringExecution,
	}
	if err := tx.Model(&sale).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// DeleteSale removes the sale when it belongs to the caller. An ownership
// mismatch (or a missing row) deletes nothing and reports no error, so the
// caller learns nothing about rows that are not theirs.
func DeleteSale(ctx context.Context, id int) error {
	username, _, err := principalFromContext(ctx)
	if err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Where("id = ? AND crm_name = ?", id, username).Delete(&Sale{}).Error
}

// NextSequenceNo previews the s_no the next created sale will get.
func NextSequenceNo(ctx context.Context) (int, error) {
	db := config.GetDB()
	var next int
	err := db.WithContext(ctx).Raw("SELECT COALESCE(MAX(s_no), 0) + 1 FROM sale_details").Scan(&next).Error
	return next, err
}

func ledgerSum(tx *gorm.DB, saleID int) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	row := tx.Model(&Payment{}).Where("sale_id = ?", saleID).
		Select("SUM(amount)").Row()
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func parseBookingDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func parseIntField(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
