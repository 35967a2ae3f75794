package models

import (
	"context"
	"time"

	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/config"
	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is an append-only ledger entry against one sale. Entries are never
// updated or deleted; once appended the amount contributes to the sale's
// effective received sum permanently.
type Payment struct {
	ID        int             `gorm:"primary_key" json:"id"`
	SaleId    int             `gorm:"index;not null" json:"sale_id"`
	PaidDate  time.Time       `gorm:"not null" json:"paid_date"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Note      string          `gorm:"type:text" json:"note"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string { return "payments" }

type NewPayment struct {
	PaidDate string `json:"paid_date"`
	Amount   string `json:"amount"`
	Note     string `json:"note"`
}

// LedgerEntry is a rendered payment-history row. The initial amount received
// at creation is shown as the oldest entry but is a display artifact only:
// it has no ledger row and is never added into the ledger sum.
type LedgerEntry struct {
	PaidDate *time.Time      `json:"paid_date"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
}

const initialAmountNote = "Initial Amount Received"

// AddPayment appends a ledger entry and refreshes the sale's derived balance
// trio from the new effective received sum, all inside one transaction under
// the sale's advisory lock. total_sale_price and the original
// amount_received field are not touched. The sale must belong to the caller;
// a foreign or missing sale is one indistinguishable failure.
func AddPayment(ctx context.Context, saleID int, input *NewPayment) (*Sale, error) {
	username, _, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	amount := utils.CleanAmount(input.Amount)
	if !amount.IsPositive() {
		return nil, utils.ErrorInvalidAmount
	}
	paidDate := parsePaidDate(input.PaidDate)

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	if err := acquireLock(tx, saleRowLock(saleID)); err != nil {
		tx.Rollback()
		return nil, err
	}
	defer releaseLock(tx, saleRowLock(saleID))

	var sale Sale
	if err := tx.Where("id = ? AND crm_name = ?", saleID, username).First(&sale).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorUnauthorized
		}
		return nil, err
	}

	payment := Payment{
		SaleId:   saleID,
		PaidDate: paidDate,
		Amount:   amount,
		Note:     input.Note,
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	paySum, err := ledgerSum(tx, saleID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	recv := ComputeReceivables(sale.BaseSqftPrice, sale.AmenitiesAndPremiums, sale.SbuaSqft,
		sale.AmountReceived.Add(paySum), sale.TypeOfSale)
	if err := tx.Model(&sale).Updates(map[string]interface{}{
		"balance_amount":                         recv.Balance,
		"balance_tobe_received_by_plan_approval": recv.DueAtPlanApproval,
		"balance_tobe_received_during_exec":      recv.DueDuringExecution,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// PaymentHistory returns the rendered ledger for a sale (newest stored
// payment first, synthesized initial row oldest) plus the stored-ledger
// total.
func PaymentHistory(ctx context.Context, saleID int) ([]*LedgerEntry, decimal.Decimal, error) {
	sale, err := GetSale(ctx, saleID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	db := config.GetDB()
	var payments []*Payment
	if err := db.WithContext(ctx).Where("sale_id = ?", saleID).
		Order("paid_date DESC, id DESC").Find(&payments).Error; err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return BuildHistory(sale, payments), total, nil
}

// BuildHistory renders payment rows for display. When the sale recorded an
// initial amount at creation it appears first (oldest), dated with the
// booking date.
func BuildHistory(sale *Sale, payments []*Payment) []*LedgerEntry {
	entries := make([]*LedgerEntry, 0, len(payments)+1)
	if sale.AmountReceived.IsPositive() {
		entries = append(entries, &LedgerEntry{
			PaidDate: sale.BookingDate,
			Amount:   sale.AmountReceived,
			Note:     initialAmountNote,
		})
	}
	for _, p := range payments {
		paid := p.PaidDate
		entries = append(entries, &LedgerEntry{PaidDate: &paid, Amount: p.Amount, Note: p.Note})
	}
	return entries
}

// EffectiveReceived is the initial recorded amount plus the stored ledger
// sum. It is non-decreasing: appended amounts are always positive.
func EffectiveReceived(initial decimal.Decimal, payments []*Payment) decimal.Decimal {
	total := initial
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

func parsePaidDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}
