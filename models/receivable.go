package models

import (
	"github.com/shopspring/decimal"
)

// The two sale types encode two contractual payment schedules: OTP collects
// the full balance at the plan-approval milestone, everything else ("R" and
// any future option value) collects a 25% threshold at plan approval and the
// remainder during execution.
var (
	planApprovalShare = decimal.NewFromFloat(0.25)

	// Built-up area billed per square yard of land on the standard intake
	// path: SBUA sqft = land sqyards x 13.5.
	sbuaPerSqyard = decimal.NewFromFloat(13.5)
)

// Receivables is the derived financial quartet of a sale. It is never
// entered by a caller; every creation, pricing edit and payment recomputes
// it from scratch so the stored values cannot drift.
type Receivables struct {
	Total              decimal.Decimal
	Balance            decimal.Decimal
	DueAtPlanApproval  decimal.Decimal
	DueDuringExecution decimal.Decimal
}

// ComputeReceivables derives total price, outstanding balance and the
// milestone split. It is a pure function and idempotent: same inputs, same
// output, no hidden state.
//
// Total is base price x SBUA. Amenities/premiums are recorded on the sale
// and exported, but excluded from the total.
//
// received is the effective amount received to date: the initial recorded
// amount plus the sum of all ledger payments. A negative value is accepted
// as entered. Balance may go negative on overpayment; the milestone amounts
// are clamped at zero.
func ComputeReceivables(basePerSqft, amenities, sbua, received decimal.Decimal, typeOfSale string) Receivables {
	total := basePerSqft.Mul(sbua)
	balance := total.Sub(received)

	var byPlan, duringExec decimal.Decimal
	if typeOfSale == SaleTypeOTP {
		byPlan = balance
		duringExec = decimal.Zero
	} else {
		byPlan = decimal.Max(total.Mul(planApprovalShare).Sub(received), decimal.Zero)
		duringExec = decimal.Max(balance.Sub(byPlan), decimal.Zero)
	}

	return Receivables{
		Total:              total,
		Balance:            balance,
		DueAtPlanApproval:  byPlan,
		DueDuringExecution: duringExec,
	}
}

// SbuaFromLand derives billable built-up area from land area.
func SbuaFromLand(landSqyards decimal.Decimal) decimal.Decimal {
	return landSqyards.Mul(sbuaPerSqyard)
}
