package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeReceivables_RegularSchedule(t *testing.T) {
	// base 1000/sqft, land 100 sqyards -> sbua 1350 sqft, 100,000 received.
	recv := ComputeReceivables(dec("1000"), dec("50000"), dec("1350"), dec("100000"), SaleTypeRegular)

	if !recv.Total.Equal(dec("1350000")) {
		t.Fatalf("total expected 1350000, got %s", recv.Total)
	}
	if !recv.Balance.Equal(dec("1250000")) {
		t.Fatalf("balance expected 1250000, got %s", recv.Balance)
	}
	// 25% threshold minus received: 337500 - 100000.
	if !recv.DueAtPlanApproval.Equal(dec("237500")) {
		t.Fatalf("due at plan approval expected 237500, got %s", recv.DueAtPlanApproval)
	}
	if !recv.DueDuringExecution.Equal(dec("1012500")) {
		t.Fatalf("due during execution expected 1012500, got %s", recv.DueDuringExecution)
	}
	// The milestone split always covers the full balance on the regular path.
	if !recv.DueAtPlanApproval.Add(recv.DueDuringExecution).Equal(recv.Balance) {
		t.Fatalf("milestones do not add up to balance")
	}
}

func TestComputeReceivables_AmenitiesExcludedFromTotal(t *testing.T) {
	with := ComputeReceivables(dec("1000"), dec("999999"), dec("1350"), dec("0"), SaleTypeRegular)
	without := ComputeReceivables(dec("1000"), dec("0"), dec("1350"), dec("0"), SaleTypeRegular)
	if !with.Total.Equal(without.Total) {
		t.Fatalf("amenities changed total: %s vs %s", with.Total, without.Total)
	}
}

func TestComputeReceivables_OTPCollectsEverythingAtPlanApproval(t *testing.T) {
	recv := ComputeReceivables(dec("1000"), dec("0"), dec("1350"), dec("400000"), SaleTypeOTP)
	if !recv.DueAtPlanApproval.Equal(recv.Balance) {
		t.Fatalf("OTP due at plan approval expected %s, got %s", recv.Balance, recv.DueAtPlanApproval)
	}
	if !recv.DueDuringExecution.IsZero() {
		t.Fatalf("OTP due during execution expected 0, got %s", recv.DueDuringExecution)
	}
}

func TestComputeReceivables_ReceivedPastThreshold(t *testing.T) {
	// Received beyond the 25% threshold: plan-approval milestone clamps to 0
	// and execution carries the whole remaining balance.
	recv := ComputeReceivables(dec("1000"), dec("0"), dec("1350"), dec("500000"), SaleTypeRegular)
	if !recv.DueAtPlanApproval.IsZero() {
		t.Fatalf("due at plan approval expected 0, got %s", recv.DueAtPlanApproval)
	}
	if !recv.DueDuringExecution.Equal(dec("850000")) {
		t.Fatalf("due during execution expected 850000, got %s", recv.DueDuringExecution)
	}
}

func TestComputeReceivables_Overpayment(t *testing.T) {
	recv := ComputeReceivables(dec("1000"), dec("0"), dec("1350"), dec("1400000"), SaleTypeRegular)
	if !recv.Balance.Equal(dec("-50000")) {
		t.Fatalf("balance expected -50000, got %s", recv.Balance)
	}
	if !recv.DueAtPlanApproval.IsZero() || !recv.DueDuringExecution.IsZero() {
		t.Fatalf("milestones expected 0 on overpayment, got %s / %s",
			recv.DueAtPlanApproval, recv.DueDuringExecution)
	}
}

func TestComputeReceivables_Idempotent(t *testing.T) {
	a := ComputeReceivables(dec("1234.56"), dec("10"), dec("789.5"), dec("1000"), SaleTypeRegular)
	b := ComputeReceivables(dec("1234.56"), dec("10"), dec("789.5"), dec("1000"), SaleTypeRegular)
	if !a.Total.Equal(b.Total) || !a.Balance.Equal(b.Balance) ||
		!a.DueAtPlanApproval.Equal(b.DueAtPlanApproval) ||
		!a.DueDuringExecution.Equal(b.DueDuringExecution) {
		t.Fatalf("recomputation drifted: %+v vs %+v", a, b)
	}
}

func TestSbuaFromLand(t *testing.T) {
	if got := SbuaFromLand(dec("100")); !got.Equal(dec("1350")) {
		t.Fatalf("SbuaFromLand(100) expected 1350, got %s", got)
	}
	if got := SbuaFromLand(dec("0")); !got.IsZero() {
		t.Fatalf("SbuaFromLand(0) expected 0, got %s", got)
	}
}
