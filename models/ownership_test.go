package models

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/appctx"
	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/config"
	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/utils"
)

// newMockDB swaps the process DB for a sqlmock-backed gorm handle so the
// tests can assert the exact SQL and bound arguments each operation issues.
func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening sqlmock: %v", err)
	}
	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("opening gorm: %v", err)
	}

	prev := config.GetDB()
	config.SetDB(gdb)
	t.Cleanup(func() {
		config.SetDB(prev)
		_ = sqlDB.Close()
	})
	return mock
}

func principalContext(username, role string) context.Context {
	ctx := appctx.Set(context.Background(), appctx.ContextKeyUsername, username)
	return appctx.Set(ctx, appctx.ContextKeyRole, role)
}

func expectAdvisoryLock(mock sqlmock.Sqlmock, name string) {
	mock.ExpectQuery("SELECT GET_LOCK").WithArgs(name).
		WillReturnRows(sqlmock.NewRows([]string{"lock"}).AddRow(1))
}

// A CRM lookup binds both id and the caller's username; a row owned by
// someone else comes back empty and reads as not-found.
func TestGetSale_CrmCannotReadForeignRow(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `sale_details`").
		WithArgs(7, "vasu").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := GetSale(principalContext("vasu", "CRM"), 7)
	if !errors.Is(err, utils.ErrorUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetSale_AdminReadsAnyOwner(t *testing.T) {
	mock := newMockDB(t)
	// Only the id is bound: no ownership predicate on the admin path.
	mock.ExpectQuery("SELECT \\* FROM `sale_details`").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "crm_name"}).AddRow(7, "kaka"))

	sale, err := GetSale(principalContext("admin", "ADMIN"), 7)
	if err != nil {
		t.Fatalf("GetSale error: %v", err)
	}
	if sale.CrmName != "kaka" {
		t.Fatalf("expected kaka's sale, got owner %q", sale.CrmName)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateSale_ForeignRowIsUnauthorized(t *testing.T) {
	mock := newMockDB(t)
	// Option validation runs before the transaction (redis unset, cache miss).
	mock.ExpectQuery("SELECT `value` FROM `spg_options`").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("Praneeth").AddRow("SPG"))
	mock.ExpectQuery("SELECT `value` FROM `sale_type_options`").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("OTP").AddRow("R"))

	mock.ExpectBegin()
	expectAdvisoryLock(mock, "sale_details:7")
	mock.ExpectQuery("SELECT \\* FROM `sale_details`").
		WithArgs(7, "vasu").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := UpdateSale(principalContext("vasu", "CRM"), 7, &NewSale{})
	if !errors.Is(err, utils.ErrorUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// An ownership mismatch deletes nothing and reports nothing.
func TestDeleteSale_ScopedToOwnerAndSilentOnMismatch(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `sale_details`").
		WithArgs(7, "vasu").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := DeleteSale(principalContext("vasu", "CRM"), 7); err != nil {
		t.Fatalf("mismatched delete should be a silent no-op, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddPayment_ForeignSaleIsUnauthorized(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectBegin()
	expectAdvisoryLock(mock, "sale_details:7")
	mock.ExpectQuery("SELECT \\* FROM `sale_details`").
		WithArgs(7, "vasu").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := AddPayment(principalContext("vasu", "CRM"), 7, &NewPayment{
		PaidDate: "2025-06-01",
		Amount:   "50000",
	})
	if !errors.Is(err, utils.ErrorUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Appending 50,000 against a regular sale that recorded 100,000 up front
// recomputes the balance trio from the effective received sum (150,000):
// balance 1,200,000; plan-approval 187,500; execution 1,012,500. The total
// and the original amount_received stay untouched.
func TestAddPayment_RecomputesFromLedgerSum(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectBegin()
	expectAdvisoryLock(mock, "sale_details:7")
	mock.ExpectQuery("SELECT \\* FROM `sale_details`").
		WithArgs(7, "vasu").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "type_of_sale", "base_sqft_price", "amenities_and_premiums",
			"sbua_sqft", "amount_received", "crm_name",
		}).AddRow(7, "R", "1000", "0", "1350", "100000", "vasu"))
	mock.ExpectExec("INSERT INTO `payments`").
		WithArgs(7, sqlmock.AnyArg(), "50000", "part payment", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT SUM\\(amount\\) FROM `payments`").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("50000"))
	mock.ExpectExec("UPDATE `sale_details` SET").
		WithArgs("1200000", "187500", "1012500", sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sale, err := AddPayment(principalContext("vasu", "CRM"), 7, &NewPayment{
		PaidDate: "2025-06-01",
		Amount:   "₹50,000",
		Note:     "part payment",
	})
	if err != nil {
		t.Fatalf("AddPayment error: %v", err)
	}
	if !sale.AmountReceived.Equal(dec("100000")) {
		t.Fatalf("initial amount_received changed to %s", sale.AmountReceived)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
