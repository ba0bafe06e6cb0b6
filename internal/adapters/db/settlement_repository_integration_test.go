//go:build integration
// +build integration

package db_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/tallersoft/pos-be/internal/adapters/db"
	"github.com/tallersoft/pos-be/internal/core/domain"
	"github.com/tallersoft/pos-be/internal/core/ports"
	"github.com/tallersoft/pos-be/test/helpers"
)

type SettlementRepositorySuite struct {
	suite.Suite
	testDB *helpers.TestDB
	repo   ports.SettlementRepository
	sales  ports.SaleRepository
	alerts ports.AlertRepository
	ctx    context.Context
}

func (s *SettlementRepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.repo = db.NewSettlementRepository(s.testDB.Database, helpers.TestLogger())
	s.sales = db.NewSaleRepository(s.testDB.Database, helpers.TestLogger())
	s.alerts = db.NewAlertRepository(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *SettlementRepositorySuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *SettlementRepositorySuite) newSale(lines ...domain.CartLine) *domain.Sale {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	sale := &domain.Sale{
		Total:    total,
		VendorID: uuid.New(),
		BranchID: uuid.New(),
		Lines:    lines,
		Payments: []domain.PaymentEntry{{Method: domain.PaymentCash, Amount: total}},
	}
	sale.PrepareForStorage()
	return sale
}

func (s *SettlementRepositorySuite) seedStock(productID, branchID uuid.UUID, quantity int) {
	_, err := s.testDB.PgxPool.Exec(s.ctx,
		`INSERT INTO stock (product_id, branch_id, quantity) VALUES ($1, $2, $3)`,
		productID, branchID, quantity)
	s.Require().NoError(err)
}

func (s *SettlementRepositorySuite) seedTicket(id uuid.UUID) {
	_, err := s.testDB.PgxPool.Exec(s.ctx,
		`INSERT INTO tickets (id, customer, device, status_id) VALUES ($1, 'Juana Molina', 'Moto G52', 1)`,
		id)
	s.Require().NoError(err)
}

func (s *SettlementRepositorySuite) stockQuantity(productID, branchID uuid.UUID) int {
	var qty int
	err := s.testDB.PgxPool.QueryRow(s.ctx,
		`SELECT quantity FROM stock WHERE product_id = $1 AND branch_id = $2`,
		productID, branchID).Scan(&qty)
	s.Require().NoError(err)
	return qty
}

func (s *SettlementRepositorySuite) rowCount(table string) int {
	var n int
	err := s.testDB.PgxPool.QueryRow(s.ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	s.Require().NoError(err)
	return n
}

func (s *SettlementRepositorySuite) TestCommitSettlement_ProductSale() {
	line := helpers.ProductLine(helpers.WithQuantity(3))
	sale := s.newSale(line)
	s.seedStock(line.ReferenceID, sale.BranchID, 10)

	err := s.repo.CommitSettlement(s.ctx, sale, nil)
	s.NoError(err)

	// Decrement is relative: before minus quantity
	s.Equal(7, s.stockQuantity(line.ReferenceID, sale.BranchID))

	saved, err := s.sales.FindByID(s.ctx, sale.ID)
	s.NoError(err)
	s.Require().NotNil(saved)
	s.Equal(sale.Number, saved.Number)
	s.True(sale.Total.Equal(saved.Total))
	s.Len(saved.Lines, 1)
	s.Len(saved.Payments, 1)
	s.Nil(saved.Invoice)
}

func (s *SettlementRepositorySuite) TestCommitSettlement_CreatesMissingStockRow() {
	// Selling an uncounted product opens the balance at a negative quantity
	line := helpers.ProductLine(helpers.WithQuantity(2))
	sale := s.newSale(line)

	err := s.repo.CommitSettlement(s.ctx, sale, nil)
	s.NoError(err)

	s.Equal(-2, s.stockQuantity(line.ReferenceID, sale.BranchID))
}

func (s *SettlementRepositorySuite) TestCommitSettlement_RepairDelivery() {
	line := helpers.RepairLine(helpers.WithUnitPrice("15000"))
	sale := s.newSale(line)
	s.seedTicket(line.ReferenceID)

	err := s.repo.CommitSettlement(s.ctx, sale, nil)
	s.NoError(err)

	var statusID int
	err = s.testDB.PgxPool.QueryRow(s.ctx,
		`SELECT status_id FROM tickets WHERE id = $1`, line.ReferenceID).Scan(&statusID)
	s.NoError(err)
	s.Equal(domain.TicketStatusDelivered, statusID)

	var notes []string
	rows, err := s.testDB.PgxPool.Query(s.ctx,
		`SELECT note FROM ticket_notes WHERE ticket_id = $1`, line.ReferenceID)
	s.Require().NoError(err)
	defer rows.Close()
	for rows.Next() {
		var note string
		s.Require().NoError(rows.Scan(&note))
		notes = append(notes, note)
	}
	s.Require().NoError(rows.Err())

	s.Require().Len(notes, 1)
	s.Contains(notes[0], sale.Number)
	s.Contains(notes[0], "15000.00")
}

func (s *SettlementRepositorySuite) TestCommitSettlement_PersistsInvoice() {
	line := helpers.ProductLine(helpers.WithUnitPrice("2000"))
	sale := s.newSale(line)
	sale.Invoice = &domain.FiscalInvoice{
		Type:                "B",
		Number:              "00003-00000042",
		AuthorizationCode:   "71234567890123",
		AuthorizationExpiry: sale.CreatedAt.AddDate(0, 0, 10),
		NetAmount:           decimal.RequireFromString("1652.89"),
		VatAmount:           decimal.RequireFromString("347.11"),
		TotalAmount:         decimal.RequireFromString("2000.00"),
		BillingEntity:       "TALLERSOFT SRL",
	}
	sale.PrepareForStorage()

	err := s.repo.CommitSettlement(s.ctx, sale, nil)
	s.NoError(err)

	saved, err := s.sales.FindByID(s.ctx, sale.ID)
	s.NoError(err)
	s.Require().NotNil(saved)
	s.Require().NotNil(saved.Invoice)
	s.Equal("00003-00000042", saved.Invoice.Number)
	s.Equal("71234567890123", saved.Invoice.AuthorizationCode)
	s.True(saved.Invoice.NetAmount.Add(saved.Invoice.VatAmount).Equal(saved.Invoice.TotalAmount))
}

func (s *SettlementRepositorySuite) TestCommitSettlement_MissingTicketRollsBackEverything() {
	product := helpers.ProductLine(helpers.WithQuantity(2))
	repair := helpers.RepairLine() // ticket never seeded
	sale := s.newSale(product, repair)
	s.seedStock(product.ReferenceID, sale.BranchID, 10)

	alert := &domain.PriceAlert{
		ID:         uuid.New(),
		SaleID:     sale.ID,
		SaleNumber: sale.Number,
		Overrides: []domain.PriceOverride{{
			Name:     product.Name,
			Original: decimal.NewFromInt(1200),
			Final:    product.UnitPrice,
		}},
		CreatedAt: sale.CreatedAt,
	}

	err := s.repo.CommitSettlement(s.ctx, sale, alert)
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrTicketNotFound)

	// The product line's stock decrement ran before the repair line failed;
	// the rollback must leave no trace of any of it
	s.Equal(10, s.stockQuantity(product.ReferenceID, sale.BranchID))
	s.Equal(0, s.rowCount("sales"))
	s.Equal(0, s.rowCount("sale_items"))
	s.Equal(0, s.rowCount("sale_payments"))
	s.Equal(0, s.rowCount("sale_alerts"))

	saved, err := s.sales.FindByID(s.ctx, sale.ID)
	s.NoError(err)
	s.Nil(saved)
}

func (s *SettlementRepositorySuite) TestAlertOutbox_RoundTrip() {
	line := helpers.ProductLine(helpers.WithUnitPrice("800"), helpers.WithOverride("1000", "loyal customer"))
	sale := s.newSale(line)
	alert := domain.DetectPriceOverrides(sale)
	s.Require().NotNil(alert)

	err := s.repo.CommitSettlement(s.ctx, sale, alert)
	s.NoError(err)

	pending, err := s.alerts.FindPending(s.ctx, alert.ID)
	s.NoError(err)
	s.Require().NotNil(pending)
	s.Equal(sale.Number, pending.SaleNumber)
	s.Require().Len(pending.Overrides, 1)
	s.Equal("loyal customer", pending.Overrides[0].Reason)
	s.True(pending.Overrides[0].Original.Equal(decimal.NewFromInt(1000)))

	err = s.alerts.MarkDispatched(s.ctx, alert.ID)
	s.NoError(err)

	// Dispatched rows are invisible to the worker and cannot be re-marked
	pending, err = s.alerts.FindPending(s.ctx, alert.ID)
	s.NoError(err)
	s.Nil(pending)

	err = s.alerts.MarkDispatched(s.ctx, alert.ID)
	s.Error(err)
}

func TestSettlementRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(SettlementRepositorySuite))
}
