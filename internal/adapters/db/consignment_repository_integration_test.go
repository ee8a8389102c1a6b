//go:build integration
// +build integration

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/mcardoso/brecho-be/internal/adapters/db"
	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
	"github.com/mcardoso/brecho-be/test/helpers"
)

type ConsignmentRepositorySuite struct {
	suite.Suite
	testDB  *helpers.TestDB
	repo    ports.ConsignmentRepository
	items   ports.ItemRepository
	clients ports.ClientRepository
	ctx     context.Context
}

func (s *ConsignmentRepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	logger := helpers.TestLogger()
	s.repo = db.NewConsignmentRepository(s.testDB.Database, logger)
	s.items = db.NewItemRepository(s.testDB.Database, logger)
	s.clients = db.NewClientRepository(s.testDB.Database, logger)
	s.ctx = context.Background()
}

func (s *ConsignmentRepositorySuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

// seedLoan creates a client, an item with the given stock, and an active
// consignment loaning qty units of it. Returns the consignment.
func (s *ConsignmentRepositorySuite) seedLoan(stock, qty int) (*domain.Item, *domain.Consignment) {
	client := helpers.CreateTestClient()
	client.ID = 0
	s.Require().NoError(s.clients.Save(s.ctx, client))

	item := helpers.CreateTestItem(func(i *domain.Item) {
		i.ID = 0
		i.Quantidade = stock
	})
	item.PrepareForStorage()
	s.Require().NoError(s.items.Save(s.ctx, item))

	preco := item.Preco
	c := &domain.Consignment{
		ClienteID:     client.ID,
		ClienteNome:   client.Nome,
		Data:          time.Now(),
		DataDevolucao: time.Now().AddDate(0, 0, 7),
		Itens: []domain.ConsignmentItem{
			{RoupaID: item.ID, NomeItem: item.Nome, Quantidade: qty, ValorEstimado: &preco},
		},
	}
	s.Require().NoError(s.repo.Save(s.ctx, c))
	return item, c
}

func (s *ConsignmentRepositorySuite) stockOf(itemID int64) int {
	item, err := s.items.FindByID(s.ctx, itemID)
	s.Require().NoError(err)
	s.Require().NotNil(item)
	return item.Quantidade
}

func (s *ConsignmentRepositorySuite) TestSaveReservesStock() {
	item, c := s.seedLoan(5, 2)

	s.Equal(3, s.stockOf(item.ID))

	loaded, err := s.repo.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Require().NotNil(loaded)
	s.True(loaded.IsActive())
	s.Len(loaded.Itens, 1)
	s.Equal(2, loaded.Itens[0].Quantidade)
}

func (s *ConsignmentRepositorySuite) TestSaveRejectsInsufficientStock() {
	client := helpers.CreateTestClient()
	client.ID = 0
	s.Require().NoError(s.clients.Save(s.ctx, client))

	item := helpers.CreateTestItem(func(i *domain.Item) {
		i.ID = 0
		i.Quantidade = 1
	})
	item.PrepareForStorage()
	s.Require().NoError(s.items.Save(s.ctx, item))

	preco := item.Preco
	c := &domain.Consignment{
		ClienteID:     client.ID,
		ClienteNome:   client.Nome,
		Data:          time.Now(),
		DataDevolucao: time.Now().AddDate(0, 0, 7),
		Itens: []domain.ConsignmentItem{
			{RoupaID: item.ID, NomeItem: item.Nome, Quantidade: 3, ValorEstimado: &preco},
		},
	}

	err := s.repo.Save(s.ctx, c)
	s.Require().ErrorIs(err, domain.ErrInsufficientStock)

	// rollback leaves stock and tables untouched
	s.Equal(1, s.stockOf(item.ID))
}

func (s *ConsignmentRepositorySuite) TestFinalizeSalePartialRestocksRemainder() {
	item, c := s.seedLoan(5, 3)

	sale := &domain.Sale{
		CondicionalID:  &c.ID,
		ClienteID:      &c.ClienteID,
		ClienteNome:    c.ClienteNome,
		FormaPagamento: domain.PaymentPix,
		ValorBruto:     decimal.NewFromFloat(89.90),
		ValorLiquido:   decimal.NewFromFloat(89.90),
		Data:           time.Now(),
		Itens: []domain.SaleItem{
			{RoupaID: item.ID, NomeItem: item.Nome, Quantidade: 1,
				PrecoUnitario: decimal.NewFromFloat(89.90),
				Subtotal:      decimal.NewFromFloat(89.90)},
		},
	}
	dispositions := []ports.LineDisposition{
		{RoupaID: item.ID, Vendida: 1, Devolvida: 2},
	}

	s.Require().NoError(s.repo.FinalizeSale(s.ctx, c.ID, dispositions, sale))
	s.NotZero(sale.ID)

	// 5 initial - 3 loaned + 2 returned
	s.Equal(4, s.stockOf(item.ID))

	loaded, err := s.repo.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.False(loaded.IsActive())
	s.Equal(domain.ConsignmentSold, loaded.Status())
	s.Equal(1, loaded.Itens[0].QuantidadeVendida)
	s.Equal(2, loaded.Itens[0].QuantidadeDevolvida)
}

func (s *ConsignmentRepositorySuite) TestFinalizeSaleOnlyFirstCallerWins() {
	item, c := s.seedLoan(5, 2)

	sale := &domain.Sale{
		CondicionalID:  &c.ID,
		FormaPagamento: domain.PaymentCash,
		ValorBruto:     decimal.NewFromFloat(179.80),
		ValorLiquido:   decimal.NewFromFloat(179.80),
		Data:           time.Now(),
		Itens: []domain.SaleItem{
			{RoupaID: item.ID, NomeItem: item.Nome, Quantidade: 2,
				PrecoUnitario: decimal.NewFromFloat(89.90),
				Subtotal:      decimal.NewFromFloat(179.80)},
		},
	}
	dispositions := []ports.LineDisposition{
		{RoupaID: item.ID, Vendida: 2, Devolvida: 0},
	}

	s.Require().NoError(s.repo.FinalizeSale(s.ctx, c.ID, dispositions, sale))

	err := s.repo.FinalizeSale(s.ctx, c.ID, dispositions, &domain.Sale{
		FormaPagamento: domain.PaymentCash,
		Data:           time.Now(),
		Itens:          sale.Itens,
	})
	s.Require().ErrorIs(err, domain.ErrConsignmentClosed)

	err = s.repo.CloseReturned(s.ctx, c.ID)
	s.Require().ErrorIs(err, domain.ErrConsignmentClosed)

	// stock unchanged by the losing attempts
	s.Equal(3, s.stockOf(item.ID))
}

func (s *ConsignmentRepositorySuite) TestCloseReturnedRestoresAllStock() {
	item, c := s.seedLoan(5, 3)

	s.Require().NoError(s.repo.CloseReturned(s.ctx, c.ID))

	s.Equal(5, s.stockOf(item.ID))

	loaded, err := s.repo.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(domain.ConsignmentReturned, loaded.Status())
	s.Equal(3, loaded.Itens[0].QuantidadeDevolvida)
}

func (s *ConsignmentRepositorySuite) TestDeleteActiveRestocks() {
	item, c := s.seedLoan(4, 2)

	s.Require().NoError(s.repo.Delete(s.ctx, c.ID))

	s.Equal(4, s.stockOf(item.ID))

	loaded, err := s.repo.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Nil(loaded)
}

func (s *ConsignmentRepositorySuite) TestFindOverdue() {
	_, c := s.seedLoan(5, 1)

	_, err := s.testDB.PgxPool.Exec(s.ctx,
		`UPDATE condicionais SET data_devolucao = NOW() - INTERVAL '2 days' WHERE id = $1`, c.ID)
	s.Require().NoError(err)

	overdue, err := s.repo.FindOverdue(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(overdue, 1)
	s.Equal(c.ID, overdue[0].ID)
	s.Len(overdue[0].Itens, 1)
}

func TestConsignmentRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(ConsignmentRepositorySuite))
}
