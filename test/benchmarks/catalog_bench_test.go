package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mcardoso/brecho-be/internal/adapters/db"
	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
	"github.com/mcardoso/brecho-be/internal/core/services"
	"github.com/mcardoso/brecho-be/test/helpers"
)

func BenchmarkCatalogOperations(b *testing.B) {
	testDB := helpers.SetupTestDB(&testing.T{})
	defer testDB.Database.Close()

	repo := db.NewItemRepository(testDB.Database, helpers.TestLogger())
	service := services.NewItemService(repo, testDB.PgxPool, helpers.TestLogger())
	ctx := context.Background()

	b.Run("Create", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			item := &domain.Item{
				Nome:       fmt.Sprintf("Peça Benchmark %d", i),
				Tipo:       "vestido",
				Tamanho:    "M",
				Cor:        "azul",
				Preco:      decimal.NewFromFloat(50),
				Quantidade: 1,
			}
			_ = service.SaveItem(ctx, item)
		}
	})

	// Pre-create items for read benchmarks
	var itemIDs []int64
	for i := 0; i < 100; i++ {
		item := helpers.CreateTestItem(func(it *domain.Item) {
			it.ID = 0
			it.Nome = fmt.Sprintf("Peça de Leitura %d", i)
		})
		_ = service.SaveItem(ctx, item)
		itemIDs = append(itemIDs, item.ID)
	}

	b.Run("Read", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			id := itemIDs[i%len(itemIDs)]
			_, _ = service.GetByID(ctx, id)
		}
	})

	b.Run("List", func(b *testing.B) {
		params := ports.ItemListParams{
			Page:     1,
			PageSize: 50,
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = service.List(ctx, params)
		}
	})

	b.Run("Search", func(b *testing.B) {
		params := ports.ItemListParams{
			Search:   "vestido",
			Page:     1,
			PageSize: 50,
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = service.List(ctx, params)
		}
	})

	b.Run("BatchCreate", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			items := make([]domain.Item, 100)
			for j := range items {
				items[j] = *helpers.CreateTestItem(func(item *domain.Item) {
					item.ID = 0
					item.Nome = fmt.Sprintf("Peça Lote %d-%d", i, j)
				})
			}
			_ = service.SaveItems(ctx, items)
		}
	})
}

func BenchmarkCatalogParsing(b *testing.B) {
	parser := createBenchmarkParser()
	content := createLargeCatalogContent(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = parser.ParseCatalog(context.Background(), content)
	}
}

func BenchmarkTipoNormalization(b *testing.B) {
	parser := createBenchmarkParser()
	descriptions := []string{
		"Vestido floral midi estampado",
		"Calça jeans cintura alta",
		"Tênis de corrida branco",
		"Bolsa de couro caramelo",
		"Jaqueta jeans oversized",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		desc := descriptions[i%len(descriptions)]
		parser.NormalizeTipo(desc)
	}
}

func BenchmarkApplyDiscount(b *testing.B) {
	bruto := decimal.NewFromFloat(179.80)
	desconto := decimal.NewFromFloat(15.50)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = domain.ApplyDiscount(bruto, desconto, domain.PaymentPix)
	}
}

// Memory allocation benchmarks
func BenchmarkMemoryAllocation(b *testing.B) {
	b.Run("Item", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = &domain.Item{
				Nome:       "Vestido Floral",
				Tipo:       "vestido",
				Tamanho:    "M",
				Cor:        "azul",
				Preco:      decimal.NewFromFloat(89.90),
				Quantidade: 1,
			}
		}
	})

	b.Run("ItemListResult", func(b *testing.B) {
		items := make([]*domain.Item, 100)
		for i := range items {
			items[i] = helpers.CreateTestItem()
		}

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = &ports.ItemListResult{
				Items:      items,
				Page:       1,
				PageSize:   50,
				TotalCount: 100,
				TotalPages: 2,
			}
		}
	})
}
