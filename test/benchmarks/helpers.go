// test/benchmarks/helpers.go
package benchmarks

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mcardoso/brecho-be/internal/core/domain"
)

// MockCatalogParser parses semicolon-delimited catalog rows the way the
// spreadsheet import does, without touching the filesystem.
type MockCatalogParser struct {
	logger *slog.Logger
}

// createBenchmarkParser creates a parser for benchmark tests
func createBenchmarkParser() *MockCatalogParser {
	return &MockCatalogParser{
		logger: slog.Default(),
	}
}

// ParseCatalog turns raw catalog content into items, one per line
func (p *MockCatalogParser) ParseCatalog(ctx context.Context, content []byte) ([]domain.Item, error) {
	lines := strings.Split(string(content), "\n")
	items := make([]domain.Item, 0, len(lines))

	for _, line := range lines {
		fields := strings.Split(strings.TrimSpace(line), ";")
		if len(fields) < 4 || fields[0] == "" {
			continue
		}

		preco, err := decimal.NewFromString(strings.TrimPrefix(fields[3], "R$"))
		if err != nil {
			preco = decimal.Zero
		}

		quantidade := 1
		if len(fields) > 4 {
			if q, err := strconv.Atoi(fields[4]); err == nil && q > 0 {
				quantidade = q
			}
		}

		items = append(items, domain.Item{
			Nome:       fields[0],
			Tipo:       p.NormalizeTipo(fields[1]),
			Tamanho:    strings.ToUpper(fields[2]),
			Preco:      preco,
			Quantidade: quantidade,
		})
	}

	return items, nil
}

// NormalizeTipo maps a free-form description to a catalog type
func (p *MockCatalogParser) NormalizeTipo(descricao string) string {
	descLower := strings.ToLower(descricao)

	switch {
	case strings.Contains(descLower, "vestido"):
		return "vestido"
	case strings.Contains(descLower, "blusa") || strings.Contains(descLower, "camisa"):
		return "blusa"
	case strings.Contains(descLower, "calça") || strings.Contains(descLower, "jeans"):
		return "calça"
	case strings.Contains(descLower, "saia"):
		return "saia"
	case strings.Contains(descLower, "casaco") || strings.Contains(descLower, "jaqueta"):
		return "casaco"
	case strings.Contains(descLower, "shorts") || strings.Contains(descLower, "bermuda"):
		return "shorts"
	case strings.Contains(descLower, "sapato") || strings.Contains(descLower, "sandália") ||
		strings.Contains(descLower, "tênis"):
		return "calçado"
	case strings.Contains(descLower, "bolsa") || strings.Contains(descLower, "cinto") ||
		strings.Contains(descLower, "colar"):
		return "acessório"
	default:
		return "outro"
	}
}

// createLargeCatalogContent creates simulated catalog content for benchmarks
func createLargeCatalogContent(numItems int) []byte {
	var content strings.Builder

	itemDescriptions := []struct {
		nome    string
		tipo    string
		tamanho string
	}{
		{"Vestido floral midi estampado", "vestido longo", "M"},
		{"Blusa de seda manga longa", "blusa social", "P"},
		{"Calça jeans cintura alta", "calça jeans", "40"},
		{"Saia plissada preta", "saia midi", "M"},
		{"Casaco de lã cinza", "casaco inverno", "G"},
		{"Bermuda cargo infantil", "bermuda", "10"},
		{"Tênis de corrida branco", "tênis esportivo", "37"},
		{"Bolsa de couro caramelo", "bolsa tiracolo", "único"},
		{"Camisa xadrez flanelada", "camisa casual", "GG"},
		{"Jaqueta jeans oversized", "jaqueta", "M"},
	}

	for i := 0; i < numItems; i++ {
		desc := itemDescriptions[i%len(itemDescriptions)]
		content.WriteString(fmt.Sprintf("%s %d;%s;%s;R$%.2f;%d\n",
			desc.nome, i+1, desc.tipo, desc.tamanho, float64(20+i%15*10), 1+i%3))
	}

	return []byte(content.String())
}
