// internal/core/domain/item.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Item represents a single stock-keeping piece of clothing ("roupa").
// Quantidade is the number of units currently available for loan or sale;
// it never goes below zero (enforced both here and by a CHECK constraint).
type Item struct {
	ID           int64           `json:"id"`
	Nome         string          `json:"nome"`
	Descricao    string          `json:"descricao,omitempty"`
	Tipo         string          `json:"tipo"`
	Tamanho      string          `json:"tamanho"`
	Cor          string          `json:"cor"`
	Preco        decimal.Decimal `json:"preco"`
	Quantidade   int             `json:"quantidade"`
	UsuarioID    int64           `json:"usuarios_id"`
	Imagens      []Imagem        `json:"imagens,omitempty"`
	CriadoEm     time.Time       `json:"criado_em"`
	AtualizadoEm time.Time       `json:"atualizado_em"`
	DeletedAt    *time.Time      `json:"deleted_at,omitempty"`
}

// Imagem is an image attached to an item. The binary lives in object
// storage; only the public URL is recorded here.
type Imagem struct {
	ID       int64     `json:"id"`
	RoupaID  int64     `json:"roupas_id"`
	URL      string    `json:"url"`
	CriadoEm time.Time `json:"criado_em"`
}

// Validate performs domain validation on the item.
func (i *Item) Validate() error {
	if i.Nome == "" {
		return fmt.Errorf("nome is required")
	}
	if i.Tipo == "" {
		return fmt.Errorf("tipo is required")
	}
	if i.Tamanho == "" {
		return fmt.Errorf("tamanho is required")
	}
	if i.Cor == "" {
		return fmt.Errorf("cor is required")
	}
	if i.Preco.IsNegative() {
		return fmt.Errorf("preco cannot be negative")
	}
	if i.Quantidade < 0 {
		return fmt.Errorf("quantidade cannot be negative")
	}
	return nil
}

// Available reports whether the item has units eligible for a new
// consignment or sale.
func (i *Item) Available() bool {
	return i.Quantidade > 0 && i.DeletedAt == nil
}

// PrepareForStorage sets timestamps before the item is persisted.
func (i *Item) PrepareForStorage() {
	now := time.Now()
	if i.CriadoEm.IsZero() {
		i.CriadoEm = now
	}
	i.AtualizadoEm = now
}
