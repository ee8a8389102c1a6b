// internal/core/domain/consignment.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Disposition records how a closed consignment ended.
type Disposition string

const (
	DispositionSold     Disposition = "vendido"
	DispositionReturned Disposition = "devolvido"
)

// ConsignmentStatus is the derived lifecycle state of a consignment.
// The state machine is ACTIVE -> {SOLD, RETURNED}; terminal states have
// no outgoing transitions.
type ConsignmentStatus string

const (
	ConsignmentActive   ConsignmentStatus = "ativo"
	ConsignmentSold     ConsignmentStatus = "vendido"
	ConsignmentReturned ConsignmentStatus = "devolvido"
)

// Consignment ("condicional") is a loan of inventory units to a client
// pending sale or return. Line quantities are fixed at creation; only the
// disposition of those units (sold vs. returned) changes over the record's
// life, tracked per line by QuantidadeVendida and QuantidadeDevolvida.
type Consignment struct {
	ID            int64             `json:"id"`
	ClienteID     int64             `json:"cliente_id"`
	ClienteNome   string            `json:"cliente_nome"`
	Data          time.Time         `json:"data"`
	DataDevolucao time.Time         `json:"data_devolucao"`
	Devolvido     bool              `json:"devolvido"`
	Desfecho      Disposition       `json:"desfecho,omitempty"`
	Itens         []ConsignmentItem `json:"itens"`
}

// ConsignmentItem is one loaned line: N units of a single item, with the
// item's price snapshotted as ValorEstimado at loan time.
type ConsignmentItem struct {
	ID                  int64            `json:"id"`
	CondicionalID       int64            `json:"condicional_id"`
	RoupaID             int64            `json:"roupas_id"`
	NomeItem            string           `json:"nome_item"`
	Quantidade          int              `json:"quantidade"`
	ValorEstimado       *decimal.Decimal `json:"valor_estimado,omitempty"`
	QuantidadeVendida   int              `json:"quantidade_vendida"`
	QuantidadeDevolvida int              `json:"quantidade_devolvida"`
}

// Validate checks a consignment at creation time.
func (c *Consignment) Validate(now time.Time) error {
	if c.ClienteID <= 0 {
		return ErrClienteRequired
	}
	if len(c.Itens) == 0 {
		return ErrEmptySelection
	}
	if !c.DataDevolucao.After(now) {
		return ErrPastDeadline
	}
	for i := range c.Itens {
		if c.Itens[i].Quantidade <= 0 {
			return ErrEmptySelection
		}
	}
	return nil
}

// Status derives the lifecycle state from the persisted flags.
func (c *Consignment) Status() ConsignmentStatus {
	if !c.Devolvido {
		return ConsignmentActive
	}
	if c.Desfecho == DispositionSold {
		return ConsignmentSold
	}
	return ConsignmentReturned
}

// IsActive reports whether the consignment still accepts a conversion or
// a return.
func (c *Consignment) IsActive() bool {
	return !c.Devolvido
}

// Overdue reports whether an active consignment passed its return deadline.
func (c *Consignment) Overdue(now time.Time) bool {
	return c.IsActive() && now.After(c.DataDevolucao)
}

// LineByRoupaID returns the line for the given item id, or nil.
func (c *Consignment) LineByRoupaID(roupaID int64) *ConsignmentItem {
	for i := range c.Itens {
		if c.Itens[i].RoupaID == roupaID {
			return &c.Itens[i]
		}
	}
	return nil
}

// TotalPecas is the total number of loaned units across all lines.
func (c *Consignment) TotalPecas() int {
	total := 0
	for i := range c.Itens {
		total += c.Itens[i].Quantidade
	}
	return total
}

// ValorEstimadoTotal is the estimated value of the whole loan, skipping
// lines whose price snapshot is missing.
func (c *Consignment) ValorEstimadoTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Itens {
		if c.Itens[i].ValorEstimado == nil {
			continue
		}
		qty := decimal.NewFromInt(int64(c.Itens[i].Quantidade))
		total = total.Add(c.Itens[i].ValorEstimado.Mul(qty))
	}
	return total
}

// LineValue returns the estimated value of the line's unit price, or zero
// when no snapshot was taken.
func (ci *ConsignmentItem) LineValue() decimal.Decimal {
	if ci.ValorEstimado == nil {
		return decimal.Zero
	}
	return *ci.ValorEstimado
}
