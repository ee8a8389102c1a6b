// internal/core/domain/sale.go
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the fixed payment enumeration. Wire values are the
// Portuguese labels the storefront uses.
type PaymentMethod string

const (
	PaymentPix        PaymentMethod = "Pix"
	PaymentCash       PaymentMethod = "Dinheiro"
	PaymentCreditCard PaymentMethod = "Cartão de Crédito"
	PaymentDebitCard  PaymentMethod = "Cartão de Débito"
	PaymentBankSlip   PaymentMethod = "Boleto"
	PaymentCheck      PaymentMethod = "Cheque"
	PaymentBarter     PaymentMethod = "Permuta"
)

// PaymentMethods lists every accepted method, in display order.
var PaymentMethods = []PaymentMethod{
	PaymentPix,
	PaymentCash,
	PaymentCreditCard,
	PaymentDebitCard,
	PaymentBankSlip,
	PaymentCheck,
	PaymentBarter,
}

// ParsePaymentMethod validates a wire value against the enumeration.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for _, m := range PaymentMethods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", ErrUnknownPaymentMethod
}

// Sale is one completed sale, either a consignment conversion
// (CondicionalID set) or a direct sale from free stock.
type Sale struct {
	ID               int64           `json:"id"`
	CondicionalID    *int64          `json:"condicional_id,omitempty"`
	ClienteID        *int64          `json:"cliente_id,omitempty"`
	ClienteNome      string          `json:"cliente_nome,omitempty"`
	FormaPagamento   PaymentMethod   `json:"forma_pagamento"`
	ValorBruto       decimal.Decimal `json:"valor_bruto"`
	Desconto         decimal.Decimal `json:"desconto"`
	ValorLiquido     decimal.Decimal `json:"valor_liquido"`
	Observacoes      string          `json:"observacoes,omitempty"`
	DescricaoPermuta string          `json:"descricao_permuta,omitempty"`
	Data             time.Time       `json:"data"`
	Itens            []SaleItem      `json:"itens"`
}

// SaleItem is one itemized line of a sale.
type SaleItem struct {
	ID            int64           `json:"id"`
	VendaID       int64           `json:"venda_id"`
	RoupaID       int64           `json:"roupas_id"`
	NomeItem      string          `json:"nome_item"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// Validate checks payment rules before a sale is persisted. Permuta
// requires a description and carries no discount; for any method the net
// amount must be consistent with bruto - desconto.
func (s *Sale) Validate() error {
	if _, err := ParsePaymentMethod(string(s.FormaPagamento)); err != nil {
		return err
	}
	if len(s.Itens) == 0 {
		return ErrEmptySelection
	}
	if s.FormaPagamento == PaymentBarter {
		if strings.TrimSpace(s.DescricaoPermuta) == "" {
			return ErrBarterDescriptionRequired
		}
		if !s.Desconto.IsZero() {
			return ErrBarterDiscountNotAllowed
		}
	}
	return nil
}

// ApplyDiscount computes the applied discount and net amount for a gross
// total. Permuta forces the discount to zero regardless of input; for all
// other methods the discount is capped at the gross so the net is never
// negative. Negative requested discounts are treated as zero.
func ApplyDiscount(bruto, desconto decimal.Decimal, method PaymentMethod) (applied, liquido decimal.Decimal) {
	if method == PaymentBarter || desconto.IsNegative() {
		return decimal.Zero, bruto
	}
	applied = desconto
	if applied.GreaterThan(bruto) {
		applied = bruto
	}
	return applied, bruto.Sub(applied)
}

// TotalQuantidade is the number of units sold across all lines.
func (s *Sale) TotalQuantidade() int {
	total := 0
	for i := range s.Itens {
		total += s.Itens[i].Quantidade
	}
	return total
}

// PrepareForStorage computes line subtotals and stamps the sale time.
func (s *Sale) PrepareForStorage() {
	if s.Data.IsZero() {
		s.Data = time.Now()
	}
	for i := range s.Itens {
		qty := decimal.NewFromInt(int64(s.Itens[i].Quantidade))
		s.Itens[i].Subtotal = s.Itens[i].PrecoUnitario.Mul(qty)
	}
}
