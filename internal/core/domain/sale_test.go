package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcardoso/brecho-be/internal/core/domain"
)

func TestParsePaymentMethod(t *testing.T) {
	for _, m := range domain.PaymentMethods {
		parsed, err := domain.ParsePaymentMethod(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	_, err := domain.ParsePaymentMethod("Bitcoin")
	assert.ErrorIs(t, err, domain.ErrUnknownPaymentMethod)

	_, err = domain.ParsePaymentMethod("")
	assert.ErrorIs(t, err, domain.ErrUnknownPaymentMethod)
}

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name        string
		bruto       float64
		desconto    float64
		method      domain.PaymentMethod
		wantApplied float64
		wantLiquido float64
	}{
		{
			name:  "discount_within_gross",
			bruto: 200, desconto: 20, method: domain.PaymentPix,
			wantApplied: 20, wantLiquido: 180,
		},
		{
			name:  "discount_capped_at_gross",
			bruto: 100, desconto: 250, method: domain.PaymentCash,
			wantApplied: 100, wantLiquido: 0,
		},
		{
			name:  "barter_forces_zero_discount",
			bruto: 150, desconto: 50, method: domain.PaymentBarter,
			wantApplied: 0, wantLiquido: 150,
		},
		{
			name:  "negative_discount_treated_as_zero",
			bruto: 80, desconto: -10, method: domain.PaymentCreditCard,
			wantApplied: 0, wantLiquido: 80,
		},
		{
			name:  "zero_gross_never_goes_negative",
			bruto: 0, desconto: 30, method: domain.PaymentPix,
			wantApplied: 0, wantLiquido: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applied, liquido := domain.ApplyDiscount(
				decimal.NewFromFloat(tt.bruto),
				decimal.NewFromFloat(tt.desconto),
				tt.method,
			)
			assert.True(t, applied.Equal(decimal.NewFromFloat(tt.wantApplied)),
				"applied: expected %v, got %s", tt.wantApplied, applied)
			assert.True(t, liquido.Equal(decimal.NewFromFloat(tt.wantLiquido)),
				"liquido: expected %v, got %s", tt.wantLiquido, liquido)
			assert.False(t, liquido.IsNegative())
		})
	}
}

func TestSale_Validate(t *testing.T) {
	line := domain.SaleItem{RoupaID: 1, NomeItem: "Vestido Azul", Quantidade: 1,
		PrecoUnitario: decimal.NewFromInt(100)}

	tests := []struct {
		name    string
		sale    *domain.Sale
		wantErr error
	}{
		{
			name: "valid_pix_sale",
			sale: &domain.Sale{
				FormaPagamento: domain.PaymentPix,
				Itens:          []domain.SaleItem{line},
			},
		},
		{
			name: "barter_without_description",
			sale: &domain.Sale{
				FormaPagamento: domain.PaymentBarter,
				Itens:          []domain.SaleItem{line},
			},
			wantErr: domain.ErrBarterDescriptionRequired,
		},
		{
			name: "barter_with_blank_description",
			sale: &domain.Sale{
				FormaPagamento:   domain.PaymentBarter,
				DescricaoPermuta: "   ",
				Itens:            []domain.SaleItem{line},
			},
			wantErr: domain.ErrBarterDescriptionRequired,
		},
		{
			name: "barter_with_description",
			sale: &domain.Sale{
				FormaPagamento:   domain.PaymentBarter,
				DescricaoPermuta: "Troca por duas calças jeans",
				Itens:            []domain.SaleItem{line},
			},
		},
		{
			name: "barter_with_nonzero_discount",
			sale: &domain.Sale{
				FormaPagamento:   domain.PaymentBarter,
				DescricaoPermuta: "Troca por bolsa de couro",
				Desconto:         decimal.NewFromInt(10),
				Itens:            []domain.SaleItem{line},
			},
			wantErr: domain.ErrBarterDiscountNotAllowed,
		},
		{
			name: "unknown_method",
			sale: &domain.Sale{
				FormaPagamento: "Vale Presente",
				Itens:          []domain.SaleItem{line},
			},
			wantErr: domain.ErrUnknownPaymentMethod,
		},
		{
			name: "empty_items",
			sale: &domain.Sale{
				FormaPagamento: domain.PaymentPix,
			},
			wantErr: domain.ErrEmptySelection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sale.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSale_PrepareForStorage(t *testing.T) {
	sale := &domain.Sale{
		FormaPagamento: domain.PaymentPix,
		Itens: []domain.SaleItem{
			{RoupaID: 1, Quantidade: 2, PrecoUnitario: decimal.NewFromFloat(49.90)},
			{RoupaID: 2, Quantidade: 1, PrecoUnitario: decimal.NewFromInt(120)},
		},
	}

	sale.PrepareForStorage()

	assert.False(t, sale.Data.IsZero())
	assert.True(t, sale.Itens[0].Subtotal.Equal(decimal.NewFromFloat(99.80)))
	assert.True(t, sale.Itens[1].Subtotal.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, 3, sale.TotalQuantidade())
}
