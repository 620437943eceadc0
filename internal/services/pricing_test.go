package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagepass/internal/models"
)

func TestComputePrice(t *testing.T) {
	tests := []struct {
		name          string
		basePrice     string
		quantity      int
		enteredCode   string
		promoCode     string
		promoDiscount int
		wantTotal     string
		wantCents     int64
		wantDisplay   string
		wantMessage   string
	}{
		{
			name:      "no promo entered",
			basePrice: "50.00", quantity: 1,
			wantTotal: "50.00", wantCents: 5000, wantDisplay: "$50.00",
		},
		{
			name:      "quantity three with twenty percent promo",
			basePrice: "50.00", quantity: 3,
			enteredCode: "SAVE20", promoCode: "SAVE20", promoDiscount: 20,
			wantTotal: "120.00", wantCents: 12000, wantDisplay: "$120.00",
			wantMessage: "20% discount applied",
		},
		{
			name:      "promo match is case-insensitive",
			basePrice: "100.00", quantity: 1,
			enteredCode: "save10", promoCode: "SAVE10", promoDiscount: 10,
			wantTotal: "90.00", wantCents: 9000, wantDisplay: "$90.00",
			wantMessage: "10% discount applied",
		},
		{
			name:      "non-matching code",
			basePrice: "100.00", quantity: 2,
			enteredCode: "NOPE", promoCode: "SAVE10", promoDiscount: 10,
			wantTotal: "200.00", wantCents: 20000, wantDisplay: "$200.00",
			wantMessage: "Invalid code",
		},
		{
			name:      "code entered but none configured",
			basePrice: "10.00", quantity: 1,
			enteredCode: "SAVE10",
			wantTotal: "10.00", wantCents: 1000, wantDisplay: "$10.00",
			wantMessage: "Invalid code",
		},
		{
			name:      "stored discount above 100 is clamped",
			basePrice: "40.00", quantity: 2,
			enteredCode: "FREE", promoCode: "FREE", promoDiscount: 150,
			wantTotal: "0.00", wantCents: 0, wantDisplay: "$0.00",
			wantMessage: "100% discount applied",
		},
		{
			name:      "negative stored discount is clamped to zero",
			basePrice: "40.00", quantity: 1,
			enteredCode: "ODD", promoCode: "ODD", promoDiscount: -10,
			wantTotal: "40.00", wantCents: 4000, wantDisplay: "$40.00",
			wantMessage: "0% discount applied",
		},
		{
			name:      "rounds to cents",
			basePrice: "9.99", quantity: 3,
			enteredCode: "THIRD", promoCode: "THIRD", promoDiscount: 33,
			// 9.99 * 3 * 0.67 = 20.0799 -> 20.08
			wantTotal: "20.08", wantCents: 2008, wantDisplay: "$20.08",
			wantMessage: "33% discount applied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := decimal.RequireFromString(tt.basePrice)
			quote, err := ComputePrice(base, tt.quantity, tt.enteredCode, tt.promoCode, tt.promoDiscount)
			require.NoError(t, err)

			assert.Equal(t, tt.wantTotal, quote.Total.StringFixed(2))
			assert.Equal(t, tt.wantCents, quote.AmountCents)
			assert.Equal(t, tt.wantDisplay, quote.Display)
			assert.Equal(t, tt.wantMessage, quote.PromoMessage)
			assert.False(t, quote.Total.IsNegative())
		})
	}
}

func TestComputePrice_RejectsBadQuantity(t *testing.T) {
	base := decimal.RequireFromString("50.00")

	for _, qty := range []int{0, -1, -100} {
		_, err := ComputePrice(base, qty, "", "", 0)
		require.Error(t, err)
		assert.True(t, models.IsValidationError(err))
	}
}

func TestComputePrice_Idempotent(t *testing.T) {
	base := decimal.RequireFromString("73.21")

	first, err := ComputePrice(base, 7, "code", "CODE", 15)
	require.NoError(t, err)
	second, err := ComputePrice(base, 7, "code", "CODE", 15)
	require.NoError(t, err)

	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, first.AmountCents, second.AmountCents)
	assert.Equal(t, first.PromoMessage, second.PromoMessage)
}

func TestPriceEvent(t *testing.T) {
	event := &models.Event{
		Title:         "Summer Session",
		Price:         decimal.RequireFromString("50.00"),
		PromoCode:     "SAVE20",
		PromoDiscount: 20,
	}

	quote, err := PriceEvent(event, 3, "save20")
	require.NoError(t, err)
	assert.Equal(t, "$120.00", quote.Display)
	assert.Equal(t, int64(12000), quote.AmountCents)
}

func TestPriceProduct(t *testing.T) {
	product := &models.Product{
		Name:  "Monthly Pass",
		Price: decimal.RequireFromString("19.99"),
	}

	quote, err := PriceProduct(product, 1)
	require.NoError(t, err)
	assert.Equal(t, "$19.99", quote.Display)
	assert.Equal(t, int64(1999), quote.AmountCents)
	assert.Empty(t, quote.PromoMessage)
}
