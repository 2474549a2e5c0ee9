package http

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirrorcaps/internal/delivery/http/dto"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestValidatorDecimalRules(t *testing.T) {
	v := NewValidator()

	t.Run("valid deposit passes", func(t *testing.T) {
		req := dto.CreateDepositRequest{
			Amount: dec(t, "100.50"),
			Coin:   "BTC",
		}
		assert.NoError(t, v.Validate(&req))
	})

	t.Run("zero amount fails gt rule", func(t *testing.T) {
		req := dto.CreateDepositRequest{
			Amount: dec(t, "0"),
			Coin:   "BTC",
		}
		err := v.Validate(&req)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "Amount", verr.Fields[0].Field)
	})

	t.Run("interest rate above 1 fails lte rule", func(t *testing.T) {
		req := dto.CreateTradeRequest{
			Package:      "Starter",
			InterestRate: dec(t, "1.5"),
			Category:     "Crypto",
		}
		err := v.Validate(&req)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "InterestRate", verr.Fields[0].Field)
		assert.Equal(t, "lte", verr.Fields[0].Rule)
	})

	t.Run("unknown category fails oneof rule", func(t *testing.T) {
		req := dto.CreateTradeRequest{
			Package:      "Starter",
			InterestRate: dec(t, "0.02"),
			Category:     "Bonds",
		}
		err := v.Validate(&req)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "oneof", verr.Fields[0].Rule)
	})

	t.Run("missing fields reported together", func(t *testing.T) {
		err := v.Validate(&dto.CreateDepositRequest{})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.GreaterOrEqual(t, len(verr.Fields), 2)
	})
}
