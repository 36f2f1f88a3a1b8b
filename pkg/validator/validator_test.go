package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID    uuid.UUID       `validate:"uuid_required"`
	Price decimal.Decimal `validate:"dec_gte0"`
	Code  string          `validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	ok := sample{ID: uuid.New(), Price: decimal.RequireFromString("10.50"), Code: "D-1"}
	require.Empty(t, ValidateStruct(&ok))

	zero := ok
	zero.Price = decimal.Zero
	require.Empty(t, ValidateStruct(&zero))

	negative := ok
	negative.Price = decimal.RequireFromString("-0.01")
	errs := ValidateStruct(&negative)
	require.Len(t, errs, 1)
	require.Equal(t, "sample.Price", errs[0].FailedField)
	require.Equal(t, "dec_gte0", errs[0].Tag)

	missing := sample{Price: decimal.Zero}
	errs = ValidateStruct(&missing)
	require.Len(t, errs, 2)
	require.Equal(t, "uuid_required", errs[0].Tag)
	require.Equal(t, "required", errs[1].Tag)
}

type amounts struct {
	Paid  *decimal.Decimal `validate:"omitempty,dec_2dp"`
	Price decimal.Decimal  `validate:"dec_2dp"`
}

func TestTwoDecimalPlaces(t *testing.T) {
	exact := decimal.RequireFromString("204.990")
	require.Empty(t, ValidateStruct(&amounts{Paid: &exact, Price: decimal.RequireFromString("10.5")}))
	require.Empty(t, ValidateStruct(&amounts{Price: decimal.Zero}), "a missing amount is not checked")

	fine := decimal.RequireFromString("0.005")
	errs := ValidateStruct(&amounts{Paid: &fine, Price: decimal.RequireFromString("1.001")})
	require.Len(t, errs, 2)
	require.Equal(t, "amounts.Paid", errs[0].FailedField)
	require.Equal(t, "dec_2dp", errs[0].Tag)
	require.Equal(t, "dec_2dp", errs[1].Tag)
}
