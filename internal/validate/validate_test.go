package validate

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	inErrors "github.com/Alturino/gearshare/internal/errors"
)

type priced struct {
	Name  string           `json:"name"  validate:"required"`
	Price decimal.Decimal  `json:"price" validate:"decimalgte0"`
	Extra *decimal.Decimal `json:"extra" validate:"omitempty,decimalgte0"`
}

func TestStruct(t *testing.T) {
	c := context.Background()
	negative := decimal.NewFromInt(-1)
	zero := decimal.Zero

	testCases := []struct {
		name    string
		input   priced
		wantErr bool
	}{
		{name: "zero price", input: priced{Name: "tent", Price: decimal.Zero}},
		{name: "positive price with extra", input: priced{Name: "tent", Price: decimal.NewFromInt(10), Extra: &zero}},
		{name: "negative price", input: priced{Name: "tent", Price: negative}, wantErr: true},
		{name: "negative extra", input: priced{Name: "tent", Price: decimal.Zero, Extra: &negative}, wantErr: true},
		{name: "missing name", input: priced{Price: decimal.Zero}, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(c, tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, inErrors.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}
