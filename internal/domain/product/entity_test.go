package product

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeLines(t *testing.T) {
	merged := MergeLines([]StockLine{
		{ProductID: "prod-b", BranchID: "branch-1", Quantity: 1},
		{ProductID: "prod-a", BranchID: "branch-2", Quantity: 2},
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 3},
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 3},
	})

	// Parcelas do mesmo (produto, filial) somam e a ordem é determinística
	require.Len(t, merged, 3)
	assert.Equal(t, StockLine{ProductID: "prod-a", BranchID: "branch-1", Quantity: 6}, merged[0])
	assert.Equal(t, StockLine{ProductID: "prod-a", BranchID: "branch-2", Quantity: 2}, merged[1])
	assert.Equal(t, StockLine{ProductID: "prod-b", BranchID: "branch-1", Quantity: 1}, merged[2])
}

func TestMergeLinesOpposingDeltasCancel(t *testing.T) {
	merged := MergeLines([]StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 3},
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: -3},
	})

	require.Len(t, merged, 1)
	assert.Equal(t, 0, merged[0].Quantity)
}

func TestValidateLines(t *testing.T) {
	err := ValidateLines(nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = ValidateLines([]StockLine{{ProductID: "prod-a", BranchID: "branch-1", Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = ValidateLines([]StockLine{{ProductID: "", BranchID: "branch-1", Quantity: 1}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = ValidateLines([]StockLine{{ProductID: "prod-a", BranchID: "branch-1", Quantity: 1}})
	assert.NoError(t, err)
}

func TestInsufficientStockErrorUnwraps(t *testing.T) {
	err := &InsufficientStockError{Shortages: []Shortage{
		{ProductID: "prod-a", BranchID: "branch-1", Requested: 6, Available: 5},
	}}

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Contains(t, err.Error(), "solicitado 6")
}
