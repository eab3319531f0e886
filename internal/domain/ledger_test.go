package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog(products ...Product) map[int64]Product {
	m := make(map[int64]Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}

func TestBuildLedger_TotalsAndDecrements(t *testing.T) {
	products := catalog(
		Product{ID: 1, Name: "Carrara", Price: 1000, Stock: 5},
		Product{ID: 2, Name: "Nero Marquina", Price: 2550, Stock: 3},
	)

	ledger, err := BuildLedger(products, []LineRequest{
		{ProductID: 2, Quantity: 2},
		{ProductID: 1, Quantity: 5},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2*2550+5*1000), ledger.Total)
	assert.Equal(t, []StockDecrement{{ProductID: 2, Quantity: 2}, {ProductID: 1, Quantity: 5}}, ledger.Decrements)
	assert.Equal(t, []OrderLine{
		{ProductID: 2, Quantity: 2, UnitPrice: 2550},
		{ProductID: 1, Quantity: 5, UnitPrice: 1000},
	}, ledger.Lines)
	assert.Equal(t, []int64{2, 1}, ledger.DecrementIDs())
}

func TestBuildLedger_TotalMatchesLineSum(t *testing.T) {
	products := catalog(
		Product{ID: 1, Price: 199, Stock: 100},
		Product{ID: 2, Price: 0, Stock: 100},
		Product{ID: 3, Price: 123456, Stock: 100},
	)

	ledger, err := BuildLedger(products, []LineRequest{
		{ProductID: 1, Quantity: 7},
		{ProductID: 2, Quantity: 3},
		{ProductID: 3, Quantity: 1},
		{ProductID: 1, Quantity: 2},
	})
	require.NoError(t, err)

	var sum int64
	for _, l := range ledger.Lines {
		sum += l.Amount()
	}
	assert.Equal(t, sum, ledger.Total)
}

func TestBuildLedger_InsufficientStockNamesProduct(t *testing.T) {
	products := catalog(Product{ID: 7, Name: "Travertine", Price: 10, Stock: 2})

	_, err := BuildLedger(products, []LineRequest{{ProductID: 7, Quantity: 3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrInsufficientStock))

	detail, ok := e.DetailOf(err)
	require.True(t, ok)
	assert.Contains(t, detail, "Travertine")
}

func TestBuildLedger_DuplicateLinesCheckedTogether(t *testing.T) {
	products := catalog(Product{ID: 1, Name: "Onyx", Price: 10, Stock: 5})

	_, err := BuildLedger(products, []LineRequest{
		{ProductID: 1, Quantity: 3},
		{ProductID: 1, Quantity: 3},
	})
	assert.ErrorIs(t, err, e.ErrInsufficientStock)
}

func TestBuildLedger_UnknownProduct(t *testing.T) {
	_, err := BuildLedger(catalog(), []LineRequest{{ProductID: 42, Quantity: 1}})
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestBuildLedger_NonPositiveQuantity(t *testing.T) {
	products := catalog(Product{ID: 1, Price: 10, Stock: 5})

	for _, qty := range []int64{0, -1} {
		_, err := BuildLedger(products, []LineRequest{{ProductID: 1, Quantity: qty}})
		assert.ErrorIs(t, err, e.ErrInvalidRequest)
	}
}

func TestBuildLedger_Overflow(t *testing.T) {
	products := catalog(Product{ID: 1, Price: math.MaxInt64 / 2, Stock: math.MaxInt64})

	_, err := BuildLedger(products, []LineRequest{{ProductID: 1, Quantity: 3}})
	assert.ErrorIs(t, err, e.ErrInvalidRequest)
}

func TestBuildLedger_DoesNotMutateInput(t *testing.T) {
	products := catalog(Product{ID: 1, Price: 10, Stock: 5})

	_, err := BuildLedger(products, []LineRequest{{ProductID: 1, Quantity: 5}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), products[1].Stock)
}
