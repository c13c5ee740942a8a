package dbtypes

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderItemsRoundTrip(t *testing.T) {
	items := OrderItems{
		"p1": {Name: "Pomodori", Unit: "kg", Price: decimal.RequireFromString("2.50"), Qty: 3},
		"p2": {Name: "Uova", Unit: "pz", Price: decimal.RequireFromString("1.80"), Qty: 2},
	}

	raw, err := items.Value()
	require.NoError(t, err)

	var scanned OrderItems
	require.NoError(t, scanned.Scan(raw))

	require.Len(t, scanned, 2)
	assert.True(t, scanned["p1"].Price.Equal(decimal.RequireFromString("2.50")))
	assert.Equal(t, 3, scanned["p1"].Qty)
	assert.Equal(t, "Uova", scanned["p2"].Name)
}

func TestOrderItemsTotalMatchesLineSubtotals(t *testing.T) {
	items := OrderItems{
		"p1": {Name: "Pomodori", Unit: "kg", Price: decimal.RequireFromString("2.50"), Qty: 3},
		"p2": {Name: "Uova", Unit: "pz", Price: decimal.RequireFromString("1.80"), Qty: 2},
	}

	assert.True(t, items.Total().Equal(decimal.RequireFromString("11.10")),
		"total was %s", items.Total())
}

func TestOrderItemsScanNilAndEmpty(t *testing.T) {
	var items OrderItems
	require.NoError(t, items.Scan(nil))
	assert.Empty(t, items)

	val, err := items.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", val)
}
