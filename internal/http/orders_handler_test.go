package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderPayloadToInput(t *testing.T) {
	t.Run("parses RFC3339 order dates", func(t *testing.T) {
		p := orderPayload{
			OrderDate: "2025-03-01T04:00:00Z",
			Game:      "Dragon Saga",
			TotalPaid: "1,234.50 ฿",
			Cost:      1000,
		}

		input, err := p.toInput()
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC), input.OrderDate.UTC())
		assert.Equal(t, "1234.5", input.TotalPaid.String())
		assert.Equal(t, "1000", input.Cost.String())
	})

	t.Run("bare dates are Bangkok midnights", func(t *testing.T) {
		p := orderPayload{OrderDate: "2025-03-01"}

		input, err := p.toInput()
		require.NoError(t, err)
		// Bangkok midnight is the previous day 17:00 UTC.
		assert.Equal(t, time.Date(2025, 2, 28, 17, 0, 0, 0, time.UTC), input.OrderDate.UTC())
	})

	t.Run("rejects unparseable dates", func(t *testing.T) {
		p := orderPayload{OrderDate: "01/03/2025"}

		_, err := p.toInput()
		assert.Error(t, err)
	})

	t.Run("defaults item quantity to one", func(t *testing.T) {
		p := orderPayload{
			OrderDate: "2025-03-01",
			Items: []orderItemPayload{
				{PackageName: "60 Gems", Quantity: 0, UnitPrice: "35.00"},
				{PackageName: "300 Gems", Quantity: 3, UnitPrice: nil},
			},
		}

		input, err := p.toInput()
		require.NoError(t, err)
		require.Len(t, input.Items, 2)
		assert.Equal(t, 1, input.Items[0].Quantity)
		assert.Equal(t, "35", input.Items[0].UnitPrice.String())
		assert.Equal(t, 3, input.Items[1].Quantity)
		assert.True(t, input.Items[1].UnitPrice.IsZero())
	})
}
