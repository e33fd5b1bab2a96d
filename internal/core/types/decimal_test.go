package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_String(t *testing.T) {
	tests := []struct {
		name string
		qty  Quantity
		want string
	}{
		{"zero", 0, "0.0000"},
		{"whole", NewQuantityFromFloat64(5), "5.0000"},
		{"fractional", NewQuantityFromFloat64(2.5), "2.5000"},
		{"four digits", NewQuantityFromFloat64(0.1234), "0.1234"},
		{"negative", NewQuantityFromFloat64(-1.25), "-1.2500"},
		{"negative fraction only", NewQuantityFromFloat64(-0.5), "-0.5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.qty.String())
		})
	}
}

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Quantity
	}{
		{"number", `3.5`, 35000},
		{"string", `"3.5"`, 35000},
		{"integer", `10`, 100000},
		{"negative", `-0.25`, -2500},
		{"leading dot", `".5"`, 5000},
		{"extra digits truncated", `"1.23456"`, 12345},
		{"exponent", `1e2`, 1000000},
		{"null", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.input), &q))
			assert.Equal(t, tt.want, q)
		})
	}

	t.Run("invalid input", func(t *testing.T) {
		var q Quantity
		assert.Error(t, json.Unmarshal([]byte(`"abc"`), &q))
	})
}

func TestQuantity_MarshalJSON(t *testing.T) {
	type payload struct {
		Qty Quantity `json:"qty"`
	}

	data, err := json.Marshal(payload{Qty: NewQuantityFromFloat64(12.75)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"qty":12.7500}`, string(data))
}

func TestMustMoney(t *testing.T) {
	m := MustMoney("199.99")
	assert.Equal(t, "199.99", m.String())

	assert.Panics(t, func() { MustMoney("not-a-number") })
}
