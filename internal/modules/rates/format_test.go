package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	service := newTestService(Config{})

	tests := []struct {
		name   string
		amount float64
		code   string
		want   string
	}{
		{"usd with grouping and cents", 1234.5, "USD", "$1,234.50"},
		{"usdc follows usd conventions", 1234.5, "USDC", "$1,234.50"},
		{"cop has no fraction digits", 4100, "COP", "$4.100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.FormatCurrency(tt.amount, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCurrency_UnknownAsset(t *testing.T) {
	service := newTestService(Config{})

	_, err := service.FormatCurrency(100, "XYZ")
	assert.Error(t, err)
}
