package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToGatewayAmount(t *testing.T) {
	assert.Equal(t, 10.00, ToGatewayAmount(1000))
	assert.Equal(t, 5000.00, ToGatewayAmount(500000))
	assert.Equal(t, 0.00, ToGatewayAmount(0))
	assert.Equal(t, 0.01, ToGatewayAmount(1))
	assert.Equal(t, 99.99, ToGatewayAmount(9999))
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "INR", NormalizeCurrency(""))
	assert.Equal(t, "INR", NormalizeCurrency("   "))
	assert.Equal(t, "INR", NormalizeCurrency("inr"))
	assert.Equal(t, "USD", NormalizeCurrency("usd"))
	assert.Equal(t, "EUR", NormalizeCurrency("EUR"))
	assert.Equal(t, "AED", NormalizeCurrency(" aed "))
}
