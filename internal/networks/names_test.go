package networks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		chainID string
		want    string
	}{
		{"1", "Ethereum - MainNet"},
		{"3", "Ethereum - Ropsten"},
		{"4", "Ethereum - Rinkeby"},
		{"42", "Ethereum - Kovan"},
		{"56", "BSC - MainNet"},
		{"97", "BSC - Testnet"},
		{"0x1", "Ethereum - MainNet"},
		{"0x38", "BSC - MainNet"},
		{"0x2A", "Ethereum - Kovan"},
		{"0X2A", ""},
		{"01", ""},
		{" 1 ", ""},
		{"0x01", ""},
		{"1.0", ""},
		{"999", ""},
		{"", ""},
		{"0x", ""},
		{"mainnet", ""},
		{"-1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.chainID, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.chainID))
		})
	}
}

func TestKnownAllHaveNames(t *testing.T) {
	for _, id := range Known() {
		assert.NotEmpty(t, Name(id), id)
	}
	assert.Len(t, Known(), len(chainNames))
}

func TestNormalizeChainID(t *testing.T) {
	id, ok := NormalizeChainID(" 0X2A ")
	assert.True(t, ok)
	assert.Equal(t, "42", id)

	_, ok = NormalizeChainID("0x")
	assert.False(t, ok)
}

func TestToHex(t *testing.T) {
	assert.Equal(t, "0x38", ToHex("56"))
	assert.Equal(t, "0x1", ToHex("0x01"))
	assert.Equal(t, "", ToHex("nope"))
}
