package networks

import (
	"math/big"
	"strings"
)

// chainNames is keyed by the decimal chain id.
var chainNames = map[string]string{
	// Ethereum
	"1":  "Ethereum - MainNet",
	"3":  "Ethereum - Ropsten",
	"4":  "Ethereum - Rinkeby",
	"42": "Ethereum - Kovan",

	// BNB Smart Chain
	"56": "BSC - MainNet",
	"97": "BSC - Testnet",
}

// Name returns the display label for a chain id written exactly in decimal
// ("56") or as a 0x hex quantity ("0x38"). Anything else, including leading
// zeros or surrounding spaces, yields "".
func Name(chainID string) string {
	if hex, ok := strings.CutPrefix(chainID, "0x"); ok {
		if hex == "" || hex[0] == '0' || !isHex(hex) {
			return ""
		}
		n, ok := new(big.Int).SetString(hex, 16)
		if !ok {
			return ""
		}
		return chainNames[n.String()]
	}
	return chainNames[chainID]
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// NormalizeChainID returns the canonical decimal form of a chain id. It is
// lenient about case, padding and leading zeros, unlike Name.
func NormalizeChainID(chainID string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(chainID))
	if s == "" {
		return "", false
	}

	base := 10
	if strings.HasPrefix(s, "0x") {
		base = 16
		s = s[2:]
	}
	if s == "" || s[0] == '-' || s[0] == '+' {
		return "", false
	}

	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return "", false
	}
	return n.String(), true
}

// ToHex returns the 0x form of a chain id, or "" if it does not parse.
func ToHex(chainID string) string {
	id, ok := NormalizeChainID(chainID)
	if !ok {
		return ""
	}
	n, _ := new(big.Int).SetString(id, 10)
	return "0x" + n.Text(16)
}

// Known lists the chain ids that have a label, in ascending order.
func Known() []string {
	return []string{"1", "3", "4", "42", "56", "97"}
}
