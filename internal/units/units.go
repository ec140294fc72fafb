package units

import (
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/params"
)

// EtherDecimals is the number of decimals between wei and ether.
const EtherDecimals = 18

var (
	ErrInvalidDecimal  = errors.New("units: invalid decimal string")
	ErrTooManyDecimals = errors.New("units: fractional component exceeds decimals")
	ErrInvalidInteger  = errors.New("units: invalid integer string")
)

var ether = big.NewInt(params.Ether)

// ParseEther converts a decimal ether amount ("1.5") to wei.
func ParseEther(s string) (*big.Int, error) {
	return ParseUnits(s, EtherDecimals)
}

// ParseUnits converts a decimal string to an integer scaled by 10^decimals.
//
// Accepted forms: "1", "-1", "1.25", ".5", "5.". At least one digit is required.
func ParseUnits(s string, decimals uint8) (*big.Int, error) {
	raw := s

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if hasDot && strings.Contains(frac, ".") {
		return nil, errors.Wrapf(ErrInvalidDecimal, "%q", raw)
	}
	if whole == "" && frac == "" {
		return nil, errors.Wrapf(ErrInvalidDecimal, "%q", raw)
	}
	if !allDigits(whole) || !allDigits(frac) {
		return nil, errors.Wrapf(ErrInvalidDecimal, "%q", raw)
	}

	frac = strings.TrimRight(frac, "0")
	if len(frac) > int(decimals) {
		return nil, errors.Wrapf(ErrTooManyDecimals, "%q has more than %d decimals", raw, decimals)
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))

	digits := strings.TrimLeft(whole+frac, "0")
	if digits == "" {
		return new(big.Int), nil
	}

	out, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidDecimal, "%q", raw)
	}
	if negative {
		out.Neg(out)
	}
	return out, nil
}

// FormatEther renders a wei amount in ether, e.g. 1e18 -> "1.0".
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, EtherDecimals)
}

// FormatUnits renders amount / 10^decimals with every significant fractional
// digit and at least one digit after the point.
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0.0"
	}

	abs := new(big.Int).Abs(amount)
	base := pow10(decimals)

	intPart, fracPart := new(big.Int).QuoRem(abs, base, new(big.Int))

	fracStr := fracPart.String()
	if len(fracStr) < int(decimals) {
		fracStr = strings.Repeat("0", int(decimals)-len(fracStr)) + fracStr
	}
	fracStr = strings.TrimRight(fracStr, "0")
	if fracStr == "" {
		fracStr = "0"
	}

	out := intPart.String() + "." + fracStr
	if amount.Sign() < 0 {
		out = "-" + out
	}
	return out
}

// FormatUnitsTrim converts a token balance to a short human string:
// - divides by 10^decimals
// - trims to maxFrac decimal places
// - removes trailing zeros
//
// Examples:
//
//	balance=1234500000000000000, decimals=18 -> "1.2345"
//	balance=1000000000000000000, decimals=18 -> "1"
//	balance=1, decimals=18, maxFrac=6 -> "0"
func FormatUnitsTrim(amount *big.Int, decimals uint8, maxFrac int) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}

	sign := ""
	if amount.Sign() < 0 {
		sign = "-"
	}

	intPart, fracPart := new(big.Int).QuoRem(new(big.Int).Abs(amount), pow10(decimals), new(big.Int))

	if fracPart.Sign() == 0 || maxFrac <= 0 {
		return sign + intPart.String()
	}

	fracStr := fracPart.String()
	if len(fracStr) < int(decimals) {
		fracStr = strings.Repeat("0", int(decimals)-len(fracStr)) + fracStr
	}
	if len(fracStr) > maxFrac {
		fracStr = fracStr[:maxFrac]
	}

	fracStr = strings.TrimRight(fracStr, "0")
	if fracStr == "" {
		if intPart.Sign() == 0 {
			return "0"
		}
		return sign + intPart.String()
	}

	return sign + intPart.String() + "." + fracStr
}

// ParseWei parses an integer numeral in base 10 or 0x-prefixed hex.
func ParseWei(s string) (*big.Int, error) {
	raw := s

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
		if s == "" || !allHex(s) {
			return nil, errors.Wrapf(ErrInvalidInteger, "%q", raw)
		}
	} else if s == "" || !allDigits(s) {
		return nil, errors.Wrapf(ErrInvalidInteger, "%q", raw)
	}

	out, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidInteger, "%q", raw)
	}
	if negative {
		out.Neg(out)
	}
	return out, nil
}

// WeiToEther is ParseWei followed by FormatEther.
func WeiToEther(s string) (string, error) {
	wei, err := ParseWei(s)
	if err != nil {
		return "", err
	}
	return FormatEther(wei), nil
}

func pow10(decimals uint8) *big.Int {
	if decimals == EtherDecimals {
		return ether
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func allHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
