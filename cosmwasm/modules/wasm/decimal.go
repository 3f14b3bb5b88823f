package wasm

import (
	"encoding/json"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal256Places is the number of fractional digits a Decimal256 carries.
const Decimal256Places = 18

var (
	decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
	// Uint256::MAX atomics shifted by the fractional places.
	maxDecimal256 = decimal.NewFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)), -Decimal256Places)
)

// Decimal256 is the cosmwasm-std fixed-point decimal. It travels as a JSON string and is never negative.
// The zero value is 0.
type Decimal256 struct {
	d decimal.Decimal
}

func ParseDecimal256(s string) (Decimal256, error) {
	if !decimalPattern.MatchString(s) {
		return Decimal256{}, SchemaErrorf("", "invalid Decimal256 %q", s)
	}

	if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s)-dot-1 > Decimal256Places {
		return Decimal256{}, SchemaErrorf("", "invalid Decimal256 %q: more than %d fractional digits", s, Decimal256Places)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal256{}, SchemaErrorf("", "invalid Decimal256 %q: %s", s, err)
	}

	if d.GreaterThan(maxDecimal256) {
		return Decimal256{}, SchemaErrorf("", "invalid Decimal256 %q: value exceeds maximum", s)
	}

	return Decimal256{d: d}, nil
}

// MustDecimal256 panics on invalid input. Use it for constants only.
func MustDecimal256(s string) Decimal256 {
	d, err := ParseDecimal256(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDecimal256FromDecimal rejects negative, too precise and out of range values.
func NewDecimal256FromDecimal(d decimal.Decimal) (Decimal256, error) {
	if d.IsNegative() {
		return Decimal256{}, SchemaErrorf("", "invalid Decimal256 %s: negative", d.String())
	}
	if d.Exponent() < -Decimal256Places && !d.Equal(d.Truncate(Decimal256Places)) {
		return Decimal256{}, SchemaErrorf("", "invalid Decimal256 %s: more than %d fractional digits", d.String(), Decimal256Places)
	}
	if d.GreaterThan(maxDecimal256) {
		return Decimal256{}, SchemaErrorf("", "invalid Decimal256 %s: value exceeds maximum", d.String())
	}
	return Decimal256{d: d}, nil
}

func MaxDecimal256() Decimal256 {
	return Decimal256{d: maxDecimal256}
}

// String returns the canonical form: no trailing fractional zeros, no decimal point for whole numbers.
func (d Decimal256) String() string {
	return d.d.String()
}

func (d Decimal256) Decimal() decimal.Decimal {
	return d.d
}

func (d Decimal256) IsZero() bool {
	return d.d.IsZero()
}

func (d Decimal256) Equal(other Decimal256) bool {
	return d.d.Equal(other.d)
}

func (d Decimal256) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Decimal256) UnmarshalJSON(data []byte) error {
	var s string
	if err := decodeString(data, "", &s); err != nil {
		return err
	}

	parsed, err := ParseDecimal256(s)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}
