package wasm

import (
	"encoding/json"
	"math/big"
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	uintPattern = regexp.MustCompile(`^[0-9]+$`)
	maxUint128  = decimal.NewFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)), 0)
)

// Uint128 is the cosmwasm-std 128 bit unsigned integer, carried as a JSON string of digits.
// The zero value is 0.
type Uint128 struct {
	d decimal.Decimal
}

func ParseUint128(s string) (Uint128, error) {
	if !uintPattern.MatchString(s) {
		return Uint128{}, SchemaErrorf("", "invalid Uint128 %q", s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Uint128{}, SchemaErrorf("", "invalid Uint128 %q: %s", s, err)
	}

	if d.GreaterThan(maxUint128) {
		return Uint128{}, SchemaErrorf("", "invalid Uint128 %q: overflow", s)
	}

	return Uint128{d: d}, nil
}

func MustUint128(s string) Uint128 {
	u, err := ParseUint128(s)
	if err != nil {
		panic(err)
	}
	return u
}

func NewUint128FromUint64(v uint64) Uint128 {
	return Uint128{d: decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)}
}

func MaxUint128() Uint128 {
	return Uint128{d: maxUint128}
}

func (u Uint128) Add(other Uint128) (Uint128, error) {
	return checkedUint128(u.d.Add(other.d), "addition")
}

func (u Uint128) Mul(other Uint128) (Uint128, error) {
	return checkedUint128(u.d.Mul(other.d), "multiplication")
}

func checkedUint128(d decimal.Decimal, op string) (Uint128, error) {
	if d.GreaterThan(maxUint128) {
		return Uint128{}, SchemaErrorf("", "Uint128 overflow in %s", op)
	}
	return Uint128{d: d}, nil
}

func (u Uint128) String() string {
	return u.d.String()
}

func (u Uint128) BigInt() *big.Int {
	return u.d.BigInt()
}

func (u Uint128) Decimal() decimal.Decimal {
	return u.d
}

func (u Uint128) IsZero() bool {
	return u.d.IsZero()
}

func (u Uint128) Cmp(other Uint128) int {
	return u.d.Cmp(other.d)
}

func (u Uint128) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *Uint128) UnmarshalJSON(data []byte) error {
	var s string
	if err := decodeString(data, "", &s); err != nil {
		return err
	}

	parsed, err := ParseUint128(s)
	if err != nil {
		return err
	}

	*u = parsed
	return nil
}
