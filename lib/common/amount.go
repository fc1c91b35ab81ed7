//
// Define the `Amount` type, the unit in which native coins and tokens are
// counted by the engine and its ledger.
//
// - `Add` / `Sub` do an addition / substraction and return an error object
// - `MustAdd` / `MustSub` call `Add` / `Sub` and turn any `error` into a `panic`.
//   Those are provided for testing / quick prototyping and should not be in production code.
// - Invariant `panic`s if the instance it's called on violates its invariant
//
package common

import (
	"fmt"
	"math/big"
	"strconv"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"boscoin.io/gasmanager/lib/errors"
)

const (
	// The maximum amount any single account can hold
	MaximumBalance Amount = 1 << 62
	// An invalid value, used to make an instance unusable
	invalidValue = Amount(MaximumBalance + 1)
)

type Amount uint64

// Check this type's invariant, that is, its value is <= MaximumBalance
func (a Amount) Invariant() {
	if a > MaximumBalance {
		// `uint64` is necessary to avoid a recursive call to `String`
		panic(fmt.Errorf("Amount '%d' is higher than the maximum balance (%d)", uint64(a), uint64(MaximumBalance)))
	}
}

func (a Amount) String() string {
	a.Invariant()
	return strconv.FormatUint(uint64(a), 10)
}

// Add another `Amount`; overflowing `MaximumBalance` returns an error.
func (a Amount) Add(added Amount) (n Amount, err error) {
	a.Invariant()
	added.Invariant()
	if n = a + added; n > MaximumBalance {
		err = errors.ParameterOutOfRange.Clone().SetData("amount", "overflow")
	}
	return
}

// Counterpart of `Add` which panic instead of returning an error
func (a Amount) MustAdd(added Amount) Amount {
	if v, err := a.Add(added); err != nil {
		panic(err)
	} else {
		return v
	}
}

// Sub returns `InsufficientBalance` on underflow, along with an invalid
// value which would trigger a `panic` if used.
func (a Amount) Sub(sub Amount) (Amount, error) {
	a.Invariant()
	sub.Invariant()
	if a < sub {
		return invalidValue, errors.InsufficientBalance
	}
	return a - sub, nil
}

// Counterpart of `Sub` which panic instead of returning an error
func (a Amount) MustSub(sub Amount) Amount {
	if v, err := a.Sub(sub); err != nil {
		panic(err)
	} else {
		return v
	}
}

// Bytes32 is the uint256 big-endian encoding used inside fingerprints.
func (a Amount) Bytes32() []byte {
	return ethcommon.LeftPadBytes(new(big.Int).SetUint64(uint64(a)).Bytes(), 32)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("\"%s\"", a.String())), nil
}

// If Unmarshalling errors, `a` will have an `invalidValue`
func (a *Amount) UnmarshalJSON(b []byte) (err error) {
	if len(b) > 1 && b[0] == '"' {
		b = b[1 : len(b)-1]
	}
	*a, err = AmountFromString(string(b))
	return
}

// Parse an `Amount` from a string consisting only of numbers
func AmountFromString(str string) (Amount, error) {
	value, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return invalidValue, errors.BadRequestParameter.Clone().SetData("amount", str)
	}
	if Amount(value) > MaximumBalance {
		return invalidValue, errors.ParameterOutOfRange.Clone().SetData("amount", str)
	}

	return Amount(value), nil
}

// Same as AmountFromString, except it `panic`s if an error happens
func MustAmountFromString(str string) Amount {
	if value, err := AmountFromString(str); err != nil {
		panic(err)
	} else {
		return value
	}
}
