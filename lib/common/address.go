package common

import (
	"math/big"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"boscoin.io/gasmanager/lib/errors"
)

// Address identifies voters, guardians, voter sources, tokens and accounts.
type Address = ethcommon.Address

// Target is the subject of a vote: an address, a raw parameter value or a
// fingerprint, always as a 32 byte big-endian integer.
type Target = ethcommon.Hash

var (
	ZeroAddress Address
	ZeroTarget  Target

	// DefaultBurnAddress receives burned coins and tokens.
	DefaultBurnAddress = ethcommon.HexToAddress("0x000000000000000000000000000000000000dEaD")
)

// ParseAddress accepts a hex address with or without the `0x` prefix.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !ethcommon.IsHexAddress(s) {
		return ZeroAddress, errors.InvalidAddress.Clone().SetData("address", s)
	}

	return ethcommon.HexToAddress(s), nil
}

func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}

	return a
}

func IsZeroAddress(a Address) bool {
	return a == ZeroAddress
}

// AddressTarget casts an address into a target, the address occupies the
// lowest 20 bytes.
func AddressTarget(a Address) Target {
	return ethcommon.BytesToHash(a.Bytes())
}

// TargetAddress is the reverse of AddressTarget.
func TargetAddress(t Target) Address {
	return ethcommon.BytesToAddress(t.Bytes())
}

func ValueTarget(v uint64) Target {
	return ethcommon.BigToHash(new(big.Int).SetUint64(v))
}

// TargetValue returns the target as uint64; `ok` is false when it does not
// fit.
func TargetValue(t Target) (v uint64, ok bool) {
	b := t.Big()
	if !b.IsUint64() {
		return 0, false
	}

	return b.Uint64(), true
}

// ParseTarget parses a hex encoded target, shorter values are left padded.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) < 1 || len(s) > 64 {
		return ZeroTarget, errors.BadRequestParameter.Clone().SetData("target", s)
	}

	b, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return ZeroTarget, errors.BadRequestParameter.Clone().SetData("target", s)
	}

	return ethcommon.BigToHash(b), nil
}
