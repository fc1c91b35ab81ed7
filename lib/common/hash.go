package common

import (
	"github.com/ethereum/go-ethereum/crypto"
)

// FundFingerprint identifies a proposed payment of `amount` to `recipient`;
// keccak256(recipient ‖ uint256(amount)).
func FundFingerprint(recipient Address, amount Amount) Target {
	return crypto.Keccak256Hash(recipient.Bytes(), amount.Bytes32())
}

// TokenBurnFingerprint is keccak256(token ‖ uint256(amount)).
func TokenBurnFingerprint(token Address, amount Amount) Target {
	return crypto.Keccak256Hash(token.Bytes(), amount.Bytes32())
}

// CoinBurnFingerprint is keccak256(uint256(amount)).
func CoinBurnFingerprint(amount Amount) Target {
	return crypto.Keccak256Hash(amount.Bytes32())
}
