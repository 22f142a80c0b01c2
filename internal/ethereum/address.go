package ethereum

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsAddress reports whether s is a 0x-prefixed 20-byte hex address.
func IsAddress(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(strings.ToLower(s), "0x") && common.IsHexAddress(s)
}

// Normalize returns the EIP-55 checksummed form of an address.
func Normalize(s string) string {
	return common.HexToAddress(strings.TrimSpace(s)).Hex()
}
