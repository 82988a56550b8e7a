package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	partyCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	groupCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	PartyCodeLength = 6
	GroupCodeLength = 4
)

// CodeGenerator produces a candidate join code. Uniqueness is checked by the caller.
type CodeGenerator func() (string, error)

func randomCode(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}

// NewPartyCode returns six random uppercase letters.
func NewPartyCode() (string, error) {
	return randomCode(partyCodeAlphabet, PartyCodeLength)
}

// NewGroupCode returns four random uppercase letters or digits.
func NewGroupCode() (string, error) {
	return randomCode(groupCodeAlphabet, GroupCodeLength)
}
