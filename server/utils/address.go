package utils

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"game-lottery/server/constant"
	"github.com/asaskevich/govalidator"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"
	"strings"
)

const addressHexLength = 40

// Keccak256 hashes the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}

// NormalizeAddress validates a 0x prefixed 20 byte hex address and returns it
// lower-cased.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return "", constant.InvalidAddressError
	}

	body := address[2:]
	if len(body) != addressHexLength || !govalidator.IsHexadecimal(body) {
		return "", constant.InvalidAddressError
	}
	return "0x" + strings.ToLower(body), nil
}

// NewAddress derives a fresh address from 32 random bytes, keeping the last
// 20 bytes of their Keccak-256 hash.
func NewAddress() (string, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return "", err
	}
	sum := Keccak256(seed)
	return "0x" + hex.EncodeToString(sum[len(sum)-20:]), nil
}

// TxID builds a base58 receipt id for a committed mutation.
func TxID(kind string, roundNumber int, address string, nanos int64) string {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[:8], uint64(roundNumber))
	binary.BigEndian.PutUint64(buf[8:], uint64(nanos))
	return base58.Encode(Keccak256([]byte(kind), buf, []byte(address)))
}
