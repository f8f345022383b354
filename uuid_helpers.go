package main

import (
	"errors"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// newID returns a fresh random identifier for users, songs and playlists.
func newID() string {
	return GenerateBase62UUID()
}

// newMediaFilename returns a random file name keeping the lowercased
// extension of original.
func newMediaFilename(original string) string {
	return GenerateBase62UUID() + strings.ToLower(filepath.Ext(original))
}

// GenerateBase62UUID generates a new UUID and encodes it as a base62 string
func GenerateBase62UUID() string {
	return UUIDToBase62(uuid.New())
}

// UUIDToBase62 converts a UUID to a base62 encoded string
func UUIDToBase62(id uuid.UUID) string {
	var intValue big.Int
	intValue.SetBytes(id[:])
	return toBase62(&intValue)
}

// Base62ToUUID converts a base62 string back to a UUID
func Base62ToUUID(base62Str string) (uuid.UUID, error) {
	intValue, err := fromBase62(base62Str)
	if err != nil {
		return uuid.Nil, err
	}

	bytes := intValue.Bytes()
	if len(bytes) > 16 {
		return uuid.Nil, errors.New("base62 value overflows a UUID")
	}

	// Pad to 16 bytes if necessary
	var uuidBytes [16]byte
	copy(uuidBytes[16-len(bytes):], bytes)

	return uuid.FromBytes(uuidBytes[:])
}

// isValidID reports whether s could have been produced by newID.
func isValidID(s string) bool {
	if s == "" || len(s) > 22 {
		return false
	}
	_, err := Base62ToUUID(s)
	return err == nil
}

func toBase62(num *big.Int) string {
	if num.Sign() == 0 {
		return "0"
	}

	var buf []byte
	base := big.NewInt(62)
	mod := new(big.Int)
	n := new(big.Int).Set(num)

	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		buf = append(buf, base62Alphabet[mod.Int64()])
	}

	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

func fromBase62(s string) (*big.Int, error) {
	result := big.NewInt(0)
	base := big.NewInt(62)

	for _, char := range s {
		idx := strings.IndexRune(base62Alphabet, char)
		if idx == -1 {
			return nil, errors.New("invalid base62 character")
		}
		result.Mul(result, base)
		result.Add(result, big.NewInt(int64(idx)))
	}

	return result, nil
}
