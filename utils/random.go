package utils

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// GenerateTicketCode builds a human-readable ticket code of the form
// <prefix>-<year>-<5-digit-random>, e.g. "ED-2026-48213". Uniqueness
// is enforced by the store's unique index on the code column; a
// collision surfaces as a retryable write conflict.
func GenerateTicketCode(prefix string) (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}

	// 5-digit number in [10000, 99999].
	n := 10000 + binary.BigEndian.Uint64(buf[:])%90000

	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().Year(), n), nil
}
