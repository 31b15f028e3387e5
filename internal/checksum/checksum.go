package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// Sum returns the hex SHA-256 of content.
func Sum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// SumReader returns the hex SHA-256 of everything read from r.
func SumReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Seen remembers the first name recorded for each checksum.
type Seen struct {
	first map[string]string
}

// NewSeen returns an empty Seen.
func NewSeen() *Seen {
	return &Seen{first: make(map[string]string)}
}

// Add records name under sum. It returns the earlier name and true when sum
// was already recorded.
func (s *Seen) Add(sum, name string) (string, bool) {
	if prev, ok := s.first[sum]; ok {
		return prev, true
	}
	s.first[sum] = name
	return "", false
}
