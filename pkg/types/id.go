package types

import (
	"crypto/sha1"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ID is the SHA-1 of a user agent string (20 bytes). It keys stored results
// so that arbitrarily long user agents index in constant space.
type ID [20]byte

// ComputeID computes the ID of a user agent string.
func ComputeID(userAgent string) ID {
	return ID(sha1.Sum([]byte(userAgent)))
}

// Hex returns 40-character hex string.
func (id ID) Hex() string {
	return hex.EncodeToString(id[:])
}

// String implements Stringer (returns Hex()).
func (id ID) String() string {
	return id.Hex()
}

// ParseID parses 40-char hex string to ID.
func ParseID(hexStr string) (ID, error) {
	if len(hexStr) != 40 {
		return ID{}, fmt.Errorf("invalid ID length: expected 40, got %d", len(hexStr))
	}

	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return ID{}, fmt.Errorf("invalid hex string: %w", err)
	}

	var id ID
	copy(id[:], decoded)
	return id, nil
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}

	parsed, err := ParseID(hexStr)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

// Value implements driver.Valuer for SQL serialization.
func (id ID) Value() (driver.Value, error) {
	return id.Hex(), nil
}

// Scan implements sql.Scanner for SQL deserialization.
func (id *ID) Scan(value any) error {
	if value == nil {
		return fmt.Errorf("cannot scan nil into ID")
	}

	var hexStr string
	switch v := value.(type) {
	case string:
		hexStr = v
	case []byte:
		hexStr = string(v)
	default:
		return fmt.Errorf("cannot scan type %T into ID", value)
	}

	parsed, err := ParseID(hexStr)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}
