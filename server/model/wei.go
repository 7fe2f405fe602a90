package model

import (
	"database/sql/driver"
	"fmt"
	"math/bits"
	"strconv"
)

// Wei is the smallest unit of the native currency. It is stored as a decimal
// string because sqlite integers are signed and cannot hold the full range.
type Wei uint64

// Add returns a+b and false if the sum overflowed.
func (a Wei) Add(b Wei) (Wei, bool) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	return Wei(sum), carry == 0
}

// Sub returns a-b and false if b is greater than a.
func (a Wei) Sub(b Wei) (Wei, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

func (a Wei) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// GormDataType maps Wei to a text column.
func (Wei) GormDataType() string {
	return "string"
}

// Value implements driver.Valuer
func (a Wei) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner
func (a *Wei) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*a = 0
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("negative wei value %d", v)
		}
		*a = Wei(v)
		return nil
	default:
		return fmt.Errorf("unsupported wei source type %T", src)
	}

	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("unable to parse wei %q: %w", raw, err)
	}
	*a = Wei(n)
	return nil
}

// MarshalJSON encodes wei as a decimal string, the way RPC clients expect it.
func (a Wei) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

func (a *Wei) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("unable to parse wei %q: %w", raw, err)
	}
	*a = Wei(n)
	return nil
}
