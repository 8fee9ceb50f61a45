package keys

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const timestampDigits = 39

var (
	ErrBeforeEpoch    = errors.New("time is before the unix epoch")
	ErrInvalidEncoded = errors.New("invalid encoded key part")
)

// Timestamp is a count of microseconds since the Unix epoch.
type Timestamp uint64

func TimestampFromTime(t time.Time) (Timestamp, error) {
	if t.Before(time.Unix(0, 0)) {
		return 0, ErrBeforeEpoch
	}
	return Timestamp(t.UnixMicro()), nil
}

// Now panics only if the clock is set before 1970.
func Now() Timestamp {
	ts, err := TimestampFromTime(time.Now())
	if err != nil {
		panic(err)
	}
	return ts
}

func (ts Timestamp) Micros() uint64 {
	return uint64(ts)
}

func (ts Timestamp) Time() time.Time {
	return time.UnixMicro(int64(ts)).UTC()
}

// Key is the 39 digit decimal form, wide enough for any 128-bit microsecond count.
func (ts Timestamp) Key() string {
	return fmt.Sprintf("%0*d", timestampDigits, uint64(ts))
}

// ParseTimestamp reads back a part produced by Timestamp.Key.
func ParseTimestamp(s string) (Timestamp, error) {
	if len(s) != timestampDigits {
		return 0, fmt.Errorf("%w: timestamp %q", ErrInvalidEncoded, s)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: timestamp %q: %w", ErrInvalidEncoded, s, err)
	}
	return Timestamp(v), nil
}

// ParseUint64 reads back a part produced by Uint64 or Counter.
func ParseUint64(s string) (uint64, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("%w: uint64 %q", ErrInvalidEncoded, s)
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: uint64 %q: %w", ErrInvalidEncoded, s, err)
	}
	return v, nil
}
