package sqlite

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/orsinium-labs/enum"
)

// Kind is the variant held by a Value.
type Kind enum.Member[string]

var (
	KindNull    = Kind{Value: "null"}
	KindInteger = Kind{Value: "integer"}
	KindReal    = Kind{Value: "real"}
	KindText    = Kind{Value: "text"}
	KindBlob    = Kind{Value: "blob"}

	// Kinds lists every Kind a Value can hold.
	Kinds = enum.New(KindNull, KindInteger, KindReal, KindText, KindBlob)
)

func (k Kind) String() string {
	return k.Value
}

// Row is one result row: a Value per column, in the statement's column order.
type Row []Value

// Value is one of null, integer, real, text or blob. The zero Value is null.
//
// Values are comparable with == and can be used as map keys; two Values are
// equal when they hold the same kind and the same payload.
type Value struct {
	kind Kind
	i    int64
	f    float64
	// s holds the text payload, or the bytes of a blob payload.
	s string
}

// Null returns the null Value.
func Null() Value {
	return Value{}
}

// Integer returns an integer Value.
func Integer(v int64) Value {
	return Value{kind: KindInteger, i: v}
}

// Real returns a real Value.
func Real(v float64) Value {
	return Value{kind: KindReal, f: v}
}

// Text returns a text Value.
func Text(v string) Value {
	return Value{kind: KindText, s: v}
}

// Blob returns a blob Value holding a copy of v. A nil slice produces an
// empty blob, not null.
func Blob(v []byte) Value {
	return Value{kind: KindBlob, s: string(v)}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	if v.kind == (Kind{}) {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.Kind() == KindNull
}

// IntegerValue returns the integer payload, and false if v is not an integer.
func (v Value) IntegerValue() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.i, true
}

// RealValue returns the real payload, and false if v is not a real.
func (v Value) RealValue() (float64, bool) {
	if v.kind != KindReal {
		return 0, false
	}
	return v.f, true
}

// TextValue returns the text payload, and false if v is not text.
func (v Value) TextValue() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.s, true
}

// BlobValue returns a copy of the blob payload, and false if v is not a blob.
// An empty blob is returned as an empty, non-nil slice.
func (v Value) BlobValue() ([]byte, bool) {
	if v.kind != KindBlob {
		return nil, false
	}
	return []byte(v.s), true
}

// Equal reports whether v and other hold the same kind and payload.
func (v Value) Equal(other Value) bool {
	return v == other
}

// String formats v the way the sqlite3 shell would print a literal.
func (v Value) String() string {
	switch v.Kind() {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindBlob:
		return "X'" + strings.ToUpper(hex.EncodeToString([]byte(v.s))) + "'"
	default:
		return "NULL"
	}
}

// Any returns the payload as a plain Go value: nil, int64, float64, string
// or []byte.
func (v Value) Any() any {
	switch v.Kind() {
	case KindInteger:
		return v.i
	case KindReal:
		return v.f
	case KindText:
		return v.s
	case KindBlob:
		return []byte(v.s)
	default:
		return nil
	}
}

// FromAny converts a plain Go value to a Value.
//
// Signed and unsigned integers become integers (unsigned values above
// math.MaxInt64 are rejected), floats become reals, booleans become 0 or 1,
// strings become text, byte slices become blobs, time.Time becomes
// RFC 3339 text with nanoseconds and nil becomes null. Anything else
// returns an *Error without a code.
func FromAny(value any) (Value, error) {
	switch v := value.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case int:
		return Integer(int64(v)), nil
	case int8:
		return Integer(int64(v)), nil
	case int16:
		return Integer(int64(v)), nil
	case int32:
		return Integer(int64(v)), nil
	case int64:
		return Integer(v), nil
	case uint:
		return fromUint64(uint64(v))
	case uint8:
		return Integer(int64(v)), nil
	case uint16:
		return Integer(int64(v)), nil
	case uint32:
		return Integer(int64(v)), nil
	case uint64:
		return fromUint64(v)
	case float32:
		return Real(float64(v)), nil
	case float64:
		return Real(v), nil
	case bool:
		if v {
			return Integer(1), nil
		}
		return Integer(0), nil
	case string:
		return Text(v), nil
	case []byte:
		return Blob(v), nil
	case time.Time:
		return Text(v.Format(time.RFC3339Nano)), nil
	default:
		return Null(), newSyntheticError(errUnsupportedType, fmt.Sprintf("%T", value))
	}
}

func fromUint64(v uint64) (Value, error) {
	if v > math.MaxInt64 {
		return Null(), newSyntheticError(errIntegerOverflow, strconv.FormatUint(v, 10))
	}
	return Integer(int64(v)), nil
}
