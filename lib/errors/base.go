package errors

import (
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
)

// Kind groups error codes by the way a caller is expected to react to them.
type Kind string

const (
	KindAuthorization     Kind = "authorization"
	KindInvalidInput      Kind = "invalid-input"
	KindStateConflict     Kind = "state-conflict"
	KindApprovalMissing   Kind = "approval-missing"
	KindTransferIntegrity Kind = "transfer-integrity"
	KindNoQuorumPossible  Kind = "no-quorum-possible"
	KindInternal          Kind = "internal"
)

type Error struct {
	Code    uint                   `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty" rlp:"-"`
}

func (o *Error) Serialize() (b []byte, err error) {
	b, err = json.Marshal(o)
	return
}

func (o *Error) Error() string {
	b, _ := o.Serialize()
	return string(b)
}

func (o *Error) SetData(k string, v interface{}) *Error {
	o.Data[k] = v

	return o
}

func (o *Error) Clone() *Error {
	var new Error
	new = *o

	new.Data = map[string]interface{}{}
	if o.Data != nil && len(o.Data) > 0 {
		for k, v := range o.Data {
			new.Data[k] = v
		}
	}

	return &new
}

// Kind derives the error kind from the hundreds digit of `Code`.
func (o *Error) Kind() Kind {
	switch o.Code / 100 {
	case 1:
		return KindAuthorization
	case 2:
		return KindInvalidInput
	case 3:
		return KindStateConflict
	case 4:
		return KindApprovalMissing
	case 5:
		return KindTransferIntegrity
	case 6:
		return KindNoQuorumPossible
	default:
		return KindInternal
	}
}

// Is reports whether err carries the same code as target.
func (o *Error) Is(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}

	return e.Code == o.Code
}

func (o *Error) EncodeRLP(w io.Writer) (err error) {
	if o == nil {
		return rlp.Encode(w, []uint{})
	}

	if o.Data != nil && len(o.Data) > 0 {
		var d [][2]interface{}

		var keys []string
		for k, _ := range o.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			d = append(d, [2]interface{}{k, o.Data[k]})
		}
		err = rlp.Encode(w, d)
	}

	return rlp.Encode(w, struct {
		Code    uint
		Message string
	}{
		Code:    o.Code,
		Message: o.Message,
	})
}

func NewError(code uint, message string) *Error {
	return &Error{Code: code, Message: message, Data: map[string]interface{}{}}
}

// KindOf classifies any error; errors which are not `*Error` are internal.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind()
	}

	return KindInternal
}

// Parse restores an `*Error` from its serialized form, for example from a
// JSON-RPC error string. It returns nil if `s` is not a serialized `Error`.
func Parse(s string) *Error {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil
	}

	var e Error
	if err := json.Unmarshal([]byte(s), &e); err != nil || e.Code == 0 {
		return nil
	}
	if e.Data == nil {
		e.Data = map[string]interface{}{}
	}

	return &e
}
