package store

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jackpal/bencode-go"
	"src.rtorc.sh/pkg/obj"
)

// ErrBadEncoding is returned by DecodeObject for data not produced by
// EncodeObject.
var ErrBadEncoding = errors.New("bad object encoding")

// Tags of encoded objects. An Object is encoded as a bencoded list whose first
// element is one of the tags.
const (
	tagNone   = "n"
	tagValue  = "v"
	tagString = "s"
	tagList   = "l"
	tagMap    = "m"
	tagCall   = "c"
)

// EncodeObject encodes an Object in bencode. Flags are not preserved.
func EncodeObject(o obj.Object) ([]byte, error) {
	var buf bytes.Buffer
	if err := bencode.Marshal(&buf, toBencode(o)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toBencode(o obj.Object) []any {
	switch o.Kind() {
	case obj.KindValue:
		return []any{tagValue, o.AsValue()}
	case obj.KindString:
		return []any{tagString, o.AsString()}
	case obj.KindList:
		elems := make([]any, o.Len())
		for i, elem := range o.AsList() {
			elems[i] = toBencode(elem)
		}
		return []any{tagList, elems}
	case obj.KindMap:
		m := make(map[string]any, o.Len())
		for _, k := range o.Keys() {
			v, _ := o.Get(k)
			m[k] = toBencode(v)
		}
		return []any{tagMap, m}
	case obj.KindCall:
		return []any{tagCall, o.CallName(), toBencode(o.CallArgs())}
	}
	return []any{tagNone}
}

// DecodeObject decodes an Object encoded by EncodeObject.
func DecodeObject(data []byte) (obj.Object, error) {
	v, err := bencode.Decode(bytes.NewReader(data))
	if err != nil {
		return obj.None(), err
	}
	return fromBencode(v)
}

func fromBencode(v any) (obj.Object, error) {
	l, ok := v.([]any)
	if !ok || len(l) == 0 {
		return obj.None(), fmt.Errorf("%w: want tagged list, got %T", ErrBadEncoding, v)
	}
	tag, _ := l[0].(string)
	bad := func() (obj.Object, error) {
		return obj.None(), fmt.Errorf("%w: malformed %q item", ErrBadEncoding, tag)
	}
	switch tag {
	case tagNone:
		return obj.None(), nil
	case tagValue:
		if len(l) != 2 {
			return bad()
		}
		n, ok := l[1].(int64)
		if !ok {
			return bad()
		}
		return obj.NewValue(n), nil
	case tagString:
		if len(l) != 2 {
			return bad()
		}
		s, ok := l[1].(string)
		if !ok {
			return bad()
		}
		return obj.NewString(s), nil
	case tagList:
		if len(l) != 2 {
			return bad()
		}
		raw, ok := l[1].([]any)
		if !ok {
			return bad()
		}
		elems := make([]obj.Object, len(raw))
		for i, r := range raw {
			elem, err := fromBencode(r)
			if err != nil {
				return obj.None(), err
			}
			elems[i] = elem
		}
		return obj.NewListFrom(elems), nil
	case tagMap:
		if len(l) != 2 {
			return bad()
		}
		raw, ok := l[1].(map[string]any)
		if !ok {
			return bad()
		}
		m := make(map[string]obj.Object, len(raw))
		for k, r := range raw {
			v, err := fromBencode(r)
			if err != nil {
				return obj.None(), err
			}
			m[k] = v
		}
		return obj.NewMap(m), nil
	case tagCall:
		if len(l) != 3 {
			return bad()
		}
		name, ok := l[1].(string)
		if !ok {
			return bad()
		}
		args, err := fromBencode(l[2])
		if err != nil {
			return obj.None(), err
		}
		return obj.NewCall(name, args), nil
	}
	return obj.None(), fmt.Errorf("%w: unknown tag %q", ErrBadEncoding, tag)
}
