package store

import (
	"errors"
	"testing"

	"src.rtorc.sh/pkg/obj"
)

var codecObjects = []obj.Object{
	obj.None(),
	obj.NewValue(-42),
	obj.NewString(""),
	obj.NewString("with spaces, commas and \"quotes\""),
	obj.NewList(),
	obj.NewList(obj.NewValue(1), obj.NewList(obj.NewString("nested"))),
	obj.NewMap(map[string]obj.Object{"b": obj.NewValue(2), "a": obj.None()}),
	obj.NewCall("print", obj.NewList(obj.NewString("a"), obj.NewCall("cat", obj.None()))),
}

func TestEncodeObject(t *testing.T) {
	for _, o := range codecObjects {
		data, err := EncodeObject(o)
		if err != nil {
			t.Errorf("EncodeObject(%v) -> %v", o, err)
			continue
		}
		got, err := DecodeObject(data)
		if err != nil || !got.Equal(o) {
			t.Errorf("DecodeObject(EncodeObject(%v)) -> (%v, %v)", o, got, err)
		}
	}
}

func TestDecodeObject_Errors(t *testing.T) {
	for _, data := range []string{
		"i42e",
		"le",
		"l1:xe",
		"l1:v3:abce",
		"l1:si1ee",
		"l1:li1ee",
		"l1:mi1ee",
		"l1:c4:namee",
		"l1:ll1:xeee",
	} {
		_, err := DecodeObject([]byte(data))
		if !errors.Is(err, ErrBadEncoding) {
			t.Errorf("DecodeObject(%q) -> %v, want ErrBadEncoding", data, err)
		}
	}
	if _, err := DecodeObject([]byte("l1:v")); err == nil {
		t.Errorf("DecodeObject of truncated data succeeded")
	}
}
