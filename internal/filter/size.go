package filter

import (
	"reflect"

	"github.com/hupe1980/taps/internal/codec"
)

// Sizer is implemented by items that know their own in-memory footprint.
// ObjectSize uses it instead of reflection when present.
type Sizer interface {
	SizeBytes() int
}

// ObjectSize returns the shallow in-memory footprint of item in bytes: the
// size of the value itself plus the backing storage it directly owns
// (string bytes, slice capacity, map entries, pointee). Referenced values
// are not followed. A nil item has size zero.
func ObjectSize(item any) int {
	if item == nil {
		return 0
	}

	if s, ok := item.(Sizer); ok {
		return s.SizeBytes()
	}

	v := reflect.ValueOf(item)
	t := v.Type()
	size := int(t.Size())

	switch v.Kind() {
	case reflect.String:
		size += v.Len()
	case reflect.Slice:
		size += v.Cap() * int(t.Elem().Size())
	case reflect.Map:
		size += v.Len() * int(t.Key().Size()+t.Elem().Size())
	case reflect.Pointer:
		if !v.IsNil() {
			size += int(t.Elem().Size())
		}
	}

	return size
}

// SerializedSize returns the byte length of item's serialized form.
func SerializedSize(item any) (int, error) {
	data, err := codec.Marshal(item)
	if err != nil {
		return 0, err
	}

	return len(data), nil
}
