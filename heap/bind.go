package heap

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/modern-go/reflect2"

	"github.com/joshuapare/heapkit/internal/format"
)

// Bind points the typed pointer held by target at the allocation p.
// target must be a non-nil **T where T holds no Go pointers, fits in the
// allocation and needs no more than 16-byte alignment:
//
//	var rec *Record
//	if err := h.Bind(p, &rec); err != nil { ... }
//	rec.Count++
//
// The bound pointer is valid until p is freed.
func (h *Heap) Bind(p Ptr, target any) error {
	elem, err := bindElem(target)
	if err != nil {
		return err
	}
	data, err := h.Bytes(p)
	if err != nil {
		return err
	}
	if elem.Size() > uintptr(len(data)) {
		return fmt.Errorf("%w: %s needs %d bytes, allocation has %d", ErrBindTarget, elem, elem.Size(), len(data))
	}
	*(*unsafe.Pointer)(reflect2.PtrOf(target)) = unsafe.Pointer(unsafe.SliceData(data))
	return nil
}

// bindElem checks that target is a **T suitable for Bind and returns T.
func bindElem(target any) (reflect.Type, error) {
	if target == nil || reflect2.IsNil(target) {
		return nil, fmt.Errorf("%w: nil target", ErrBindTarget)
	}
	outer := reflect2.TypeOf(target)
	if outer.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("%w: %s is not a pointer", ErrBindTarget, outer.Type1())
	}
	inner := outer.(reflect2.PtrType).Elem()
	if inner.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("%w: %s is not a pointer to pointer", ErrBindTarget, outer.Type1())
	}
	elem := inner.(reflect2.PtrType).Elem().Type1()
	if !pointerFree(elem) {
		return nil, fmt.Errorf("%w: %s contains pointers", ErrBindTarget, elem)
	}
	if elem.Align() > format.BlockAlignment {
		return nil, fmt.Errorf("%w: %s needs %d-byte alignment", ErrBindTarget, elem, elem.Align())
	}
	return elem, nil
}

// pointerFree reports whether values of t hold no Go pointers, so the
// garbage collector never needs to scan them.
func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
