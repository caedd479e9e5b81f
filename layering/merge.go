// Package layering merges values ordered from strongest to weakest. It backs
// route parameter inheritance in the navigator and config overlays in the
// route table loader.
package layering

import "reflect"

// MergeLayers composes values ordered from strongest to weakest. Zero fields
// in a stronger layer are filled from weaker ones; maps merge key by key and
// pointers merge through their targets. The result shares no maps, slices or
// pointers with the inputs.
func MergeLayers[T any](layers ...T) T {
	var zero T
	if len(layers) == 0 {
		return zero
	}
	target := reflect.TypeOf(zero)

	merged := deepCopy(reflect.ValueOf(layers[len(layers)-1]))
	for i := len(layers) - 2; i >= 0; i-- {
		merged = overlay(reflect.ValueOf(layers[i]), merged)
	}
	if !merged.IsValid() {
		return zero
	}
	if target != nil && merged.Type() != target {
		merged = merged.Convert(target)
	}
	return merged.Interface().(T)
}

// overlay returns strong laid over weak.
func overlay(strong, weak reflect.Value) reflect.Value {
	if !strong.IsValid() {
		return deepCopy(weak)
	}
	if !weak.IsValid() || weak.Type() != strong.Type() {
		return deepCopy(strong)
	}

	switch strong.Kind() {
	case reflect.Pointer:
		if strong.IsNil() {
			return deepCopy(weak)
		}
		if weak.IsNil() {
			return deepCopy(strong)
		}
		out := reflect.New(strong.Type().Elem())
		out.Elem().Set(overlay(strong.Elem(), weak.Elem()))
		return out
	case reflect.Interface:
		if strong.IsNil() {
			return deepCopy(weak)
		}
		if weak.IsNil() || weak.Elem().Type() != strong.Elem().Type() {
			return deepCopy(strong)
		}
		return overlay(strong.Elem(), weak.Elem()).Convert(strong.Type())
	case reflect.Struct:
		out := reflect.New(strong.Type()).Elem()
		for i := range strong.NumField() {
			if !out.Field(i).CanSet() {
				continue
			}
			out.Field(i).Set(overlay(strong.Field(i), weak.Field(i)))
		}
		return out
	case reflect.Map:
		if strong.IsNil() {
			return deepCopy(weak)
		}
		out := deepCopy(weak)
		if out.IsNil() {
			out = reflect.MakeMapWithSize(strong.Type(), strong.Len())
		}
		iter := strong.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), overlay(iter.Value(), out.MapIndex(iter.Key())))
		}
		return out
	case reflect.Slice:
		if strong.IsNil() {
			return deepCopy(weak)
		}
		return deepCopy(strong)
	default:
		if strong.IsZero() {
			return deepCopy(weak)
		}
		return deepCopy(strong)
	}
}

func deepCopy(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(deepCopy(v.Elem()))
		return out
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		return deepCopy(v.Elem()).Convert(v.Type())
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		for i := range v.NumField() {
			if out.Field(i).CanSet() {
				out.Field(i).Set(deepCopy(v.Field(i)))
			}
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out
	default:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		return out
	}
}
