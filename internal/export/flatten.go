package export

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Row is one flattened record: column key to rendered string value.
type Row map[string]string

const flattenTimeLayout = "2006-01-02 15:04:05"

var timeType = reflect.TypeOf(time.Time{})

// Flatten converts an arbitrarily nested record into a single-level column
// map. Nested objects gain a "{key}_" prefix, arrays of objects a
// "{key}_{index}_" prefix (1-indexed), arrays of primitives are joined with
// "; ", dates are rendered as "yyyy-MM-dd HH:mm:ss" and nil values become
// empty strings. Inputs are assumed acyclic; a cyclic record recurses
// without bound.
func Flatten(record interface{}, prefix string) Row {
	out := Row{}
	v := indirect(reflect.ValueOf(record))
	if !v.IsValid() {
		return out
	}
	flattenObject(out, prefix, v)
	return out
}

func flattenObject(out Row, prefix string, v reflect.Value) {
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			key := fieldKey(field)
			if key == "" {
				continue
			}
			flattenField(out, prefix+key, v.Field(i))
		}
	case reflect.Map:
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, fmt.Sprintf("%v", k.Interface()))
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenField(out, prefix+k, v.MapIndex(reflect.ValueOf(k)))
		}
	}
}

func flattenField(out Row, key string, v reflect.Value) {
	v = indirect(v)
	if !v.IsValid() {
		out[key] = ""
		return
	}

	if v.Type() == timeType {
		out[key] = formatTime(v.Interface().(time.Time))
		return
	}

	switch v.Kind() {
	case reflect.Struct, reflect.Map:
		flattenObject(out, key+"_", v)
	case reflect.Slice, reflect.Array:
		flattenSlice(out, key, v)
	default:
		out[key] = scalarString(v)
	}
}

func flattenSlice(out Row, key string, v reflect.Value) {
	if v.Len() == 0 {
		out[key] = ""
		return
	}

	if isObjectSlice(v) {
		for i := 0; i < v.Len(); i++ {
			elem := indirect(v.Index(i))
			if !elem.IsValid() {
				continue
			}
			flattenObject(out, fmt.Sprintf("%s_%d_", key, i+1), elem)
		}
		return
	}

	parts := make([]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		elem := indirect(v.Index(i))
		if !elem.IsValid() {
			parts = append(parts, "")
			continue
		}
		if elem.Type() == timeType {
			parts = append(parts, formatTime(elem.Interface().(time.Time)))
			continue
		}
		parts = append(parts, scalarString(elem))
	}
	out[key] = strings.Join(parts, "; ")
}

// isObjectSlice reports whether the slice elements flatten as nested records
// rather than as joined primitives.
func isObjectSlice(v reflect.Value) bool {
	for i := 0; i < v.Len(); i++ {
		elem := indirect(v.Index(i))
		if !elem.IsValid() {
			continue
		}
		if elem.Type() == timeType {
			return false
		}
		k := elem.Kind()
		return k == reflect.Struct || k == reflect.Map
	}
	return false
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func scalarString(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(flattenTimeLayout)
}

// fieldKey derives the column key for a struct field from its json tag,
// falling back to the lower-cased field name.
func fieldKey(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if tag != "" {
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		if tag != "" {
			return tag
		}
	}
	return strings.ToLower(field.Name)
}
