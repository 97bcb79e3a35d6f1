package media

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// EncodeForm renders data as application/x-www-form-urlencoded. Maps and
// structs become key=value pairs; nested maps, structs and slices use
// bracket keys (a[b]=1, a[0]=x). Struct fields honour a `form` tag.
// Keys are sorted.
func EncodeForm(data any, _ Options) ([]byte, error) {
	values, err := FormValues(data)
	if err != nil {
		return nil, err
	}
	return []byte(values.Encode()), nil
}

// FormValues flattens data into url.Values using the EncodeForm rules.
func FormValues(data any) (url.Values, error) {
	values := url.Values{}
	if err := appendForm(values, "", data); err != nil {
		return nil, err
	}
	return values, nil
}

// DecodeForm parses a urlencoded body. Keys with a single value map to a
// string, repeated keys to a []string.
func DecodeForm(data []byte, _ Options) (any, error) {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			out[k] = vs[0]
		} else {
			out[k] = vs
		}
	}
	return out, nil
}

func appendForm(values url.Values, prefix string, data any) error {
	switch v := data.(type) {
	case nil:
		if prefix != "" {
			values.Add(prefix, "")
		}
		return nil
	case url.Values:
		for k, vs := range v {
			for _, s := range vs {
				values.Add(formKey(prefix, k), s)
			}
		}
		return nil
	case []byte:
		return appendScalar(values, prefix, string(v))
	}

	rv := reflect.ValueOf(data)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return appendForm(values, prefix, nil)
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		for _, k := range rv.MapKeys() {
			ks, err := cast.ToStringE(k.Interface())
			if err != nil {
				return fmt.Errorf("form: unsupported key %v: %w", k.Interface(), err)
			}
			keys = append(keys, ks)
			byKey[ks] = rv.MapIndex(k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := appendForm(values, formKey(prefix, k), byKey[k].Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		if _, err := cast.ToStringE(rv.Interface()); err == nil && prefix != "" {
			return appendScalar(values, prefix, rv.Interface())
		}
		fields, err := structFields(rv.Interface())
		if err != nil {
			return err
		}
		return appendForm(values, prefix, fields)
	case reflect.Slice, reflect.Array:
		if prefix == "" {
			return fmt.Errorf("form: cannot encode %s without a key", rv.Kind())
		}
		for i := 0; i < rv.Len(); i++ {
			if err := appendForm(values, prefix+"["+strconv.Itoa(i)+"]", rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	default:
		return appendScalar(values, prefix, rv.Interface())
	}
}

func appendScalar(values url.Values, prefix string, v any) error {
	if prefix == "" {
		return fmt.Errorf("form: cannot encode %T without a key", v)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Errorf("form: field %s: %w", prefix, err)
	}
	values.Add(prefix, s)
	return nil
}

// structFields converts a struct into a map keyed by its `form` tags.
func structFields(v any) (map[string]any, error) {
	out := make(map[string]any)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "form",
		Result:  &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(v); err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	return out, nil
}

func formKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "[" + key + "]"
}
