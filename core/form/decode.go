package form

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

const tagName = "form"

// Decode copies values into out, a pointer to a struct whose fields carry `form:"<name>"` tags.
// Conversions are weak: "on" or "true" decode into a bool, numeric strings into numbers.
func Decode(values Values, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          tagName,
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook:       onToBoolHook,
	})
	if err != nil {
		return errors.Wrap(err, "creating form decoder")
	}
	return errors.Wrap(dec.Decode(map[string]interface{}(values)), "decoding form values")
}

// ValuesOf returns the `form` tagged fields of the struct in (or pointer to struct) as Values.
func ValuesOf(in interface{}) (Values, error) {
	out := make(map[string]interface{})
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: tagName,
		Result:  &out,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating form encoder")
	}
	if err = dec.Decode(in); err != nil {
		return nil, errors.Wrap(err, "encoding form values")
	}
	return Values(out), nil
}

// onToBoolHook maps the HTML checkbox default value to true.
func onToBoolHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() == reflect.String && to.Kind() == reflect.Bool {
		if s, _ := data.(string); s == "on" {
			return true, nil
		}
	}
	return data, nil
}
