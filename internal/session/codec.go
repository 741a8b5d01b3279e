package session

import (
	"strconv"

	"github.com/pkg/errors"

	"ember/internal/value"
)

// Encode renders v as a (kind, text) column pair. Numbers use the shortest
// form that parses back to the same float64.
func Encode(v value.Value) (string, string) {
	switch v := v.(type) {
	case value.Bool:
		return value.KindBool.String(), strconv.FormatBool(bool(v))
	case value.Number:
		return value.KindNumber.String(), strconv.FormatFloat(float64(v), 'g', -1, 64)
	case value.String:
		return value.KindString.String(), string(v)
	}
	return value.KindNil.String(), ""
}

// Decode is the inverse of Encode.
func Decode(kind, text string) (value.Value, error) {
	switch kind {
	case value.KindNil.String():
		return value.Nil{}, nil
	case value.KindBool.String():
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, errors.Wrap(err, "bad bool")
		}
		return value.Bool(b), nil
	case value.KindNumber.String():
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errors.Wrap(err, "bad number")
		}
		return value.Number(f), nil
	case value.KindString.String():
		return value.String(text), nil
	}
	return nil, errors.Errorf("unknown kind %q", kind)
}
