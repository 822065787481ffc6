package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Kind is the semantic type of an entity field, used to coerce raw
// spreadsheet cells into typed values.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
)

// Field describes one API-visible field of a registered entity. It is the
// single point where the JSON name, the database column and the validation
// requirements of a field meet.
type Field struct {
	JSONName string
	GoName   string
	Column   string
	Kind     Kind
	Required bool
	// Assignable reports whether bulk import may write the field. Primary
	// keys, timestamp columns and server-managed fields are excluded.
	Assignable bool
}

func kindOf(t reflect.Type) (Kind, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == reflect.TypeOf(time.Time{}) {
		return KindTime, true
	}
	switch t.Kind() {
	case reflect.String:
		return KindString, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInt, true
	case reflect.Float32, reflect.Float64:
		return KindFloat, true
	case reflect.Bool:
		return KindBool, true
	default:
		return 0, false
	}
}

// coerce converts a raw cell value into the field's semantic type.
func (f Field) coerce(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch f.Kind {
	case KindString:
		return raw, nil
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("must be a whole number")
		}
		return n, nil
	case KindFloat:
		// Spreadsheets commonly use a comma decimal separator.
		n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("must be a number")
		}
		return n, nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("must be true or false")
		}
		return b, nil
	case KindTime:
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("must be an RFC 3339 timestamp")
		}
		return ts, nil
	default:
		return nil, fmt.Errorf("unsupported field kind")
	}
}

// assign sets the field on the entity pointed to by entityPtr.
func (f Field) assign(entityPtr reflect.Value, value any) {
	fv := entityPtr.Elem().FieldByName(f.GoName)
	ft := fv.Type()

	target := fv
	if ft.Kind() == reflect.Pointer {
		p := reflect.New(ft.Elem())
		fv.Set(p)
		target = p.Elem()
		ft = ft.Elem()
	}

	rv := reflect.ValueOf(value)
	if rv.Type().ConvertibleTo(ft) {
		target.Set(rv.Convert(ft))
	}
}
