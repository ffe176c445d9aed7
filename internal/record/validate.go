package record

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// schema checks key presence only: a Field validates as its Present flag, so
// a null value passes and an absent key fails "required".
var schema = newSchema()

func newSchema() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if f, ok := field.Interface().(Field); ok {
			return f.Present
		}
		return nil
	}, Field{})
	return v
}

// Validate reports whether edges is non-empty and every record carries all
// five relation fields.
//
// Callers with a nodes-only load (nodes but no edges) must handle that case
// before calling Validate, which always rejects an empty edge list.
func Validate(edges []Record) bool {
	return len(edges) > 0 && len(MissingFields(edges)) == 0
}

// MissingFields returns, in schema order, the relation fields absent from at
// least one record.
func MissingFields(edges []Record) []string {
	missing := make(map[string]bool)
	for i := range edges {
		err := schema.Struct(&edges[i])
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			continue
		}
		for _, fe := range verrs {
			missing[fe.Field()] = true
		}
	}

	var names []string
	for _, name := range FieldNames {
		if missing[name] {
			names = append(names, name)
		}
	}
	return names
}
