package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
)

// ExpandTemplates replaces ${VAR} references in the string fields of the
// struct pointed to by in. Only fields tagged `template` (and not
// `template:"-"`) are expanded. Nested structs, struct pointers and slices
// of structs are walked; unexported fields are skipped.
func ExpandTemplates[T any](in *T, variables map[string]string) error {
	if in == nil {
		return nil
	}
	v := reflect.ValueOf(in).Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("ExpandTemplates expects *struct; got *%s", v.Type())
	}
	return expandStruct(v, variables)
}

func expandStruct(v reflect.Value, variables map[string]string) error {
	typ := v.Type()
	var errs error
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		field := v.Field(i)
		tag, hasTemplate := sf.Tag.Lookup("template")

		switch field.Kind() {
		case reflect.String:
			if !hasTemplate || tag == "-" {
				continue
			}
			expanded, err := Expand(field.String(), variables)
			if err != nil {
				errs = errors.Join(errs, fmt.Errorf("%s: %w", sf.Name, err))
				continue
			}
			field.SetString(expanded)
		case reflect.Struct:
			errs = errors.Join(errs, expandStruct(field, variables))
		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				errs = errors.Join(errs, expandStruct(field.Elem(), variables))
			}
		case reflect.Slice:
			if field.Type().Elem().Kind() != reflect.Struct {
				continue
			}
			for j := 0; j < field.Len(); j++ {
				errs = errors.Join(errs, expandStruct(field.Index(j), variables))
			}
		}
	}
	return errs
}

// Expand replaces ${VAR} references in the input string using the provided variables map.
// Returns an error if any referenced variable is not in the variables map.
func Expand(value string, variables map[string]string) (string, error) {
	var errs error

	result := os.Expand(value, func(key string) string {
		if val, ok := variables[key]; ok {
			return val
		}
		errs = errors.Join(errs, fmt.Errorf("variable %q is not in the allowed list", key))
		return ""
	})

	if errs != nil {
		return "", errs
	}

	return result, nil
}
