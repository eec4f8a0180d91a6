package tools

import (
	"fmt"
	"reflect"
	"strings"
)

// CamelToSnake converts a CamelCase field name to the snake_case form
// used in jetlab.json.
func CamelToSnake(name string) string {
	var result strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteByte('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}

// PrintStructKeyVal prints the fields of a struct in a human-readable
// key/value format, keyed by the snake_case field names. Fields tagged
// json:"-" are derived values and are skipped.
func PrintStructKeyVal(structure interface{}) {
	val := reflect.ValueOf(structure)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		if typ.Field(i).Tag.Get("json") == "-" {
			continue
		}

		field := val.Field(i)
		name := CamelToSnake(typ.Field(i).Name)
		switch field.Kind() {
		case reflect.String:
			fmt.Printf("  - %s: %s\n", name, field.String())
		case reflect.Slice:
			fmt.Printf("  - %s:\n", name)
			for j := 0; j < field.Len(); j++ {
				fmt.Printf("    - %s\n", field.Index(j).String())
			}
		case reflect.Map:
			fmt.Printf("  - %s:\n", name)
			for _, key := range field.MapKeys() {
				fmt.Printf("    - %s: %s\n", key.String(), field.MapIndex(key).String())
			}
		case reflect.Bool:
			fmt.Printf("  - %s: %v\n", name, field.Bool())
		default:
			fmt.Printf("  - %s: %v\n", name, field.Interface())
		}
	}
}
