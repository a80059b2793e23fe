package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const redacted = "****"

var durationType = reflect.TypeOf(time.Duration(0))

// ToMap reflects over the struct pointers in configs and collects every field
// with an env tag. Values of keys containing KEY, TOKEN or PASSWORD are masked
// unless empty.
func ToMap(configs ...any) (map[string]string, error) {
	out := make(map[string]string)
	for _, c := range configs {
		v := reflect.ValueOf(c)
		if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
			return nil, fmt.Errorf("env: expected pointer to struct, got %T", c)
		}
		v = v.Elem()
		t := v.Type()

		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			tag := field.Tag.Get("env")

			// Skip fields without env tag or unexported fields
			if tag == "" || !field.IsExported() {
				continue
			}

			// "KEY,required,notEmpty" -> "KEY"
			key := strings.TrimSpace(strings.Split(tag, ",")[0])
			if key == "" {
				continue
			}

			val := formatValue(v.Field(i))
			if val != "" && isSecret(key) {
				val = redacted
			}
			out[key] = val
		}
	}
	return out, nil
}

// Marshal renders configs as sorted .env lines.
func Marshal(configs ...any) (string, error) {
	m, err := ToMap(configs...)
	if err != nil {
		return "", err
	}
	s, err := godotenv.Marshal(m)
	if err != nil {
		return "", err
	}
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s, nil
}

func isSecret(key string) bool {
	for _, marker := range []string{"KEY", "TOKEN", "PASSWORD"} {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}

// formatValue converts a reflect.Value to its string representation
func formatValue(v reflect.Value) string {
	if v.Type() == durationType {
		return time.Duration(v.Int()).String()
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
