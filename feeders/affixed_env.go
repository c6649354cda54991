package feeders

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/golobby/cast"
)

// AffixedEnvFeeder is a feeder that reads environment variables with a prefix and/or suffix.
// A field tagged `env:"DEBUG"` is read from PREFIX_DEBUG_SUFFIX.
type AffixedEnvFeeder struct {
	Prefix string
	Suffix string

	// Lookup replaces os.LookupEnv, mainly for tests.
	Lookup func(key string) (string, bool)
}

// NewAffixedEnvFeeder creates a new AffixedEnvFeeder with the specified prefix and suffix
func NewAffixedEnvFeeder(prefix, suffix string) AffixedEnvFeeder {
	return AffixedEnvFeeder{Prefix: prefix, Suffix: suffix}
}

// Feed reads environment variables and populates the provided structure
func (f AffixedEnvFeeder) Feed(structure any) error {
	inputType := reflect.TypeOf(structure)
	if inputType == nil || inputType.Kind() != reflect.Ptr || inputType.Elem().Kind() != reflect.Struct {
		return ErrEnvInvalidStructure
	}
	if f.Prefix == "" && f.Suffix == "" {
		return ErrEnvEmptyPrefixAndSuffix
	}
	return f.processStructFields(reflect.ValueOf(structure).Elem())
}

func (f AffixedEnvFeeder) processStructFields(rv reflect.Value) error {
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rv.Type().Field(i)

		if err := f.processField(field, &fieldType); err != nil {
			return fmt.Errorf("error in field '%s': %w", fieldType.Name, err)
		}
	}
	return nil
}

func (f AffixedEnvFeeder) processField(field reflect.Value, fieldType *reflect.StructField) error {
	if field.Kind() == reflect.Struct {
		return f.processStructFields(field)
	}
	if field.Kind() == reflect.Ptr && !field.IsNil() && field.Elem().Kind() == reflect.Struct {
		return f.processStructFields(field.Elem())
	}
	envTag, exists := fieldType.Tag.Lookup("env")
	if !exists {
		return nil
	}
	value, ok := f.lookup(f.envName(envTag))
	if !ok || value == "" {
		return nil
	}
	return setFieldValue(field, value)
}

func (f AffixedEnvFeeder) envName(tag string) string {
	name := strings.ToUpper(tag)
	if f.Prefix != "" {
		name = strings.ToUpper(f.Prefix) + "_" + name
	}
	if f.Suffix != "" {
		name = name + "_" + strings.ToUpper(f.Suffix)
	}
	return name
}

func (f AffixedEnvFeeder) lookup(key string) (string, bool) {
	if f.Lookup != nil {
		return f.Lookup(key)
	}
	return os.LookupEnv(key)
}

// setFieldValue converts and sets a field value. Pointer fields receive a
// pointer to the converted value.
func setFieldValue(field reflect.Value, strValue string) error {
	if !field.CanSet() {
		return ErrEnvFieldCannotBeSet
	}
	target := field.Type()
	if target.Kind() == reflect.Ptr {
		target = target.Elem()
	}
	convertedValue, err := cast.FromType(strValue, target)
	if err != nil {
		return fmt.Errorf("cannot convert value to type %v: %w", target, err)
	}
	value := reflect.ValueOf(convertedValue).Convert(target)
	if field.Kind() == reflect.Ptr {
		ptr := reflect.New(target)
		ptr.Elem().Set(value)
		field.Set(ptr)
		return nil
	}
	field.Set(value)
	return nil
}
