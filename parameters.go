package componentkit

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/golobby/cast"
)

// Well-known kernel parameters set by the host before compiling.
const (
	ParamKernelDebug       = "kernel.debug"
	ParamKernelEnvironment = "kernel.environment"
	ParamKernelProjectDir  = "kernel.project_dir"
	ParamKernelCacheDir    = "kernel.cache_dir"
	ParamKernelBuildDir    = "kernel.build_dir"
	ParamKernelCharset     = "kernel.charset"
	ParamKernelBundles     = "kernel.bundles"
)

// ParameterBag holds container parameters.
// Values coming from the environment are usually strings; the typed
// accessors convert them on read.
type ParameterBag map[string]any

// NewParameterBag copies the given values into a new bag.
func NewParameterBag(values map[string]any) ParameterBag {
	bag := make(ParameterBag, len(values))
	for k, v := range values {
		bag[k] = v
	}
	return bag
}

// Has reports whether the parameter is set.
func (p ParameterBag) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Get returns the raw parameter value.
func (p ParameterBag) Get(name string) (any, error) {
	v, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrParameterNotFound, name)
	}
	return v, nil
}

// Bool returns a boolean parameter. String values such as "1", "true"
// or "false" are converted.
func (p ParameterBag) Bool(name string) (bool, error) {
	v, err := p.Get(name)
	if err != nil {
		return false, err
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		converted, err := cast.FromType(b, reflect.TypeOf(false))
		if err != nil {
			return false, fmt.Errorf("%w: %s is not a bool: %v", ErrParameterType, name, err)
		}
		return converted.(bool), nil
	default:
		return false, fmt.Errorf("%w: %s is %T, expected bool", ErrParameterType, name, v)
	}
}

// String returns a string parameter.
func (p ParameterBag) String(name string) (string, error) {
	v, err := p.Get(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, expected string", ErrParameterType, name, v)
	}
	return s, nil
}

// Names returns the parameter names in sorted order.
func (p ParameterBag) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
