package componentkit

import (
	"maps"
	"slices"
	"sort"
)

// Factory builds a service instance. It receives the compiled container
// so that it can resolve the services it depends on.
type Factory func(c *Container) (any, error)

// Definition describes how a service is constructed.
type Definition struct {
	// ID is the unique identifier used to register and look up the service.
	ID string

	// Type is a descriptive type name, used for debugging output.
	Type string

	// Arguments are passed to the factory by convention through Argument.
	Arguments []any

	// Tags group definitions for compiler passes. A tag maps to a list of
	// attribute sets since the same tag may be applied more than once.
	Tags map[string][]map[string]any

	// Factory builds the service. A definition without factory can be
	// registered and queried but not instantiated.
	Factory Factory

	// Public marks services that may be fetched from outside the container.
	Public bool
}

// NewDefinition creates a definition with the given id, type name and factory.
func NewDefinition(id, typeName string, factory Factory) *Definition {
	return &Definition{
		ID:      id,
		Type:    typeName,
		Factory: factory,
		Tags:    make(map[string][]map[string]any),
	}
}

// AddTag appends a tag with its attributes and returns the definition
// for chaining.
func (d *Definition) AddTag(name string, attributes map[string]any) *Definition {
	if d.Tags == nil {
		d.Tags = make(map[string][]map[string]any)
	}
	if attributes == nil {
		attributes = map[string]any{}
	}
	d.Tags[name] = append(d.Tags[name], attributes)
	return d
}

// HasTag reports whether the definition carries the given tag.
func (d *Definition) HasTag(name string) bool {
	_, ok := d.Tags[name]
	return ok
}

// Tag returns the attribute sets recorded for the given tag.
func (d *Definition) Tag(name string) []map[string]any {
	return d.Tags[name]
}

// SetArguments replaces the definition arguments.
func (d *Definition) SetArguments(args ...any) *Definition {
	d.Arguments = args
	return d
}

// Argument returns the argument at index i, or nil when out of range.
func (d *Definition) Argument(i int) any {
	if i < 0 || i >= len(d.Arguments) {
		return nil
	}
	return d.Arguments[i]
}

// SetPublic marks the definition as public.
func (d *Definition) SetPublic(public bool) *Definition {
	d.Public = public
	return d
}

// Clone returns a copy of the definition. Tag attribute maps are copied,
// attribute values and arguments are not deep-copied.
func (d *Definition) Clone() *Definition {
	out := *d
	out.Arguments = slices.Clone(d.Arguments)
	out.Tags = make(map[string][]map[string]any, len(d.Tags))
	for name, attrs := range d.Tags {
		out.Tags[name] = cloneAttributes(attrs)
	}
	return &out
}

func cloneAttributes(attrs []map[string]any) []map[string]any {
	out := make([]map[string]any, len(attrs))
	for i, a := range attrs {
		out[i] = maps.Clone(a)
	}
	return out
}

// TagNames returns the tag names in sorted order.
func (d *Definition) TagNames() []string {
	names := make([]string, 0, len(d.Tags))
	for name := range d.Tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reference points to another service by id. References used as
// arguments are checked at compile time and resolved by ResolveArgument.
type Reference string

// References returns the service references among the arguments.
func (d *Definition) References() []Reference {
	var refs []Reference
	for _, arg := range d.Arguments {
		if ref, ok := arg.(Reference); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}
