package templatecomponent

import (
	"path"
	"sort"
	"strings"
)

// TemplateExtension is appended to derived template paths.
const TemplateExtension = ".tmpl"

// ComponentFactory resolves component names and template paths from the
// namespace defaults. It does not discover or render components.
type ComponentFactory struct {
	defaults   map[string]NamespaceDefaults
	namespaces []string // longest first
}

// NewComponentFactory builds a factory for the given namespace defaults.
func NewComponentFactory(defaults map[string]NamespaceDefaults) *ComponentFactory {
	f := &ComponentFactory{defaults: make(map[string]NamespaceDefaults, len(defaults))}
	for ns, d := range defaults {
		f.defaults[ns] = d
		f.namespaces = append(f.namespaces, ns)
	}
	sort.Slice(f.namespaces, func(i, j int) bool {
		if len(f.namespaces[i]) != len(f.namespaces[j]) {
			return len(f.namespaces[i]) > len(f.namespaces[j])
		}
		return f.namespaces[i] < f.namespaces[j]
	})
	return f
}

// Namespaces returns the known namespaces, longest first.
func (f *ComponentFactory) Namespaces() []string {
	return append([]string(nil), f.namespaces...)
}

// Match returns the most specific namespace containing typePath.
func (f *ComponentFactory) Match(typePath string) (string, NamespaceDefaults, bool) {
	for _, ns := range f.namespaces {
		if strings.HasPrefix(typePath, ns) {
			return ns, f.defaults[ns], true
		}
	}
	return "", NamespaceDefaults{}, false
}

// ComponentName derives the component name of a type path such as
// "app/components/alert/Banner": the path relative to its namespace with
// "/" replaced by ":", prefixed by the namespace name prefix.
func (f *ComponentFactory) ComponentName(typePath string) (string, bool) {
	ns, d, ok := f.Match(typePath)
	if !ok {
		return "", false
	}
	name := strings.ReplaceAll(strings.TrimPrefix(typePath, ns), "/", ":")
	if d.NamePrefix != "" {
		name = d.NamePrefix + ":" + name
	}
	return name, true
}

// TemplatePath derives the template of a type path from the namespace
// template directory.
func (f *ComponentFactory) TemplatePath(typePath string) (string, bool) {
	ns, d, ok := f.Match(typePath)
	if !ok {
		return "", false
	}
	return path.Join(d.TemplateDirectory, strings.TrimPrefix(typePath, ns)) + TemplateExtension, true
}

// TemplateFinder locates templates of anonymous components.
type TemplateFinder struct {
	AnonymousDirectory string
}

// AnonymousTemplate returns the template path of an anonymous component
// name such as "alert:Banner". It reports false when no anonymous
// directory is configured.
func (t *TemplateFinder) AnonymousTemplate(name string) (string, bool) {
	if t.AnonymousDirectory == "" || name == "" {
		return "", false
	}
	return path.Join(t.AnonymousDirectory, strings.ReplaceAll(name, ":", "/")) + TemplateExtension, true
}
