package componentkit

// Extension translates the configuration of one alias into service
// definitions and parameters.
//
// An extension is registered with Container.RegisterExtension and receives,
// during Container.Compile, every raw configuration map that was loaded for
// its alias through Container.LoadFromExtension, in load order.
type Extension interface {
	// Alias returns the configuration key the extension owns,
	// e.g. "template_component".
	Alias() string

	// Load processes the raw configuration maps and registers definitions
	// and parameters on the container. Load runs before any compiler pass
	// and before the container is frozen.
	Load(configs []map[string]any, c *Container) error
}

// PrependExtension is implemented by extensions that need to push
// configuration to other extensions before any Load call.
type PrependExtension interface {
	Extension

	// Prepend runs for every prepending extension before Load is called
	// on any extension.
	Prepend(c *Container) error
}

// Bundle groups an extension with the compiler passes it needs.
type Bundle interface {
	// Name returns the unique bundle name, e.g. "TemplateComponentBundle".
	Name() string

	// ContainerExtension returns the bundle's extension, or nil.
	ContainerExtension() Extension

	// Build registers compiler passes on the container.
	Build(c *Container) error
}
