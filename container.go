package componentkit

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// registryState is the lifecycle state of a container.
type registryState int

const (
	stateOpen registryState = iota
	stateCompiling
	stateFrozen
)

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the container logger.
func WithLogger(logger Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDeprecationSink adds a sink that receives every deprecation notice
// in addition to the container's own collector.
func WithDeprecationSink(sink DeprecationSink) Option {
	return func(c *Container) {
		if sink != nil {
			c.extraSinks = append(c.extraSinks, sink)
		}
	}
}

// Container is a service registry that is populated by extensions,
// transformed by compiler passes and then frozen.
//
// A container is built once per boot: Open → Compile → Frozen. After
// Compile every mutation fails with ErrRegistryFrozen; queries and Get
// keep working. A container must not be shared across boot attempts.
type Container struct {
	*containerCore

	// chain holds the ids being built by the lookup that handed this
	// container to a factory. It is empty on the container returned by
	// NewContainer.
	chain []string
}

type containerCore struct {
	*observerSet

	mu               sync.RWMutex
	state            registryState
	parameters       ParameterBag
	definitions      map[string]*Definition
	extensions       map[string]Extension
	extensionOrder   []string
	extensionConfigs map[string][]map[string]any
	passConfig       *PassConfig
	deprecations     *DeprecationCollector
	extraSinks       []DeprecationSink
	logger           Logger

	// buildMu serializes the first construction of services.
	buildMu    sync.Mutex
	instanceMu sync.Mutex
	instances  map[string]any
}

// NewContainer creates an open container holding the given parameters.
func NewContainer(params ParameterBag, opts ...Option) *Container {
	c := &Container{containerCore: &containerCore{
		parameters:       NewParameterBag(params),
		definitions:      make(map[string]*Definition),
		extensions:       make(map[string]Extension),
		extensionConfigs: make(map[string][]map[string]any),
		passConfig:       NewPassConfig(),
		deprecations:     NewDeprecationCollector(),
		logger:           nopLogger{},
		instances:        make(map[string]any),
	}}
	for _, opt := range opts {
		opt(c)
	}
	c.observerSet = newObserverSet(c.logger)
	return c
}

// Logger returns the container logger.
func (c *Container) Logger() Logger {
	return c.logger
}

// checkMutable must be called with c.mu held.
func (c *Container) checkMutable() error {
	if c.state == stateFrozen {
		return ErrRegistryFrozen
	}
	return nil
}

// SetParameter sets a parameter.
func (c *Container) SetParameter(name string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkMutable(); err != nil {
		return fmt.Errorf("set parameter %q: %w", name, err)
	}
	c.parameters[name] = value
	return nil
}

// Parameters returns a copy of the parameter bag.
func (c *Container) Parameters() ParameterBag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return NewParameterBag(c.parameters)
}

// Register adds a definition unless one with the same id already exists.
// It returns the definition stored under id, which is the existing one
// when the id was taken. Register never replaces a definition.
func (c *Container) Register(def *Definition) (*Definition, error) {
	if def == nil {
		return nil, ErrDefinitionNil
	}
	if def.ID == "" {
		return nil, ErrDefinitionIDEmpty
	}
	c.mu.Lock()
	if err := c.checkMutable(); err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("register %q: %w", def.ID, err)
	}
	if existing, ok := c.definitions[def.ID]; ok {
		c.mu.Unlock()
		c.logger.Debug("Definition already registered", "id", def.ID)
		return existing, nil
	}
	c.definitions[def.ID] = def
	c.mu.Unlock()

	c.logger.Debug("Definition registered", "id", def.ID, "type", def.Type)
	c.emit(context.Background(), EventTypeDefinitionRegistered, map[string]any{"id": def.ID, "type": def.Type})
	return def, nil
}

// SetDefinition stores a definition, replacing any existing one.
func (c *Container) SetDefinition(def *Definition) error {
	if def == nil {
		return ErrDefinitionNil
	}
	if def.ID == "" {
		return ErrDefinitionIDEmpty
	}
	c.mu.Lock()
	if err := c.checkMutable(); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("set definition %q: %w", def.ID, err)
	}
	c.definitions[def.ID] = def
	c.mu.Unlock()

	c.logger.Debug("Definition set", "id", def.ID, "type", def.Type)
	c.emit(context.Background(), EventTypeDefinitionRegistered, map[string]any{"id": def.ID, "type": def.Type})
	return nil
}

// RemoveDefinition drops a definition. Removing an unknown id is a no-op.
func (c *Container) RemoveDefinition(id string) error {
	c.mu.Lock()
	if err := c.checkMutable(); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("remove definition %q: %w", id, err)
	}
	_, ok := c.definitions[id]
	delete(c.definitions, id)
	c.mu.Unlock()

	if ok {
		c.logger.Debug("Definition removed", "id", id)
		c.emit(context.Background(), EventTypeDefinitionRemoved, map[string]any{"id": id})
	}
	return nil
}

// HasDefinition reports whether a definition exists. It is valid in every
// container state.
func (c *Container) HasDefinition(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.definitions[id]
	return ok
}

// Definition returns the definition stored under id. While the container
// is open the stored definition itself is returned and may be edited, as
// compiler passes do. Once frozen, a copy is returned.
func (c *Container) Definition(id string) (*Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.definitions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, id)
	}
	if c.state == stateFrozen {
		return def.Clone(), nil
	}
	return def, nil
}

// DefinitionIDs returns every definition id in sorted order.
func (c *Container) DefinitionIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.definitions))
	for id := range c.definitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FindTaggedServiceIDs returns the ids of definitions carrying tag, sorted,
// with their tag attributes.
func (c *Container) FindTaggedServiceIDs(tag string) map[string][]map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]map[string]any)
	for id, def := range c.definitions {
		if def.HasTag(tag) {
			out[id] = cloneAttributes(def.Tag(tag))
		}
	}
	return out
}

// RegisterExtension adds an extension. Aliases must be unique.
func (c *Container) RegisterExtension(ext Extension) error {
	if ext == nil {
		return ErrExtensionNil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkMutable(); err != nil {
		return fmt.Errorf("register extension %q: %w", ext.Alias(), err)
	}
	if _, ok := c.extensions[ext.Alias()]; ok {
		return fmt.Errorf("%w: %s", ErrExtensionAlreadyRegistered, ext.Alias())
	}
	c.extensions[ext.Alias()] = ext
	c.extensionOrder = append(c.extensionOrder, ext.Alias())
	c.logger.Debug("Extension registered", "alias", ext.Alias())
	return nil
}

// RegisterBundle registers a bundle's extension and lets it add its
// compiler passes.
func (c *Container) RegisterBundle(b Bundle) error {
	if ext := b.ContainerExtension(); ext != nil {
		if err := c.RegisterExtension(ext); err != nil {
			return fmt.Errorf("bundle %s: %w", b.Name(), err)
		}
	}
	if err := b.Build(c); err != nil {
		return fmt.Errorf("bundle %s: %w", b.Name(), err)
	}
	return nil
}

// Extension returns the extension registered under alias.
func (c *Container) Extension(alias string) (Extension, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ext, ok := c.extensions[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrExtensionNotFound, alias)
	}
	return ext, nil
}

// ExtensionAliases returns the registered aliases in registration order.
func (c *Container) ExtensionAliases() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.extensionOrder...)
}

// LoadFromExtension queues a raw configuration map for the extension
// owning alias. Several maps may be queued; the extension receives them
// all at compile time.
func (c *Container) LoadFromExtension(alias string, config map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkMutable(); err != nil {
		return fmt.Errorf("load config for %q: %w", alias, err)
	}
	if _, ok := c.extensions[alias]; !ok {
		return fmt.Errorf("%w: no extension is able to load the configuration for %q", ErrExtensionNotFound, alias)
	}
	if config == nil {
		config = map[string]any{}
	}
	c.extensionConfigs[alias] = append(c.extensionConfigs[alias], config)
	return nil
}

// ExtensionConfig returns the raw configuration maps queued for alias.
func (c *Container) ExtensionConfig(alias string) []map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]map[string]any(nil), c.extensionConfigs[alias]...)
}

// PassConfig returns the compiler pass configuration. It may be changed
// until Compile is called.
func (c *Container) PassConfig() *PassConfig {
	return c.passConfig
}

// AddCompilerPass registers a compiler pass.
func (c *Container) AddCompilerPass(pass CompilerPass, passType PassType, priority int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkMutable(); err != nil {
		return fmt.Errorf("add compiler pass %q: %w", pass.Name(), err)
	}
	c.passConfig.AddPass(pass, passType, priority)
	return nil
}

// Deprecate implements DeprecationSink. Notices are recorded, logged,
// forwarded to the configured sinks and emitted as events.
func (c *Container) Deprecate(notice DeprecationNotice) {
	c.deprecations.Deprecate(notice)
	LoggerDeprecationSink{Logger: c.logger}.Deprecate(notice)
	MultiDeprecationSink(c.extraSinks).Deprecate(notice)
	c.emit(context.Background(), EventTypeConfigDeprecated, notice)
}

// Deprecations returns the notices triggered so far.
func (c *Container) Deprecations() []DeprecationNotice {
	return c.deprecations.Notices()
}

// Compile loads every extension, runs the compiler passes and freezes the
// container. A container compiles once.
func (c *Container) Compile(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case stateCompiling, stateFrozen:
		c.mu.Unlock()
		return ErrContainerCompiled
	}
	c.state = stateCompiling
	order := append([]string(nil), c.extensionOrder...)
	c.mu.Unlock()
	mark := c.deprecations.Len()

	if err := c.loadExtensions(ctx, order); err != nil {
		c.resetState(mark)
		return err
	}

	for _, pass := range c.passConfig.Passes() {
		c.logger.Debug("Running compiler pass", "pass", pass.Name())
		if err := pass.Process(ctx, c); err != nil {
			c.resetState(mark)
			return fmt.Errorf("%w: %s: %w", ErrCompilerPassFailed, pass.Name(), err)
		}
	}

	c.Freeze()
	c.logger.Info("Container compiled", "definitions", len(c.DefinitionIDs()), "deprecations", len(c.Deprecations()))
	c.emit(ctx, EventTypeContainerCompiled, map[string]any{"definitions": c.DefinitionIDs()})
	return nil
}

func (c *Container) loadExtensions(ctx context.Context, order []string) error {
	for _, alias := range order {
		ext, _ := c.Extension(alias)
		if p, ok := ext.(PrependExtension); ok {
			if err := p.Prepend(c); err != nil {
				return fmt.Errorf("%w: prepend %s: %w", ErrExtensionLoadFailed, alias, err)
			}
		}
	}
	for _, alias := range order {
		ext, _ := c.Extension(alias)
		configs := c.ExtensionConfig(alias)
		c.logger.Debug("Loading extension", "alias", alias, "configs", len(configs))
		if err := ext.Load(configs, c); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrExtensionLoadFailed, alias, err)
		}
		c.emit(ctx, EventTypeExtensionLoaded, map[string]any{"alias": alias})
	}
	return nil
}

// resetState puts a container whose compilation failed back in the open
// state so that the caller can inspect it or compile it again. Notices
// recorded since mark are dropped: extensions report them again on the
// next attempt. Definitions and parameters added by the failed attempt are
// kept.
func (c *Container) resetState(mark int) {
	c.deprecations.truncate(mark)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateCompiling {
		c.state = stateOpen
	}
}

// Freeze makes the container immutable. It is irreversible and calling it
// again has no effect. Definitions are copied so that pointers handed out
// while the container was open no longer reach the registry.
func (c *Container) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateFrozen {
		return
	}
	for id, def := range c.definitions {
		c.definitions[id] = def.Clone()
	}
	c.state = stateFrozen
}

// IsFrozen reports whether the container can still be mutated.
func (c *Container) IsFrozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == stateFrozen
}

// IsCompiled is an alias of IsFrozen kept for readability at call sites
// that care about compilation rather than mutability.
func (c *Container) IsCompiled() bool {
	return c.IsFrozen()
}

// Get instantiates the service stored under id, once. It is only valid on
// a compiled container and is safe for concurrent use.
//
// Factories receive a container scoped to the lookup that runs them, so a
// service reached again through its own dependencies is reported as
// ErrCircularServiceLookup while concurrent lookups wait for the build.
func (c *Container) Get(id string) (any, error) {
	if !c.IsFrozen() {
		return nil, fmt.Errorf("get %q: %w", id, ErrContainerNotCompiled)
	}
	if slices.Contains(c.chain, id) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrCircularServiceLookup, strings.Join(c.chain, " -> "), id)
	}
	c.mu.RLock()
	def, ok := c.definitions[id]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, id)
	}
	if def.Factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrDefinitionFactoryNil, id)
	}
	if inst, ok := c.instance(id); ok {
		return inst, nil
	}

	// Nested lookups run under the lock taken by the outermost one.
	if len(c.chain) == 0 {
		c.buildMu.Lock()
		defer c.buildMu.Unlock()
		if inst, ok := c.instance(id); ok {
			return inst, nil
		}
	}

	scoped := &Container{containerCore: c.containerCore, chain: append(slices.Clone(c.chain), id)}
	inst, err := def.Factory(scoped)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrServiceInstantiation, id, err)
	}

	c.instanceMu.Lock()
	defer c.instanceMu.Unlock()
	c.instances[id] = inst
	return inst, nil
}

func (c *Container) instance(id string) (any, bool) {
	c.instanceMu.Lock()
	defer c.instanceMu.Unlock()
	inst, ok := c.instances[id]
	return inst, ok
}

// ResolveArgument returns argument i of a definition, instantiating it when
// it is a Reference.
func (c *Container) ResolveArgument(def *Definition, i int) (any, error) {
	arg := def.Argument(i)
	if ref, ok := arg.(Reference); ok {
		return c.Get(string(ref))
	}
	return arg, nil
}

// Resolve fetches a service and asserts its type.
func Resolve[T any](c *Container, id string) (T, error) {
	var zero T
	inst, err := c.Get(id)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T", ErrServiceWrongType, id, inst)
	}
	return typed, nil
}

func (c *Container) emit(ctx context.Context, eventType string, data any) {
	if len(c.GetObservers()) == 0 {
		return
	}
	event := NewCloudEvent(eventType, EventSourceContainer, data, nil)
	if err := c.NotifyObservers(ctx, event); err != nil {
		c.logger.Error("Failed to notify observers", "event", eventType, "error", err)
	}
}
