package componentkit

import (
	"context"
	"fmt"
	"sort"
)

// PassType identifies the compile phase a pass belongs to.
type PassType string

// Compile phases, in execution order.
const (
	PassTypeBeforeOptimization PassType = "before_optimization"
	PassTypeOptimize           PassType = "optimization"
	PassTypeBeforeRemoving     PassType = "before_removing"
	PassTypeRemove             PassType = "removing"
	PassTypeAfterRemoving      PassType = "after_removing"
)

var passOrder = []PassType{
	PassTypeBeforeOptimization,
	PassTypeOptimize,
	PassTypeBeforeRemoving,
	PassTypeRemove,
	PassTypeAfterRemoving,
}

// CompilerPass transforms the container after every extension was loaded
// and before it is frozen.
type CompilerPass interface {
	Name() string
	Process(ctx context.Context, c *Container) error
}

// CompilerPassFunc adapts a function to the CompilerPass interface.
type CompilerPassFunc struct {
	PassName string
	Fn       func(ctx context.Context, c *Container) error
}

// Name implements CompilerPass.
func (f CompilerPassFunc) Name() string { return f.PassName }

// Process implements CompilerPass.
func (f CompilerPassFunc) Process(ctx context.Context, c *Container) error {
	return f.Fn(ctx, c)
}

type prioritizedPass struct {
	pass     CompilerPass
	priority int
	seq      int
}

// PassConfig holds the compiler passes of a container, per phase.
// Within a phase higher priorities run first; equal priorities keep
// registration order.
type PassConfig struct {
	passes map[PassType][]prioritizedPass
	seq    int
}

// NewPassConfig returns the default configuration: reference checking
// during optimization and removal of unused private definitions.
func NewPassConfig() *PassConfig {
	pc := &PassConfig{passes: make(map[PassType][]prioritizedPass)}
	pc.AddPass(CheckReferencesPass{}, PassTypeOptimize, 0)
	pc.AddPass(RemoveUnusedDefinitionsPass{}, PassTypeRemove, 0)
	return pc
}

// AddPass registers a pass for the given phase.
func (pc *PassConfig) AddPass(pass CompilerPass, passType PassType, priority int) {
	pc.seq++
	pc.passes[passType] = append(pc.passes[passType], prioritizedPass{pass: pass, priority: priority, seq: pc.seq})
}

// SetPasses replaces every pass of a phase. Passing nothing clears the phase.
func (pc *PassConfig) SetPasses(passType PassType, passes ...CompilerPass) {
	pc.passes[passType] = nil
	for _, p := range passes {
		pc.AddPass(p, passType, 0)
	}
}

// SetOptimizationPasses replaces the optimization passes.
func (pc *PassConfig) SetOptimizationPasses(passes ...CompilerPass) {
	pc.SetPasses(PassTypeOptimize, passes...)
}

// SetRemovingPasses replaces the removing passes.
func (pc *PassConfig) SetRemovingPasses(passes ...CompilerPass) {
	pc.SetPasses(PassTypeRemove, passes...)
}

// SetAfterRemovingPasses replaces the after-removing passes.
func (pc *PassConfig) SetAfterRemovingPasses(passes ...CompilerPass) {
	pc.SetPasses(PassTypeAfterRemoving, passes...)
}

// PassesOf returns the passes of one phase in execution order.
func (pc *PassConfig) PassesOf(passType PassType) []CompilerPass {
	entries := append([]prioritizedPass(nil), pc.passes[passType]...)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].seq < entries[j].seq
	})
	out := make([]CompilerPass, len(entries))
	for i, e := range entries {
		out[i] = e.pass
	}
	return out
}

// Passes returns every pass across phases in execution order.
func (pc *PassConfig) Passes() []CompilerPass {
	var out []CompilerPass
	for _, t := range passOrder {
		out = append(out, pc.PassesOf(t)...)
	}
	return out
}

// CheckReferencesPass fails when a definition argument references a
// service that does not exist.
type CheckReferencesPass struct{}

// Name implements CompilerPass.
func (CheckReferencesPass) Name() string { return "check_references" }

// Process implements CompilerPass.
func (CheckReferencesPass) Process(_ context.Context, c *Container) error {
	for _, id := range c.DefinitionIDs() {
		def, _ := c.Definition(id)
		for _, ref := range def.References() {
			if !c.HasDefinition(string(ref)) {
				return fmt.Errorf("%w: %q referenced by %q", ErrServiceNotFound, ref, id)
			}
		}
	}
	return nil
}

// RemoveUnusedDefinitionsPass drops private definitions that carry no tag
// and that no other definition references.
type RemoveUnusedDefinitionsPass struct{}

// Name implements CompilerPass.
func (RemoveUnusedDefinitionsPass) Name() string { return "remove_unused_definitions" }

// Process implements CompilerPass.
func (RemoveUnusedDefinitionsPass) Process(_ context.Context, c *Container) error {
	ids := c.DefinitionIDs()
	referenced := make(map[string]bool)
	for _, id := range ids {
		def, _ := c.Definition(id)
		for _, ref := range def.References() {
			referenced[string(ref)] = true
		}
	}
	for _, id := range ids {
		def, _ := c.Definition(id)
		if def.Public || len(def.Tags) > 0 || referenced[id] {
			continue
		}
		if err := c.RemoveDefinition(id); err != nil {
			return err
		}
	}
	return nil
}
