package componentkit

import (
	"fmt"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// DeprecationNotice is a non-fatal warning about a feature scheduled for removal.
type DeprecationNotice struct {
	// Package is the name of the package that deprecated the feature,
	// e.g. "gocodealone/template-component".
	Package string `json:"package" yaml:"package"`

	// Version is the package version in which the deprecation happened.
	Version string `json:"version" yaml:"version"`

	// Message describes what is deprecated.
	Message string `json:"message" yaml:"message"`
}

// String renders the notice as "Since <package> <version>: <message>".
func (n DeprecationNotice) String() string {
	return fmt.Sprintf("Since %s %s: %s", n.Package, n.Version, n.Message)
}

// RemovalVersion returns the release that removes something deprecated in
// the given version: the next major, as "<major>.0".
func RemovalVersion(since string) (string, error) {
	v, err := semver.NewVersion(since)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrDeprecationVersionInvalid, since, err)
	}
	return fmt.Sprintf("%d.0", v.Major()+1), nil
}

// NewOptionDeprecation builds the notice for a deprecated config option.
// option is the fully qualified option path, e.g. "template_component.controllers_json".
func NewOptionDeprecation(pkg, since, option string) (DeprecationNotice, error) {
	removal, err := RemovalVersion(since)
	if err != nil {
		return DeprecationNotice{}, err
	}
	return DeprecationNotice{
		Package: pkg,
		Version: since,
		Message: fmt.Sprintf("The %q config option is deprecated, and will be removed in %s.", option, removal),
	}, nil
}

// DeprecationSink receives deprecation notices.
type DeprecationSink interface {
	Deprecate(notice DeprecationNotice)
}

// DeprecationSinkFunc adapts a function to the DeprecationSink interface.
type DeprecationSinkFunc func(notice DeprecationNotice)

// Deprecate implements DeprecationSink.
func (f DeprecationSinkFunc) Deprecate(notice DeprecationNotice) {
	f(notice)
}

// DeprecationCollector records every notice it receives. It is safe for
// concurrent use.
type DeprecationCollector struct {
	mu      sync.Mutex
	notices []DeprecationNotice
}

// NewDeprecationCollector creates an empty collector.
func NewDeprecationCollector() *DeprecationCollector {
	return &DeprecationCollector{}
}

// Deprecate implements DeprecationSink.
func (c *DeprecationCollector) Deprecate(notice DeprecationNotice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, notice)
}

// Notices returns a copy of the recorded notices, in order of arrival.
func (c *DeprecationCollector) Notices() []DeprecationNotice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]DeprecationNotice, len(c.notices))
	copy(out, c.notices)
	return out
}

// Messages returns the rendered notices.
func (c *DeprecationCollector) Messages() []string {
	notices := c.Notices()
	out := make([]string, len(notices))
	for i, n := range notices {
		out[i] = n.String()
	}
	return out
}

// Len returns the number of recorded notices.
func (c *DeprecationCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notices)
}

func (c *DeprecationCollector) truncate(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < len(c.notices) {
		c.notices = c.notices[:n]
	}
}

// Reset drops every recorded notice.
func (c *DeprecationCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = nil
}

// LoggerDeprecationSink forwards notices to a Logger at warn level.
type LoggerDeprecationSink struct {
	Logger Logger
}

// Deprecate implements DeprecationSink.
func (s LoggerDeprecationSink) Deprecate(notice DeprecationNotice) {
	if s.Logger == nil {
		return
	}
	s.Logger.Warn("Deprecation", "package", notice.Package, "since", notice.Version, "message", notice.Message)
}

// MultiDeprecationSink fans notices out to several sinks.
type MultiDeprecationSink []DeprecationSink

// Deprecate implements DeprecationSink.
func (m MultiDeprecationSink) Deprecate(notice DeprecationNotice) {
	for _, sink := range m {
		if sink != nil {
			sink.Deprecate(notice)
		}
	}
}
