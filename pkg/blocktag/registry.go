package blocktag

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrUnknownTag is returned when no handler is registered for a tag name.
	ErrUnknownTag = errors.New("blocktag: unknown tag")
	// ErrInvalidTagName is returned for empty or non-identifier tag names.
	ErrInvalidTagName = errors.New("blocktag: invalid tag name")
	// ErrDuplicateTag is returned when registering a name twice.
	ErrDuplicateTag = errors.New("blocktag: tag already registered")
)

var tagNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Registry maps tag names to handlers. Template engines hold a Registry and
// resolve block tags through it at render time. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// RegisterDefaults adds the `label` and `lang` tags to r.
func RegisterDefaults(r *Registry) error {
	if r == nil {
		return errors.New("blocktag: registry is nil")
	}
	if err := r.Register("label", New(LabelConfig())); err != nil {
		return err
	}
	return r.Register("lang", New(LangConfig()))
}

// Register adds a handler by name. Duplicate names return ErrDuplicateTag.
func (r *Registry) Register(name string, handler Handler) error {
	return r.set(name, handler, false)
}

// Replace adds or overrides a handler by name.
func (r *Registry) Replace(name string, handler Handler) error {
	return r.set(name, handler, true)
}

// MustRegister panics on registration failure. Useful for startup wiring.
func (r *Registry) MustRegister(name string, handler Handler) {
	if err := r.Register(name, handler); err != nil {
		panic(err)
	}
}

func (r *Registry) set(name string, handler Handler, replace bool) error {
	key, err := NormalizeTagName(name)
	if err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("blocktag: handler for %q is nil", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[key]; exists && !replace {
		return fmt.Errorf("%w: %q", ErrDuplicateTag, key)
	}
	r.handlers[key] = handler
	return nil
}

// Lookup retrieves a handler by name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[normalize(name)]
	return handler, ok
}

// Has reports whether a handler is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered tag names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy of the registry that can be mutated independently.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := NewRegistry()
	for name, handler := range r.handlers {
		cloned.handlers[name] = handler
	}
	return cloned
}

// Render dispatches inv to the handler registered for inv.TagName.
func (r *Registry) Render(inv Invocation) (Fragment, error) {
	handler, ok := r.Lookup(inv.TagName)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTag, inv.TagName)
	}
	return handler.RenderBlock(inv), nil
}

// NormalizeTagName lower-cases and trims name and checks it is a valid
// identifier.
func NormalizeTagName(name string) (string, error) {
	key := normalize(name)
	if !tagNamePattern.MatchString(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTagName, name)
	}
	return key, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
