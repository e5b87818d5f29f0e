// Package blocktags wires the `label` and `lang` block tags into a pongo2
// template engine:
//
//	engine, err := blocktags.NewEngine()
//	html, err := engine.RenderString(`{% label Ruby %}puts 1{% endlabel %}`, nil)
//
// Additional tags can be declared in a YAML or TOML file and loaded with
// WithConfigFile.
package blocktags

import (
	"fmt"
	"log/slog"

	"github.com/goliatone/go-blocktags/pkg/blocktag"
	"github.com/goliatone/go-blocktags/pkg/render/template/gotemplate"
)

// Option configures the registry and engine built by this package.
type Option func(*options)

type options struct {
	configFile string
	escape     *blocktag.EscapePolicy
	logger     *slog.Logger
	engineOpts []gotemplate.Option
}

// WithConfigFile loads additional tag definitions from a YAML or TOML file.
// Definitions replace built-in tags with the same name.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithEscape forces an escape policy on every configurable tag, overriding
// the policy of built-in and file defined tags.
func WithEscape(policy blocktag.EscapePolicy) Option {
	return func(o *options) {
		o.escape = &policy
	}
}

// WithLogger forwards a logger to the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEngineOptions passes options through to gotemplate.New.
func WithEngineOptions(engineOpts ...gotemplate.Option) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, engineOpts...)
	}
}

// WithFilter makes fn available to templates as the filter name. pongo2
// filters are process wide: the first function registered under a name wins.
func WithFilter(name string, fn gotemplate.FilterFunc) Option {
	return func(o *options) {
		if fn == nil {
			return
		}
		o.engineOpts = append(o.engineOpts, gotemplate.WithTemplateFunc(map[string]any{name: fn}))
	}
}

// DefaultRegistry returns a new registry holding the built-in tags.
func DefaultRegistry() *blocktag.Registry {
	registry := blocktag.NewRegistry()
	if err := blocktag.RegisterDefaults(registry); err != nil {
		panic(err)
	}
	return registry
}

// NewRegistry builds the registry described by opts: built-in tags, then the
// config file definitions, then any escape override.
func NewRegistry(opts ...Option) (*blocktag.Registry, error) {
	o := collect(opts)

	registry := DefaultRegistry()
	if o.configFile != "" {
		cfg, err := blocktag.LoadConfig(o.configFile)
		if err != nil {
			return nil, err
		}
		if err := cfg.Apply(registry); err != nil {
			return nil, fmt.Errorf("blocktags: apply %s: %w", o.configFile, err)
		}
	}
	if o.escape != nil {
		if err := overrideEscape(registry, *o.escape); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// NewEngine builds a pongo2 engine with the registry described by opts.
func NewEngine(opts ...Option) (*gotemplate.Engine, error) {
	o := collect(opts)

	registry, err := NewRegistry(opts...)
	if err != nil {
		return nil, err
	}

	engineOpts := append([]gotemplate.Option{gotemplate.WithRegistry(registry)}, o.engineOpts...)
	if o.logger != nil {
		engineOpts = append(engineOpts, gotemplate.WithLogger(o.logger))
	}
	return gotemplate.New(engineOpts...)
}

// RenderString renders source with the built-in tags.
func RenderString(source string, data any) (string, error) {
	engine, err := NewEngine()
	if err != nil {
		return "", err
	}
	return engine.RenderString(source, data)
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func overrideEscape(registry *blocktag.Registry, policy blocktag.EscapePolicy) error {
	for _, name := range registry.Names() {
		handler, _ := registry.Lookup(name)
		renderer, ok := handler.(*blocktag.Renderer)
		if !ok {
			continue
		}
		cfg := renderer.Config()
		cfg.Escape = policy
		if err := registry.Replace(name, blocktag.New(cfg)); err != nil {
			return err
		}
	}
	return nil
}
