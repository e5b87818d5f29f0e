package blocktag

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a tag definition file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the file format from the path extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("blocktag: unsupported config extension %q", filepath.Ext(path))
	}
}

// TagDefinition describes one block tag backed by the parameterized Renderer.
type TagDefinition struct {
	Name     string `yaml:"name" toml:"name"`
	Trim     bool   `yaml:"trim,omitempty" toml:"trim,omitempty"`
	LangAttr string `yaml:"lang_attr,omitempty" toml:"lang_attr,omitempty"`
	// Escape overrides the file level policy when set.
	Escape string `yaml:"escape,omitempty" toml:"escape,omitempty"`
}

// FileConfig is the decoded form of a tag definition file.
type FileConfig struct {
	Escape string          `yaml:"escape,omitempty" toml:"escape,omitempty"`
	Tags   []TagDefinition `yaml:"tags" toml:"tags"`
}

// DefaultFileConfig returns the definitions of the built-in `label` and `lang`
// tags.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		Escape: EscapeNone.String(),
		Tags: []TagDefinition{
			{Name: "label", Trim: true},
			{Name: "lang", LangAttr: ShellLang},
		},
	}
}

// LoadConfig reads a YAML or TOML tag definition file.
func LoadConfig(path string) (FileConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return FileConfig{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("blocktag: read config: %w", err)
	}
	cfg, err := ParseConfig(data, format)
	if err != nil {
		return FileConfig{}, fmt.Errorf("blocktag: %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates a tag definition document.
func ParseConfig(data []byte, format Format) (FileConfig, error) {
	var cfg FileConfig
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return FileConfig{}, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return FileConfig{}, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return FileConfig{}, fmt.Errorf("blocktag: unsupported config format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// Marshal encodes the configuration in the requested format.
func (c FileConfig) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(c)
	case FormatTOML:
		return toml.Marshal(c)
	default:
		return nil, fmt.Errorf("blocktag: unsupported config format %q", format)
	}
}

// Validate checks tag names and escape policies.
func (c FileConfig) Validate() error {
	var errs []error
	if _, err := ParseEscapePolicy(c.Escape); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[string]struct{}, len(c.Tags))
	for idx, def := range c.Tags {
		name, err := NormalizeTagName(def.Name)
		if err != nil {
			errs = append(errs, fmt.Errorf("tags[%d]: %w", idx, err))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("tags[%d]: %w: %q", idx, ErrDuplicateTag, name))
		}
		seen[name] = struct{}{}
		if _, err := ParseEscapePolicy(def.Escape); err != nil {
			errs = append(errs, fmt.Errorf("tags[%d] %q: %w", idx, name, err))
		}
	}
	return errors.Join(errs...)
}

// ResolvedTag is a tag definition with its effective renderer configuration.
type ResolvedTag struct {
	Name   string
	Config Config
}

// Resolve validates c and returns the effective configuration of every
// definition, in file order.
func (c FileConfig) Resolve() ([]ResolvedTag, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	fallback, _ := ParseEscapePolicy(c.Escape)

	out := make([]ResolvedTag, 0, len(c.Tags))
	for _, def := range c.Tags {
		name, _ := NormalizeTagName(def.Name)
		policy := fallback
		if strings.TrimSpace(def.Escape) != "" {
			policy, _ = ParseEscapePolicy(def.Escape)
		}
		out = append(out, ResolvedTag{
			Name: name,
			Config: Config{
				Trim:     def.Trim,
				LangAttr: strings.TrimSpace(def.LangAttr),
				Escape:   policy,
			},
		})
	}
	return out, nil
}

// Configs resolves each definition to its renderer configuration, keyed by
// normalized tag name.
func (c FileConfig) Configs() (map[string]Config, error) {
	resolved, err := c.Resolve()
	if err != nil {
		return nil, err
	}
	out := make(map[string]Config, len(resolved))
	for _, tag := range resolved {
		out[tag.Name] = tag.Config
	}
	return out, nil
}

// Apply registers every definition on r in file order, replacing existing
// handlers with the same name.
func (c FileConfig) Apply(r *Registry) error {
	if r == nil {
		return errors.New("blocktag: registry is nil")
	}
	resolved, err := c.Resolve()
	if err != nil {
		return err
	}
	for _, tag := range resolved {
		if err := r.Replace(tag.Name, New(tag.Config)); err != nil {
			return fmt.Errorf("blocktag: apply %q: %w", tag.Name, err)
		}
	}
	return nil
}
