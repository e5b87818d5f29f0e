package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blocktags/pkg/blocktag"
)

const defaultConfigPath = "blocktags.yaml"

func initCmd(state *rootState, prompts prompter) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init [path]",
		Short: "Interactively create a tag definition file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			format, err := blocktag.FormatFromPath(path)
			if err != nil {
				return err
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}

			cfg, err := collectConfig(cmd.Context(), prompts)
			if err != nil {
				return err
			}

			data, err := cfg.Marshal(format)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			state.log().Debug("init.written", "path", path, "tags", len(cfg.Tags))
			fmt.Fprintf(cmd.OutOrStdout(), "Tag definitions written to %s\n", path)
			return nil
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return c
}

var escapeOptions = []string{
	blocktag.EscapeNone.String(),
	blocktag.EscapeHTML.String(),
	blocktag.EscapeSanitize.String(),
}

// collectConfig asks for a default escape policy and then for tag
// definitions until the user declines to add another one.
func collectConfig(ctx context.Context, prompts prompter) (blocktag.FileConfig, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var cfg blocktag.FileConfig

	escape, err := prompts.Select(ctx, "Default escape policy", escapeOptions, 0)
	if err != nil {
		return cfg, err
	}
	cfg.Escape = escape

	includeDefaults, err := prompts.Confirm(ctx, "Include the built-in label and lang tags?", true)
	if err != nil {
		return cfg, err
	}
	if includeDefaults {
		cfg.Tags = append(cfg.Tags, blocktag.DefaultFileConfig().Tags...)
	}

	for {
		more, err := prompts.Confirm(ctx, "Add a tag?", len(cfg.Tags) == 0)
		if err != nil {
			return cfg, err
		}
		if !more {
			break
		}
		def, err := collectTag(ctx, prompts, cfg.Tags)
		if err != nil {
			return cfg, err
		}
		cfg.Tags = append(cfg.Tags, def)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func collectTag(ctx context.Context, prompts prompter, existing []blocktag.TagDefinition) (blocktag.TagDefinition, error) {
	var def blocktag.TagDefinition

	name, err := prompts.Input(ctx, "Tag name", "", func(value string) error {
		return validateNewTagName(value, existing)
	})
	if err != nil {
		return def, err
	}
	if def.Name, err = blocktag.NormalizeTagName(name); err != nil {
		return def, err
	}

	if def.Trim, err = prompts.Confirm(ctx, "Trim surrounding whitespace from the label?", true); err != nil {
		return def, err
	}

	lang, err := prompts.Input(ctx, "Value of the pre element lang attribute (empty to omit)", "", nil)
	if err != nil {
		return def, err
	}
	def.LangAttr = strings.TrimSpace(lang)

	inherit := "inherit"
	choice, err := prompts.Select(ctx, "Escape policy", append([]string{inherit}, escapeOptions...), 0)
	if err != nil {
		return def, err
	}
	if choice != inherit {
		def.Escape = choice
	}
	return def, nil
}

func validateNewTagName(value string, existing []blocktag.TagDefinition) error {
	name, err := blocktag.NormalizeTagName(value)
	if err != nil {
		return err
	}
	for _, def := range existing {
		if strings.EqualFold(strings.TrimSpace(def.Name), name) {
			return errors.New("tag already defined")
		}
	}
	return nil
}
