package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	blocktags "github.com/goliatone/go-blocktags"
	"github.com/goliatone/go-blocktags/pkg/blocktag"
	"github.com/goliatone/go-blocktags/pkg/page"
)

type renderOptions struct {
	configFile string
	markdown   bool
	escape     string
	output     string
	vars       map[string]string
}

func renderCmd(state *rootState) *cobra.Command {
	var opts renderOptions

	c := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a template file (or stdin) and print the HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			out, err := renderSource(cmd.Context(), src, opts, state.log())
			if err != nil {
				return err
			}

			if opts.output != "" {
				if err := os.WriteFile(opts.output, out, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				state.log().Info("render.written", "path", opts.output, "bytes", len(out))
				return nil
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	c.Flags().StringVarP(&opts.configFile, "config", "c", "", "YAML or TOML file with additional tag definitions")
	c.Flags().BoolVarP(&opts.markdown, "markdown", "m", false, "convert the rendered document from Markdown to HTML")
	c.Flags().StringVar(&opts.escape, "escape", "", "escape policy for every tag: none, html or sanitize")
	c.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	c.Flags().StringToStringVar(&opts.vars, "set", nil, "template variables as key=value pairs")
	return c
}

func readSource(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return data, nil
}

func renderSource(ctx context.Context, src []byte, opts renderOptions, logger *slog.Logger) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	engineOpts := []blocktags.Option{blocktags.WithLogger(logger)}
	if opts.configFile != "" {
		engineOpts = append(engineOpts, blocktags.WithConfigFile(opts.configFile))
	}
	if strings.TrimSpace(opts.escape) != "" {
		policy, err := blocktag.ParseEscapePolicy(opts.escape)
		if err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, blocktags.WithEscape(policy))
	}

	engine, err := blocktags.NewEngine(engineOpts...)
	if err != nil {
		return nil, err
	}

	pages, err := page.New(engine, page.WithMarkdown(opts.markdown), page.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	data := make(map[string]any, len(opts.vars))
	for key, value := range opts.vars {
		data[key] = value
	}
	return pages.Render(ctx, src, data)
}
