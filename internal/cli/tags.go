package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	blocktags "github.com/goliatone/go-blocktags"
	"github.com/goliatone/go-blocktags/pkg/blocktag"
)

func tagsCmd(state *rootState) *cobra.Command {
	var configFile string

	c := &cobra.Command{
		Use:   "tags",
		Short: "List the registered block tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts []blocktags.Option
			if configFile != "" {
				opts = append(opts, blocktags.WithConfigFile(configFile))
			}
			registry, err := blocktags.NewRegistry(opts...)
			if err != nil {
				return err
			}
			state.log().Debug("tags.listed", "count", len(registry.Names()))
			return printTags(cmd.OutOrStdout(), registry)
		},
	}

	c.Flags().StringVarP(&configFile, "config", "c", "", "YAML or TOML file with additional tag definitions")
	return c
}

func printTags(w io.Writer, registry *blocktag.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTRIM\tLANG\tESCAPE")
	for _, name := range registry.Names() {
		handler, _ := registry.Lookup(name)
		renderer, ok := handler.(*blocktag.Renderer)
		if !ok {
			fmt.Fprintf(tw, "%s\t-\t-\t-\n", name)
			continue
		}
		cfg := renderer.Config()
		lang := cfg.LangAttr
		if lang == "" {
			lang = "-"
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", name, cfg.Trim, lang, cfg.Escape)
	}
	return tw.Flush()
}
