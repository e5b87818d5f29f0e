package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the blocktags command tree and exits non-zero on failure.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootState struct {
	debug  bool
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	state := &rootState{}

	cmd := &cobra.Command{
		Use:           "blocktags",
		Short:         "Render templates with the label and lang block tags",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			state.logger = newLogger(cmd.ErrOrStderr(), state.debug)
		},
	}

	cmd.PersistentFlags().BoolVar(&state.debug, "debug", false, "enable debug logging on stderr")

	cmd.AddCommand(renderCmd(state))
	cmd.AddCommand(tagsCmd(state))
	cmd.AddCommand(initCmd(state, newSurveyPrompter()))
	return cmd
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (s *rootState) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.logger
}
