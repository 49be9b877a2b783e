package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"repoforge/internal/interchange"
)

var summarized bool

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Print the repository as flat text, full content or outlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		out, err := eng.Map(cmd.Context(), summarized)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var catCmd = &cobra.Command{
	Use:   "cat <relative-path>",
	Short: "Print one tracked file's content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		out, err := eng.FileContent(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var (
	withOutputs bool
	withErrors  bool
	watch       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute every tracked file and report outputs and failures",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("outputs") {
			withOutputs = cfg.Diagnostics.WithOutputs
		}
		if !cmd.Flags().Changed("errors") {
			withErrors = cfg.Diagnostics.WithErrors
		}

		report := func() error {
			results, err := eng.Diagnose(cmd.Context(), withOutputs, withErrors)
			if err != nil {
				return err
			}
			if results == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to report")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), results.FlatText())
			return nil
		}

		if err := report(); err != nil {
			return err
		}
		if watch {
			return eng.Watch(cmd.Context(), func(ctx context.Context) error {
				return report()
			})
		}
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply [payload.json]",
	Short: "Apply an interchange payload to the repository ('-' or no arg reads stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 0 || args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}
		payload, err := interchange.Decode(data)
		if err != nil {
			return err
		}
		eng, err := newEngine()
		if err != nil {
			return err
		}
		if err := eng.Apply(payload); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d entries\n", len(payload))
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <relative-path>",
	Short: "Render one tracked document for terminal display",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		out, err := eng.RenderDoc(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	mapCmd.Flags().BoolVar(&summarized, "summary", false, "emit structural outlines instead of full content")
	runCmd.Flags().BoolVar(&withOutputs, "outputs", false, "report captured stdout of successful files")
	runCmd.Flags().BoolVar(&withErrors, "errors", true, "report failure traces")
	runCmd.Flags().BoolVar(&watch, "watch", false, "rerun on file changes")
}
