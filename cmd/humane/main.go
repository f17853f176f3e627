// Package main provides the humane CLI, which renders diagnostic messages
// from the command line and inspects the diagnostics configuration.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/humane"
	"go.jacobcolvin.com/humane/version"
)

func main() {
	cfg := humane.NewConfig()

	var configPath string

	rootCmd := &cobra.Command{
		Use:           "humane",
		Short:         "Render human-facing diagnostic messages",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	cfg.RegisterFlags(flags)

	rootCmd.AddCommand(
		newEmitCmd(cfg, flags, &configPath),
		newSchemaCmd(),
		newVersionCmd(),
	)

	completionErr := cfg.RegisterCompletions(rootCmd)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newEmitCmd(cfg *humane.Config, flags *pflag.FlagSet, configPath *string) *cobra.Command {
	var (
		level string
		meta  []string
	)

	cmd := &cobra.Command{
		Use:   "emit [flags] <text...>",
		Short: "Render a diagnostic message",
		Long: `emit renders a diagnostic message to stdout as a color-coded
"[SEVERITY] text" line. Fatal messages additionally capture a crash report
and exit with the fatal exit code.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runEmit(cfg, flags, *configPath, level, meta, args)
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", "info",
		fmt.Sprintf("message severity, one of: %s", humane.SeverityNames()))
	cmd.Flags().StringArrayVarP(&meta, "meta", "m", nil,
		"metadata entry as key=value, folded into fatal crash reports (repeatable)")

	completionErr := cmd.RegisterFlagCompletionFunc("level",
		cobra.FixedCompletions(humane.SeverityNames(), cobra.ShellCompDirectiveNoFileComp))
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	return cmd
}

func runEmit(cfg *humane.Config, flags *pflag.FlagSet, configPath, level string, meta, args []string) error {
	severity, err := humane.ParseSeverity(level)
	if err != nil {
		return err
	}

	metadata, err := parseMetadata(meta)
	if err != nil {
		return err
	}

	// A config file provides the base; explicitly set flags win over it.
	if configPath != "" {
		fileCfg, err := humane.LoadConfig(configPath)
		if err != nil {
			return err
		}

		applyChangedFlags(fileCfg, cfg, flags)
		cfg = fileCfg
	}

	e, err := humane.New(cfg, humane.WithOutput(os.Stdout))
	if err != nil {
		return err
	}

	res, emitErr := e.Emit(severity, strings.Join(args, " "), metadata)
	if res.Outcome == humane.OutcomeFatalHandled {
		if emitErr != nil {
			fmt.Fprintf(os.Stderr, "%v\n", emitErr)
		}

		os.Exit(humane.FatalExitCode)
	}

	return emitErr
}

// applyChangedFlags overlays flag values the user explicitly set onto dst.
func applyChangedFlags(dst, src *humane.Config, flags *pflag.FlagSet) {
	if flags.Changed(src.Flags.DebugEnabled) {
		dst.DebugEnabled = src.DebugEnabled
	}

	if flags.Changed(src.Flags.Color) {
		dst.Color = src.Color
	}

	if flags.Changed(src.Flags.ReportDir) {
		dst.ReportDir = src.ReportDir
	}

	if flags.Changed(src.Flags.ReportURL) {
		dst.ReportURL = src.ReportURL
	}
}

func parseMetadata(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	metadata := make(map[string]string, len(entries))

	for _, entry := range entries {
		k, v, ok := strings.Cut(entry, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid metadata entry %q: want key=value", entry)
		}

		metadata[k] = v
	}

	return metadata, nil
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for config files",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			out, err := json.MarshalIndent(humane.ConfigSchema(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling schema: %w", err)
			}

			out = append(out, '\n')

			_, err = os.Stdout.Write(out)
			if err != nil {
				return fmt.Errorf("writing schema: %w", err)
			}

			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("humane %s (%s %s %s)\n",
				version.Info(), version.Revision, version.Platform(), version.GoVersion)
		},
	}
}
