package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"spice/internal/prof"
	"spice/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "spice",
	Short:         "Spice language compiler",
	Long:          `Spice compiles .spice sources to LLVM IR and reports diagnostics`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		mode, err := cmd.Flags().GetString("color")
		if err != nil {
			return err
		}
		enabled, err := colorEnabled(mode, os.Stderr)
		if err != nil {
			return err
		}
		useColor = enabled
		color.NoColor = !enabled
		return startProfiling(cmd)
	},
}

var (
	// useColor is decided once per invocation from --color.
	useColor bool
	profile  *prof.Session
)

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(irCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("target", "", "target triple (overrides spice.toml)")
	rootCmd.PersistentFlags().Int("max-runs", 0, "cap on analyzer passes per file (0 uses the default)")
	rootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("memprofile", "", "write a heap profile to file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if perr := profile.Stop(); perr != nil {
		fmt.Fprintln(os.Stderr, "profile:", perr)
	}
	if err != nil {
		if !reported(err) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func colorEnabled(mode string, f *os.File) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(mode)) {
	case "", "auto":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		fd := f.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}

func startProfiling(cmd *cobra.Command) error {
	var (
		opts prof.Options
		err  error
	)
	if opts.CPU, err = cmd.Flags().GetString("cpuprofile"); err != nil {
		return err
	}
	if opts.Mem, err = cmd.Flags().GetString("memprofile"); err != nil {
		return err
	}
	if opts.Trace, err = cmd.Flags().GetString("runtime-trace"); err != nil {
		return err
	}
	if !opts.Enabled() {
		return nil
	}
	profile, err = prof.Start(opts)
	return err
}

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
