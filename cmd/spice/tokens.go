package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spice/internal/diag"
	"spice/internal/diagfmt"
	"spice/internal/lexer"
	"spice/internal/source"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <file.spice>",
	Short: "Print the token stream of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokens,
}

func init() {
	tokensCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokens(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	fs := source.NewFileSet()
	id, err := fs.Load(args[0], 0)
	if err != nil {
		return reportFailure(cmd.ErrOrStderr(), diag.WrapCompilerError(diag.CmpSourceFileNotFound, "cannot read "+args[0], err), nil)
	}
	toks, err := lexer.Tokenize(fs, fs.Get(id))
	if err != nil {
		return reportFailure(cmd.ErrOrStderr(), err, fs)
	}
	if format == "json" {
		return diagfmt.FormatTokensJSON(cmd.OutOrStdout(), toks, fs)
	}
	return diagfmt.FormatTokensPretty(cmd.OutOrStdout(), toks, fs)
}
