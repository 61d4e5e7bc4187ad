package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"riff/internal/driver"
	"riff/internal/source"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.rf",
	Short: "Dump the token stream of a source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	fs := source.NewFileSet()
	fileID, err := fs.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}

	tokens, bag := driver.TokenizeFile(fs, fileID, driver.Options{MaxDiagnostics: maxDiagnostics})
	printDiagnostics(cmd, fs, bag)

	switch format {
	case "pretty":
		for _, tok := range tokens {
			start, _ := fs.Resolve(tok.Span)
			fmt.Fprintf(cmd.OutOrStdout(), "%d:%d\t%s\t%q\n", start.Line, start.Col, tok.Kind, tok.Text)
		}
		return nil
	case "json":
		type jsonToken struct {
			Kind  string `json:"kind"`
			Text  string `json:"text,omitempty"`
			Start uint32 `json:"start"`
			End   uint32 `json:"end"`
		}
		out := make([]jsonToken, 0, len(tokens))
		for _, tok := range tokens {
			out = append(out, jsonToken{
				Kind:  tok.Kind.String(),
				Text:  tok.Text,
				Start: tok.Span.Start,
				End:   tok.Span.End,
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
