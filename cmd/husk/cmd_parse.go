package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/husklang/husk/syntax"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var debug int

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a husk file and dump the syntax tree",
		Long:  "Parse a husk file, or standard input when no file is given, and dump the syntax tree.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := "<stdin>"
			var source []byte
			var err error
			if len(args) == 1 {
				filename = args[0]
				source, err = os.ReadFile(filename)
			} else {
				source, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}

			parser, err := syntax.NewParser()
			if err != nil {
				return err
			}
			tree, err := parser.Parse(string(source),
				syntax.WithFilename(filename),
				syntax.WithDebug(debug))
			if err != nil {
				return err
			}
			if tree == nil {
				return nil
			}

			switch outputFormat {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(tree); err != nil {
					return fmt.Errorf("encode: %w", err)
				}
			case "tree":
				fmt.Println(tree.String())
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format (json, tree)")
	cmd.Flags().IntVar(&debug, "debug", 0, "token trace verbosity")
	return cmd
}
