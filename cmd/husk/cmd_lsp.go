package main

import (
	"github.com/spf13/cobra"

	"github.com/husklang/husk/complete"
	"github.com/husklang/husk/config"
	"github.com/husklang/husk/lsp"
	"github.com/husklang/husk/syntax"
)

func newLSPCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			parser, err := syntax.NewParser()
			if err != nil {
				return err
			}
			server := lsp.NewServer(parser, complete.New(reg), version)
			return server.RunStdio()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "configuration file")
	return cmd
}
