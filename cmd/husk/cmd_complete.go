package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/husklang/husk/complete"
	"github.com/husklang/husk/config"
)

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "husk.yaml"
	}
	return filepath.Join(home, ".config", "husk", "husk.yaml")
}

func newCompleteCmd() *cobra.Command {
	var configPath string
	var line string

	cmd := &cobra.Command{
		Use:   "complete <prefix>",
		Short: "Print completion candidates for a prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}

			prefix := args[0]
			if line == "" {
				line = prefix
			}
			candidates, replacement := complete.New(reg).Complete(complete.Query{
				Prefix: prefix,
				Line:   line,
				Begin:  len(line) - len(prefix),
				End:    len(line),
			})
			for _, c := range candidates {
				fmt.Println(c)
			}
			if len(candidates) > 0 {
				fmt.Fprintf(os.Stderr, "replacing %d characters\n", replacement)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "configuration file")
	cmd.Flags().StringVarP(&line, "line", "l", "", "full line containing the prefix")
	return cmd
}
