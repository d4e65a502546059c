package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/husklang/husk/syntax"
)

func newWatchCmd() *cobra.Command {
	var extension string

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a directory and report syntax errors on save",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			parser, err := syntax.NewParser()
			if err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()

			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			fmt.Printf("watching %s for %s files\n", dir, extension)

			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
						continue
					}
					if filepath.Ext(event.Name) != extension {
						continue
					}
					checkFile(parser, event.Name)
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
				}
			}
		},
	}
	cmd.Flags().StringVarP(&extension, "ext", "e", ".hsk", "file extension to check")
	return cmd
}

func checkFile(parser *syntax.Parser, path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
		return
	}
	if _, err := parser.Parse(string(source), syntax.WithFilename(path)); err != nil {
		fmt.Printf("%v\n", err)
		return
	}
	fmt.Printf("%s: ok\n", path)
}
