package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mggg/votekit/internal/log"
	"github.com/mggg/votekit/internal/metrics"
	"github.com/mggg/votekit/internal/siteconfig"
)

func newSiteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Work with the docs-site configuration",
	}
	cmd.AddCommand(newSiteValidateCmd())
	return cmd
}

func newSiteValidateCmd() *cobra.Command {
	var (
		docsDir string
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate the docs-site configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := "mkdocs.yml"
			if len(args) == 1 {
				configPath = args[0]
			}

			if err := validateSite(cmd, configPath, docsDir); err != nil {
				if !watch {
					return err
				}
				// In watch mode a broken config is reported, not fatal.
				fmt.Fprintf(cmd.ErrOrStderr(), "invalid: %v\n", err)
			}

			if !watch {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", configPath)
				return nil
			}
			return watchSite(cmd, configPath, docsDir)
		},
	}

	cmd.Flags().StringVar(&docsDir, "docs", "docs", "directory holding the documentation pages")
	cmd.Flags().BoolVar(&watch, "watch", false, "revalidate whenever the config file changes")
	return cmd
}

func validateSite(cmd *cobra.Command, configPath, docsDir string) error {
	f, err := os.Open(configPath)
	if err != nil {
		metrics.RecordSiteConfigValidation("error")
		return fmt.Errorf("open site config: %w", err)
	}
	defer f.Close()

	doc, err := siteconfig.Parse(f)
	if err != nil {
		metrics.RecordSiteConfigValidation("invalid")
		return err
	}
	if err := doc.Validate(docsDir); err != nil {
		metrics.RecordSiteConfigValidation("invalid")
		return err
	}
	metrics.RecordSiteConfigValidation("ok")
	return nil
}

// watchSite revalidates the config whenever it changes on disk. Editors often
// replace files via rename, so the parent directory is watched and events are
// filtered to the config path.
func watchSite(cmd *cobra.Command, configPath, docsDir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(configPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	logger := log.WithComponent("site-watch")
	logger.Info().
		Str(log.FieldEvent, "site.watch").
		Str(log.FieldPath, configPath).
		Msg("watching site configuration")

	target := filepath.Clean(configPath)
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := validateSite(cmd, configPath, docsDir); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "invalid: %v\n", err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", configPath)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Str(log.FieldEvent, "site.watch_error").Msg("watcher error")
		}
	}
}
