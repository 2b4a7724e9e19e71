package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/document"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/pipeline"
)

// =============================================================================
// Pull
// =============================================================================

// pullCommand loads a page from the store into a local file.
func (c *CLI) pullCommand() *cobra.Command {
	var (
		output  string
		opts    pipeline.Options
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "pull [handle]",
		Short: "Load a page from the store into a file",
		Long: `Load a page from the configured store into a local JSON file.

The page is migrated and normalized on the way: cards written by older
versions are upgraded and both layouts are settled. The handle defaults to
[site] handle from the config file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			handle, err := c.handleArg(args)
			if err != nil {
				return err
			}
			opts.Handle = handle
			opts.Logger = c.Logger

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Loading %s...", handle))
			spinner.Start()
			res, err := runner.Load(ctx, opts)
			if err != nil {
				spinner.StopWithError("Load failed")
				return fmt.Errorf("load %s: %w", handle, err)
			}
			spinner.Stop()

			if output == "" {
				output = handle + "." + res.Doc.PageSlug() + ".json"
			}
			if err := document.WriteFile(res.Doc, output); err != nil {
				return fmt.Errorf("write page %s: %w", output, err)
			}

			items := res.Doc.Items()
			printSuccess("Pulled %s", res.Doc.Page)
			printFile(output)
			printLayoutStats(len(items), grid.Height(items, grid.Desktop), grid.Height(items, grid.Mobile), res.CacheHit)
			if res.Migrated > 0 {
				printDetail("Migrated %d cards", res.Migrated)
			}
			printNewline()
			printNextStep("Edit", appName+" edit "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <handle>.<page>.json)")
	cmd.Flags().StringVarP(&opts.Page, "page", "p", document.DefaultPage, "page record key")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the page cache")
	cmd.Flags().BoolVar(&opts.SkipNormalize, "raw", false, "keep the stored layout as is")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// =============================================================================
// Push
// =============================================================================

// pushCommand saves a local page file to the store.
func (c *CLI) pushCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "push [page.json]",
		Short: "Save a page file to the store",
		Long: `Save a local page file to the configured store.

Only cards that changed since the stored version are written, and cards that
are no longer on the page are deleted. Written cards are stamped with the
current time, and the file is updated to match what was stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := document.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("load page %s: %w", args[0], err)
			}
			cfg, err := c.Config()
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Saving %s...", doc.Page))
			spinner.Start()
			res, err := runner.Save(ctx, doc, pipeline.Options{BaseURL: cfg.Site.BaseURL, Logger: c.Logger})
			if err != nil {
				spinner.StopWithError("Save failed")
				return fmt.Errorf("save %s: %w", doc.Page, err)
			}
			spinner.Stop()

			if res.Skipped {
				printInfo("%s is up to date", doc.Page)
				return nil
			}
			if err := document.WriteFile(doc, args[0]); err != nil {
				return fmt.Errorf("write page %s: %w", args[0], err)
			}
			printSuccess("Pushed %s (%d written, %d deleted)", doc.Page, res.Puts, res.Deletes)
			if doc.Publication != nil && doc.Publication.URL != "" {
				printKeyValue("URL", StyleLink.Render(doc.Publication.URL))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// =============================================================================
// Pages
// =============================================================================

// pagesCommand lists and deletes stored pages.
func (c *CLI) pagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List or delete stored pages",
	}
	cmd.AddCommand(c.pagesListCommand())
	cmd.AddCommand(c.pagesDeleteCommand())
	return cmd
}

func (c *CLI) pagesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [handle]",
		Short: "List a user's stored pages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			handle, err := c.handleArg(args)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			pages, err := runner.Pages(ctx, handle)
			if err != nil {
				return fmt.Errorf("list pages of %s: %w", handle, err)
			}
			if len(pages) == 0 {
				printInfo("No pages stored for %s", handle)
				return nil
			}
			printInfo("%s pages for %s", StyleNumber.Render(fmt.Sprint(len(pages))), handle)
			for _, p := range pages {
				fmt.Println("  " + StyleValue.Render(p))
			}
			return nil
		},
	}
}

func (c *CLI) pagesDeleteCommand() *cobra.Command {
	var page string
	cmd := &cobra.Command{
		Use:   "delete [handle]",
		Short: "Delete a stored page and its cards",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			handle, err := c.handleArg(args)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			if err := runner.Delete(ctx, pipeline.Options{Handle: handle, Page: page, Logger: c.Logger}); err != nil {
				return fmt.Errorf("delete %s: %w", page, err)
			}
			printSuccess("Deleted %s/%s", handle, strings.TrimPrefix(page, "blento."))
			return nil
		},
	}
	cmd.Flags().StringVarP(&page, "page", "p", document.DefaultPage, "page record key")
	return cmd
}

// handleArg returns the handle given on the command line or the configured
// default.
func (c *CLI) handleArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cfg, err := c.Config()
	if err != nil {
		return "", err
	}
	if cfg.Site.Handle == "" {
		return "", fmt.Errorf("no handle given and [site] handle is not configured")
	}
	return cfg.Site.Handle, nil
}
