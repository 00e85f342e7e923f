package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbit/pkg/cache"
	orberrors "github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/export"
	"github.com/matzehuels/orbit/pkg/hierarchy"
)

// Supported export formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}

// exportCommand creates the static export command.
func (c *CLI) exportCommand() *cobra.Command {
	var flags sourceFlags
	var (
		formats  string
		output   string
		selected string
		title    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the diagram as DOT, SVG, or PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}

			tree, _, err := c.loadTree(ctx, flags, cfg)
			if err != nil {
				return err
			}
			if selected != "" {
				if _, ok := tree.Node(selected); !ok {
					return orberrors.New(orberrors.ErrCodeInvalidData, "unknown node %q", selected)
				}
			}

			backend, err := newCacheBackend(ctx, cfg.Cache)
			if err != nil {
				c.Logger.Warn("cache backend unavailable, rendering uncached", "err", err)
				backend = cache.NewNullCache()
			}
			defer backend.Close()

			prog := newProgress(c.Logger)
			written := 0
			for _, format := range parseFormats(formats) {
				path, cached, err := c.exportOne(ctx, tree, backend, exportSpec{
					format:   strings.TrimSpace(format),
					output:   output,
					selected: selected,
					title:    title,
				})
				if err != nil {
					return err
				}
				printFile(path)
				printStats(tree.NodeCount(), len(tree.Links()), cached)
				written++
			}
			prog.done(fmt.Sprintf("Exported %d artifact(s)", written))
			if flags.file != "" {
				printNextStep("Preview interactively", "orbit view --file "+flags.file)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&formats, "format", formatSVG, "Comma-separated output formats (dot, svg, png)")
	cmd.Flags().StringVarP(&output, "output", "o", "orbit", "Output path prefix")
	cmd.Flags().StringVar(&selected, "select", "", "Node ID to emphasize as the active selection")
	cmd.Flags().StringVar(&title, "title", "", "Graph title drawn as a label")
	return cmd
}

type exportSpec struct {
	format   string
	output   string
	selected string
	title    string
}

// exportOne renders a single artifact, consulting the export cache first.
// Returns the written path and whether the bytes came from cache.
func (c *CLI) exportOne(ctx context.Context, tree *hierarchy.Tree, backend cache.Cache, spec exportSpec) (string, bool, error) {
	dot := export.ToDOT(tree, export.Options{SelectedID: spec.selected, Title: spec.title})
	path := spec.output + "." + spec.format

	if spec.format == formatDOT {
		return path, false, os.WriteFile(path, []byte(dot), 0o644)
	}

	// Rendered artifacts key on the DOT text itself: any change to the
	// tree, selection, or title produces a different key.
	keyer := cache.NewDefaultKeyer()
	key := keyer.ExportKey(cache.Hash([]byte(dot)), cache.ExportKeyOpts{Format: spec.format})

	if data, ok, err := backend.Get(ctx, key); err == nil && ok {
		return path, true, os.WriteFile(path, data, 0o644)
	}

	var (
		data []byte
		err  error
	)
	switch spec.format {
	case formatSVG:
		data, err = export.RenderSVG(ctx, dot)
	case formatPNG:
		data, err = export.RenderPNG(ctx, dot)
	default:
		return "", false, orberrors.New(orberrors.ErrCodeInvalidConfig, "unknown format %q", spec.format)
	}
	if err != nil {
		return "", false, err
	}

	if err := backend.Set(ctx, key, data, cache.ExportTTL); err != nil {
		c.Logger.Debug("export cache write failed", "err", err)
	}
	return path, false, os.WriteFile(path, data, 0o644)
}
