package commands

import (
	"fmt"

	"git.home.luguber.info/inful/htmlres/internal/compilation"
	"git.home.luguber.info/inful/htmlres/internal/htmlres"
)

// ChunksCmd implements the 'chunks' command.
type ChunksCmd struct {
	Manifest string `short:"m" help:"Build manifest to read; skips the config file when set"`
}

func (c *ChunksCmd) Run(g *Global, root *CLI) error {
	manifest, outputDir := c.Manifest, ""
	if manifest == "" {
		opts, err := loadOptions(root)
		if err != nil {
			return err
		}
		manifest, outputDir = opts.Output.Manifest, opts.Output.Directory
	}

	comp, err := compilation.LoadManifest(manifest, outputDir)
	if err != nil {
		return err
	}

	out := g.out()
	for _, line := range htmlres.FormatChunkNames(htmlres.DiscoverChunks(comp)) {
		_, _ = fmt.Fprintln(out, line)
	}
	return nil
}
