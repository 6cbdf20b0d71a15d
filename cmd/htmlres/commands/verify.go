package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/htmlres/internal/compilation"
	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
	"git.home.luguber.info/inful/htmlres/internal/logfields"
	"git.home.luguber.info/inful/htmlres/internal/verify"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	Files       []string `arg:"" optional:"" help:"HTML files to check; defaults to the configured output document"`
	PublicPath  string   `name:"public-path" help:"Public path the references are served under; defaults to the manifest's"`
	Concurrency int      `help:"Documents checked in parallel" default:"4"`
}

func (v *VerifyCmd) Run(g *Global, root *CLI) error {
	opts, err := loadOptions(root)
	if err != nil {
		return err
	}

	files := v.Files
	if len(files) == 0 {
		files = []string{outputDocument(opts)}
	}

	publicPath := v.PublicPath
	switch {
	case publicPath != "":
	case opts.PublicPath != nil:
		publicPath = *opts.PublicPath
	default:
		if comp, err := compilation.LoadManifest(opts.Output.Manifest, opts.Output.Directory); err == nil {
			publicPath = comp.PublicPath
		} else {
			slog.Warn("Cannot read manifest; assuming public path /", logfields.Error(err))
			publicPath = "/"
		}
	}

	verifier := &verify.Verifier{
		OutputDir:   opts.Output.Directory,
		PublicPath:  publicPath,
		Concurrency: v.Concurrency,
		Logger:      slog.Default(),
	}
	results, err := verifier.Files(context.Background(), files)
	if err != nil {
		return err
	}

	out := g.out()
	problems := 0
	for _, res := range results {
		for _, p := range res.Problems {
			problems++
			_, _ = fmt.Fprintf(out, "%s: <%s %s=%q> %s\n", res.File, p.Ref.Tag, p.Ref.Attribute, p.Ref.URL, p.Reason)
		}
		_, _ = fmt.Fprintf(out, "%s: %d references, %d external, %d problems\n", res.File, res.Refs, res.Skipped, len(res.Problems))
	}

	if problems > 0 {
		return errors.BuildError(fmt.Sprintf("%d unresolved references", problems)).Build()
	}
	return nil
}
