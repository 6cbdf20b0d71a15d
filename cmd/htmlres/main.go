package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/htmlres/cmd/htmlres/commands"
	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
	"git.home.luguber.info/inful/htmlres/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Out: os.Stdout}

	ctx := kong.Parse(cli,
		kong.Name("htmlres"),
		kong.Description("Inject built scripts, stylesheets and favicons into an HTML entry document."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	if err := ctx.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
