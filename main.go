package main

import (
	"github.com/alecthomas/kong"
	"github.com/lepinkainen/clearcut/cmd"
	"github.com/lepinkainen/clearcut/types"
)

// Version is set at build time via -ldflags
var Version = "dev"

type CLI struct {
	Run        cmd.RunCmd        `cmd:"" default:"withargs" help:"Remove the background from every image in a directory"`
	Duplicates cmd.DuplicatesCmd `cmd:"" help:"Find visually identical images in a directory"`
}

func main() {
	var cli CLI
	appCtx := &types.AppContext{Version: Version}
	ctx := kong.Parse(&cli,
		kong.Name("clearcut"),
		kong.Description("Batch background removal for image folders"),
		kong.Bind(appCtx),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
