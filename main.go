package main

import (
	"log/slog"

	"nordify/convert"
	"nordify/extract"
	"nordify/parallel"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Workers  int        `short:"w" help:"Number of parallel workers, 0 for one per CPU" default:"0" env:"IGN_WORKERS"`
	LogLevel slog.Level `help:"Log level (debug, info, warn, error)" default:"info" env:"IGN_LOG_LEVEL"`

	Convert convert.CLICmd `cmd:"" default:"withargs" help:"Recolor an image, or every image of a directory, with a palette"`
	Extract extract.CLICmd `cmd:"" help:"Write the dominant colors of an image as a palette file"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("ign"),
		kong.Description("Image Go Nord: recolor images with the Nord palette, or any other."),
		kong.UsageOnError(),
	)

	slog.SetLogLoggerLevel(cli.LogLevel)

	pool := parallel.Start(cli.Workers)
	defer pool.Wait(true)

	kctx.FatalIfErrorf(kctx.Run(pool))
}
