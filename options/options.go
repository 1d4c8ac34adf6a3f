// Package options stores all available options for frugalctl and parses
// them from CLI args. Its other responsibility is to perform "light"
// validation; anything deeper is performed by the utilizers of the options
// package.
package options

import (
	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
)

var (
	VERSION = "UNSET"
)

type Options struct {
	Debug   bool             `help:"Enable debug output." short:"d" env:"FRUGALCTL_DEBUG"`
	Quiet   bool             `help:"Suppress non-essential output." short:"q"`
	Version kong.VersionFlag `help:"Print version and exit."`

	Decode DecodeOptions `cmd:"" help:"Decode a base64 Frugal/Thrift capture into a JSON document."`
	Encode EncodeOptions `cmd:"" help:"Encode a JSON document into a base64 Frugal/Thrift capture."`
}

type DecodeOptions struct {
	Filename string `arg:"" help:"File containing the base64 capture ('-' for stdin)."`
	Output   string `help:"Write the document to a file instead of stdout." short:"o"`
	Pretty   bool   `help:"Colorize and indent the output document."`
	Verbose  bool   `help:"Also print envelope metadata and headers as tables."`
}

type EncodeOptions struct {
	Filename string `arg:"" help:"File containing the JSON document ('-' for stdin)."`
	Output   string `help:"Write the base64 capture to a file instead of stdout." short:"o"`
	Compact  bool   `help:"Encode the message body with the compact protocol." short:"c"`
}

// Handle parses CLI args and returns the selected command string along with
// the populated options.
func Handle(cliArgs []string) (string, *Options, error) {
	opts := &Options{}

	k, err := kong.New(
		opts,
		kong.Name("frugalctl"),
		kong.Description("Inspect and craft captured Frugal-framed Thrift RPC traffic."),
		kong.ShortUsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": VERSION,
		},
	)
	if err != nil {
		return "", nil, errors.Wrap(err, "unable to create new kong instance")
	}

	kongCtx, err := k.Parse(cliArgs)
	if err != nil {
		return "", nil, errors.Wrap(err, "unable to parse CLI options")
	}

	return kongCtx.Command(), opts, nil
}
