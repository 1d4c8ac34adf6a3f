package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/batchcorp/frugalctl/options"
	"github.com/batchcorp/frugalctl/printer"
	"github.com/batchcorp/frugalctl/reader"
	"github.com/batchcorp/frugalctl/util"
	"github.com/batchcorp/frugalctl/writer"
)

func main() {
	cmd, opts, err := options.Handle(os.Args[1:])
	if err != nil {
		logrus.Fatalf("Unable to handle CLI input: %s", err)
	}

	if opts.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if opts.Quiet {
		logrus.SetLevel(logrus.ErrorLevel)
	}

	switch cmd {
	case "decode <filename>":
		err = decode(opts)
	case "encode <filename>":
		err = encode(opts)
	default:
		logrus.Fatalf("Unrecognized command: %s", cmd)
	}

	if err != nil {
		printer.Error(fmt.Sprintf("Unable to complete command: %s", err))
		os.Exit(1)
	}
}

func decode(opts *options.Options) error {
	data, err := util.ReadInput(opts.Decode.Filename)
	if err != nil {
		return err
	}

	doc := reader.DecodeToDocument(data)

	out, err := reader.MarshalDocument(doc)
	if err != nil {
		return err
	}

	if opts.Decode.Verbose {
		printer.PrintEnvelope(doc)
	}

	if opts.Decode.Pretty && opts.Decode.Output == "" {
		out = printer.PrettyJSON(out)
	}

	return util.WriteOutput(opts.Decode.Output, out)
}

func encode(opts *options.Options) error {
	data, err := util.ReadInput(opts.Encode.Filename)
	if err != nil {
		return err
	}

	out, err := writer.Encode(data, opts.Encode.Compact)
	if err != nil {
		return err
	}

	return util.WriteOutput(opts.Encode.Output, out)
}
