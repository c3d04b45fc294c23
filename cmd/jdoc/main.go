// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Program jdoc parses and prints JSON documents, and demonstrates the
// construction of documents with the jdoc package.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/creachadair/jdoc"
	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mattn/go-isatty"
)

var logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))

func main() {
	app := kingpin.New("jdoc", "Parse, print, and build JSON documents.")
	noColor := app.Flag("no-color", "Disable colored output.").Bool()
	verbose := app.Flag("verbose", "Log debug messages.").Short('v').Bool()
	app.PreAction(func(*kingpin.ParseContext) error {
		color.NoColor = *noColor || !isatty.IsTerminal(os.Stdout.Fd())
		allow := level.AllowInfo()
		if *verbose {
			allow = level.AllowDebug()
		}
		logger = level.NewFilter(logger, allow)
		return nil
	})

	addDemoCommand(app)
	addFmtCommand(app)
	app.Command("version", "Print the library version.").Action(func(*kingpin.ParseContext) error {
		fmt.Println(jdoc.Version())
		return nil
	})

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

func exitWithErr(err error) {
	level.Error(logger).Log("msg", "command failed", "err", err)
	os.Exit(1)
}
