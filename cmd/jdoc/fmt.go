// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/creachadair/jdoc"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log/level"
)

// fmtCommand parses each input and prints it in canonical form.
type fmtCommand struct {
	files       *[]string
	unformatted *bool
	maxDepth    *int
	strict      *bool
}

func addFmtCommand(app *kingpin.Application) {
	cmd := &fmtCommand{}
	f := app.Command("fmt", "Parse and print JSON files (default stdin).").Action(cmd.run)
	cmd.unformatted = f.Flag("unformatted", "Omit spaces between elements.").Bool()
	cmd.maxDepth = f.Flag("max-depth", "Maximum nesting depth of arrays and objects.").
		Default(fmt.Sprint(jdoc.DefaultMaxDepth)).Int()
	cmd.strict = f.Flag("strict", "Reject trailing data after the value.").Bool()
	cmd.files = f.Arg("file", "The files to format.").ExistingFiles()
}

func (cmd *fmtCommand) run(*kingpin.ParseContext) error {
	if len(*cmd.files) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitWithErr(fmt.Errorf("read stdin: %w", err))
		}
		return cmd.format("<stdin>", data)
	}
	var failed int
	for _, name := range *cmd.files {
		data, err := os.ReadFile(name)
		if err != nil {
			exitWithErr(fmt.Errorf("failed to read file: %w", err))
		}
		if err := cmd.format(name, data); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(*cmd.files))
	}
	return nil
}

func (cmd *fmtCommand) format(name string, data []byte) error {
	doc := jdoc.NewDoc()
	root, _, err := jdoc.ParseWithOpts(data, &jdoc.ParseOptions{
		RequireNullTerminated: *cmd.strict,
		MaxDepth:              *cmd.maxDepth,
		Doc:                   doc,
	})
	var serr *jdoc.SyntaxError
	if errors.As(err, &serr) {
		level.Error(logger).Log("msg", "parse failed", "file", name,
			"at", serr.Location, "offset", serr.Offset, "err", serr.Message,
			"near", truncate(serr.Remainder(), 24))
		return err
	} else if err != nil {
		level.Error(logger).Log("msg", "parse failed", "file", name, "err", err)
		return err
	}
	out, err := jdoc.PrintBuffered(root, len(data), !*cmd.unformatted)
	if err != nil {
		level.Error(logger).Log("msg", "print failed", "file", name, "err", err)
		return err
	}
	if len(*cmd.files) > 1 {
		color.New(color.Bold).Printf("%s:\n", name)
	}
	fmt.Println(out)
	level.Debug(logger).Log("msg", "formatted", "file", name,
		"input", humanize.Bytes(uint64(len(data))),
		"output", humanize.Bytes(uint64(len(out))),
		"nodes", humanize.Comma(int64(doc.Live())))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
