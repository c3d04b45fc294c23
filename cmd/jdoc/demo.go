// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/alecthomas/kingpin/v2"
	"github.com/creachadair/jdoc"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log/level"
)

// demoCommand builds a set of sample documents, prints them, and checks that
// each can be printed into a buffer of exactly bounded size.
type demoCommand struct {
	unformatted *bool
}

func addDemoCommand(app *kingpin.Application) {
	cmd := &demoCommand{}
	demo := app.Command("demo", "Build and print sample documents.").Action(cmd.run)
	cmd.unformatted = demo.Flag("unformatted", "Omit spaces between elements.").Bool()
}

func (cmd *demoCommand) run(*kingpin.ParseContext) error {
	d := jdoc.NewDoc()
	docs, err := sampleDocs(d)
	if err != nil {
		exitWithErr(fmt.Errorf("building samples: %w", err))
	}
	bold := color.New(color.Bold)
	failed := 0
	for _, s := range docs {
		bold.Printf("%s:\n", s.name)
		text, err := jdoc.PrintBuffered(s.root, 0, !*cmd.unformatted)
		if err != nil {
			exitWithErr(fmt.Errorf("print %s: %w", s.name, err))
		}
		fmt.Println(text)
		if err := checkPreallocated(s.root, len(text), !*cmd.unformatted); err != nil {
			level.Error(logger).Log("msg", "preallocated print", "doc", s.name, "err", err)
			failed++
			continue
		}
		level.Debug(logger).Log("msg", "printed", "doc", s.name, "size", humanize.Bytes(uint64(len(text))))
	}

	// A document built and deleted leaves nothing behind.
	for _, s := range docs {
		if err := s.root.Delete(); err != nil {
			exitWithErr(fmt.Errorf("delete %s: %w", s.name, err))
		}
	}
	if n := d.Live(); n != 0 {
		exitWithErr(fmt.Errorf("%d nodes remain after deleting all samples", n))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d samples failed", failed, len(docs))
	}
	color.New(color.FgGreen).Printf("%d samples OK\n", len(docs))
	return nil
}

// checkPreallocated verifies that root prints into a buffer with slack, and
// does not print into one that is too short.
func checkPreallocated(root jdoc.Node, size int, pretty bool) error {
	buf := make([]byte, size+5)
	n, ok := jdoc.PrintPreallocated(root, buf, pretty)
	if !ok {
		return fmt.Errorf("failed with capacity %d", len(buf))
	} else if n != size {
		return fmt.Errorf("wrote %d bytes, want %d", n, size)
	}
	if size > 0 {
		if _, ok := jdoc.PrintPreallocated(root, buf[:size-1], pretty); ok {
			return fmt.Errorf("succeeded with capacity %d", size-1)
		}
	}
	return nil
}

type sample struct {
	name string
	root jdoc.Node
}

// sampleDocs constructs the sample documents in d.
func sampleDocs(d *jdoc.Doc) ([]sample, error) {
	var errs []error
	check := func(_ jdoc.Node, err error) { errs = append(errs, err) }

	// A video description with a nested format object.
	video := d.Object()
	check(video.AddString("name", "Jack (\"Bee\") Nimble"))
	format, err := video.AddObject("format")
	errs = append(errs, err)
	check(format.AddString("type", "rect"))
	check(format.AddNumber("width", 1920))
	check(format.AddNumber("height", 1080))
	check(format.AddFalse("interlace"))
	check(format.AddNumber("frame rate", 24))

	days := d.StringArray([]string{
		"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
	})

	matrix := d.Array()
	for _, row := range [][]int{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}} {
		errs = append(errs, matrix.Append(d.IntArray(row)))
	}

	// A gallery entry with a thumbnail and a list of IDs. The keys are constant.
	gallery := d.Object()
	img := d.Object()
	errs = append(errs, gallery.AddConst("Image", img))
	errs = append(errs, img.AddConst("Width", d.Number(800)))
	errs = append(errs, img.AddConst("Height", d.Number(600)))
	errs = append(errs, img.AddConst("Title", d.String("View from 15th Floor")))
	thumb := d.Object()
	errs = append(errs, img.AddConst("Thumbnail", thumb))
	errs = append(errs, thumb.AddConst("Url", d.StringReference("http://www.example.com/image/481989943")))
	errs = append(errs, thumb.AddConst("Height", d.Number(125)))
	errs = append(errs, thumb.AddConst("Width", d.String("100")))
	errs = append(errs, img.AddConst("IDs", d.IntArray([]int{116, 943, 234, 38793})))

	records := d.Array()
	for _, r := range []struct {
		lat, lon  float64
		city, zip string
	}{
		{37.7668, -122.3959, "SAN FRANCISCO", "94107"},
		{37.371991, -122.026, "SUNNYVALE", "94085"},
	} {
		rec := d.Object()
		errs = append(errs, records.Append(rec))
		check(rec.AddString("precision", "zip"))
		check(rec.AddNumber("Latitude", r.lat))
		check(rec.AddNumber("Longitude", r.lon))
		check(rec.AddString("Address", ""))
		check(rec.AddString("City", r.city))
		check(rec.AddString("State", "CA"))
		check(rec.AddString("Zip", r.zip))
		check(rec.AddString("Country", "US"))
	}

	// Numbers JSON cannot represent are printed as null.
	inf := d.Object()
	check(inf.AddNumber("number", math.Inf(1)))

	return []sample{
		{"video", video},
		{"weekdays", days},
		{"matrix", matrix},
		{"gallery", gallery},
		{"records", records},
		{"infinity", inf},
	}, errors.Join(errs...)
}
