// Command extract converts local .txt and .pdf files to normalized text.
//
//	extract [-out DIR] [-metrics] FILE...
//
// Without -out the text of each file is written to stdout, one line per file.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"readable/internal/extract"
	"readable/internal/readability"
)

type options struct {
	outDir  string
	metrics bool
	quiet   bool
}

// fileResult is one line of -metrics output.
type fileResult struct {
	File       string               `json:"file"`
	Pages      int                  `json:"pages,omitempty"`
	EmptyPages int                  `json:"empty_pages,omitempty"`
	Metrics    *readability.Metrics `json:"metrics,omitempty"`
	Text       string               `json:"text,omitempty"`
}

func main() {
	var opts options
	flag.StringVar(&opts.outDir, "out", "", "Directory to write <name>.txt files into")
	flag.BoolVar(&opts.metrics, "metrics", false, "Emit JSON lines with readability metrics")
	flag.BoolVar(&opts.quiet, "quiet", false, "Disable the progress bar")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: extract [-out DIR] [-metrics] FILE...")
		os.Exit(2)
	}

	failed := run(extract.New(), flag.Args(), opts, os.Stdout, os.Stderr)
	if failed > 0 {
		os.Exit(1)
	}
}

// run extracts every file and returns the number of failures.
func run(ex *extract.Extractor, files []string, opts options, stdout, stderr io.Writer) int {
	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			color.New(color.FgRed).Fprintf(stderr, "cannot create %s: %v\n", opts.outDir, err)
			return len(files)
		}
	}

	bar := newProgressBar(len(files), stderr, opts.quiet)
	enc := json.NewEncoder(stdout)
	failed, partial := 0, 0

	for _, path := range files {
		bar.Describe(color.BlueString("extracting %s", filepath.Base(path)))

		res, err := extractFile(ex, path)
		_ = bar.Add(1)
		if err != nil {
			failed++
			color.New(color.FgRed).Fprintf(stderr, "\n%s: %s\n", path, describe(err))
			continue
		}
		if res.Partial() {
			partial++
			color.New(color.FgYellow).Fprintf(stderr, "\n%s: %d of %d pages had no text\n", path, res.EmptyPages, res.Pages)
		}

		if err := emit(enc, stdout, path, res, opts); err != nil {
			failed++
			color.New(color.FgRed).Fprintf(stderr, "\n%s: %v\n", path, err)
		}
	}
	_ = bar.Finish()

	summary := color.New(color.FgGreen)
	if failed > 0 {
		summary = color.New(color.FgRed)
	}
	summary.Fprintf(stderr, "\n%d extracted, %d partial, %d failed\n", len(files)-failed, partial, failed)
	return failed
}

func extractFile(ex *extract.Extractor, path string) (*extract.Result, error) {
	if extract.KindFromFilename(path) == extract.KindUnknown {
		return ex.ExtractFile(path, nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ex.ExtractFile(filepath.Base(path), data)
}

func emit(enc *json.Encoder, stdout io.Writer, path string, res *extract.Result, opts options) error {
	if opts.outDir != "" {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".txt"
		if err := os.WriteFile(filepath.Join(opts.outDir, name), []byte(res.Text+"\n"), 0o644); err != nil {
			return err
		}
	}

	switch {
	case opts.metrics:
		out := fileResult{File: path, Pages: res.Pages, EmptyPages: res.EmptyPages}
		m := readability.Score(res.Text)
		out.Metrics = &m
		if opts.outDir == "" {
			out.Text = res.Text
		}
		return enc.Encode(out)
	case opts.outDir == "":
		_, err := fmt.Fprintln(stdout, res.Text)
		return err
	}
	return nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return "unsupported file type (want .txt or .pdf)"
	case errors.Is(err, extract.ErrDecode):
		var de *extract.DecodeError
		if errors.As(err, &de) && de.Err != nil {
			return "cannot decode: " + de.Err.Error()
		}
		return err.Error()
	default:
		return err.Error()
	}
}

func newProgressBar(total int, w io.Writer, quiet bool) *progressbar.ProgressBar {
	if quiet {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(color.BlueString("extracting")),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
