// Command checkcodes validates activation code files with the same rules as
// the upload endpoint.
//
//	checkcodes [-lang fr|en] [-json] [-max-size 1MiB] [-workers 4] FILE...
//
// It prints one line per file and exits with status 1 when any file fails.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/JonMunkholm/codeimport/internal/codes"
	"github.com/JonMunkholm/codeimport/internal/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// fileResult is one line of output.
type fileResult struct {
	File string `json:"file"`
	codes.UploadCheckResult
	Count int `json:"count,omitempty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, checks every file and returns the exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("checkcodes", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flagLang := fs.String("lang", "fr", "Message language (fr or en)")
	flagJSON := fs.Bool("json", false, "Print one JSON object per file")
	flagMaxSize := fs.Int64("max-size", codes.DefaultMaxSize, "Maximum file size in bytes")
	flagMaxDups := fs.Int("max-duplicates", codes.DefaultMaxDuplicatesShown, "Duplicated codes listed in messages")
	flagWorkers := fs.Int("workers", runtime.NumCPU(), "Files checked concurrently")
	flagVerbose := fs.Bool("v", false, "Log debug output to stderr")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: checkcodes [flags] FILE...")
		fs.PrintDefaults()
		return 2
	}

	level := "warn"
	if *flagVerbose {
		level = "debug"
	}
	slog.SetDefault(logging.New(stderr, level, "text"))

	checker := codes.NewChecker()
	checker.MaxSize = *flagMaxSize
	checker.MaxDuplicatesShown = *flagMaxDups
	tag := codes.MatchLanguage(*flagLang)

	paths := fs.Args()
	results := checkFiles(ctx, checker, tag, paths, *flagWorkers)

	status := 0
	enc := json.NewEncoder(stdout)
	for _, res := range results {
		if !res.OK() {
			status = 1
		}
		if *flagJSON {
			if err := enc.Encode(res); err != nil {
				fmt.Fprintln(stderr, "checkcodes:", err)
				return 2
			}
			continue
		}
		if res.OK() {
			fmt.Fprintf(stdout, "%s: OK (%d codes)\n", res.File, res.Count)
		} else {
			fmt.Fprintf(stdout, "%s: %s\n", res.File, res.ErrorMessage)
		}
	}
	return status
}

// checkFiles checks paths with at most workers files in flight and returns
// the results in argument order.
func checkFiles(ctx context.Context, checker *codes.Checker, tag language.Tag, paths []string, workers int) []fileResult {
	if workers <= 0 {
		workers = 1
	}
	results := make([]fileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = checkFile(ctx, checker, tag, path)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func checkFile(ctx context.Context, checker *codes.Checker, tag language.Tag, path string) fileResult {
	res := fileResult{File: path}

	f, err := codes.FromPath(path)
	if err != nil {
		// Missing paths and directories report the filesystem error.
		res.ErrorMessage = strings.TrimSpace(err.Error())
		return res
	}

	rows, err := checker.Check(ctx, f, tag)
	res.UploadCheckResult = codes.NewResult(rows, err)
	res.Count = len(rows)
	return res
}
