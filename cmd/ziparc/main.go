// Command ziparc creates, lists, and extracts ZIP archives.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/ziparc"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "ziparc:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: ziparc <create|list|extract> [flags]")
	}

	switch args[0] {
	case "create":
		return runCreate(args[1:])
	case "list":
		return runList(args[1:])
	case "extract":
		return runExtract(args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runCreate(args []string) error {
	flags := pflag.NewFlagSet("create", pflag.ContinueOnError)
	output := flags.StringP("output", "o", "archive.zip", "output archive path")
	storeOnly := flags.Bool("store-only", false, "store all entries without compression")
	comment := flags.String("comment", "", "archive comment")
	verbose := flags.BoolP("verbose", "v", false, "log per-entry encoding decisions")
	if err := flags.Parse(args); err != nil {
		return err
	}
	paths := flags.Args()
	if len(paths) == 0 {
		return errors.New("create: no input files")
	}

	// Read inputs in parallel; entry order follows the argument order.
	entries := make([]ziparc.Entry, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, p := range paths {
		g.Go(func() error {
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			entries[i] = ziparc.RawEntry(filepath.ToSlash(p), data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	opts := []ziparc.BuildOption{
		ziparc.BuildWithLogger(newLogger(*verbose)),
		ziparc.BuildWithComment(*comment),
	}
	if *storeOnly {
		opts = append(opts, ziparc.BuildWithStoreOnly())
	}

	return os.WriteFile(*output, ziparc.Build(entries, opts...), 0o644)
}

func runList(args []string) error {
	flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("list: expected exactly one archive path")
	}

	data, err := os.ReadFile(flags.Arg(0))
	if err != nil {
		return err
	}
	archive, err := ziparc.Read(data)
	if err != nil {
		return err
	}

	for _, h := range archive.Centrals() {
		fmt.Printf("%-10s %10d %10d  %s\n",
			ziparc.Method(h.Method), h.CompressedSize, h.UncompressedSize, h.Name)
	}
	o := ziparc.Inspect(archive)
	fmt.Printf("%d entries, %d -> %d bytes (ratio %.2f)\n",
		o.EntryCount, o.TotalUncompressedSize, o.TotalCompressedSize, o.CompressionRatio)
	return nil
}

func runExtract(args []string) error {
	flags := pflag.NewFlagSet("extract", pflag.ContinueOnError)
	dir := flags.StringP("dir", "C", ".", "destination directory")
	maxEntries := flags.Int("max-entries", 16, "deflate entries decompressed per step")
	maxBytes := flags.Int64("max-bytes", 0, "compressed-byte budget per step (0 = unlimited)")
	verbose := flags.BoolP("verbose", "v", false, "log per-step progress")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("extract: expected exactly one archive path")
	}

	data, err := os.ReadFile(flags.Arg(0))
	if err != nil {
		return err
	}
	archive, err := ziparc.Read(data)
	if err != nil {
		return err
	}

	logger := newLogger(*verbose)
	cfg := ziparc.ExtractConfig{
		MaxEntriesPerStep: *maxEntries,
		MaxBytesPerStep:   *maxBytes,
		Logger:            logger,
	}
	results := ziparc.ExtractAll(cfg, archive, func(p ziparc.Progress) {
		logger.Debug("extraction step", "extracted", p.Extracted, "pending", p.Pending, "total", p.Total)
	})

	for _, r := range results {
		if !fs.ValidPath(r.Name) {
			logger.Warn("skipping entry with unsafe name", "name", r.Name)
			continue
		}
		dest := filepath.Join(*dir, filepath.FromSlash(r.Name))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dest, r.Content.Bytes(), 0o644); err != nil {
			return err
		}
	}

	o := ziparc.Inspect(archive)
	if len(o.Unsupported) > 0 {
		logger.Warn("entries skipped for unsupported compression methods", "names", o.Unsupported)
	}
	if len(o.Failed) > 0 {
		logger.Warn("entries abandoned after decompression failures", "names", o.Failed)
	}
	fmt.Printf("extracted %d of %d entries to %s\n", len(results), o.EntryCount, *dir)
	return nil
}
