// Package runner converts header files on disk, one worker per file.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"wotwrh-convert/internal/cache"
	"wotwrh-convert/internal/convert"
	"wotwrh-convert/internal/filewalker"
	"wotwrh-convert/internal/textutil"
	"wotwrh-convert/internal/worker"

	"github.com/rs/zerolog/log"
)

// Result describes what happened to one header.
type Result struct {
	Entry filewalker.FileEntry
	// Lines is the number of statements in the header.
	Lines int
	// Changed is the number of statements the conversion rewrote.
	Changed int
	// Skipped is set when the cache showed the output to be up to date.
	Skipped bool
}

// Summary totals a batch of conversions.
type Summary struct {
	Converted int
	Skipped   int
	Failed    int
}

// Runner reads headers, converts them and writes the results.
type Runner struct {
	cache   *cache.ConversionCache
	workers int
	force   bool
}

// New creates a Runner. With force set, the cache is updated but never
// consulted.
func New(c *cache.ConversionCache, workers int, force bool) *Runner {
	if c == nil {
		c = cache.NewConversionCache(nil)
	}
	return &Runner{cache: c, workers: workers, force: force}
}

// ConvertFile converts a single header into entry.OutPath.
func (r *Runner) ConvertFile(ctx context.Context, entry filewalker.FileEntry) (Result, error) {
	result := Result{Entry: entry}

	src, err := os.ReadFile(entry.Path)
	if err != nil {
		return result, fmt.Errorf("read header: %w", err)
	}
	source := string(src)
	sourceHash := textutil.Hash(source)

	if !r.force {
		existing, err := os.ReadFile(entry.OutPath)
		switch {
		case err == nil:
			if r.cache.Fresh(ctx, entry.Path, sourceHash, textutil.Hash(string(existing))) {
				result.Skipped = true
				return result, nil
			}
		case !errors.Is(err, fs.ErrNotExist):
			return result, fmt.Errorf("read previous output: %w", err)
		}
	}

	out := convert.Convert(source)
	result.Lines, result.Changed = countChanges(source, out)

	if err := os.MkdirAll(filepath.Dir(entry.OutPath), 0755); err != nil {
		return result, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(entry.OutPath, []byte(out), 0644); err != nil {
		return result, fmt.Errorf("write output file: %w", err)
	}

	rec := cache.Record{SourceHash: sourceHash, OutputHash: textutil.Hash(out)}
	if err := r.cache.Set(ctx, entry.Path, rec); err != nil {
		log.Warn().Err(err).Str("file", entry.Path).Msg("Failed to record conversion")
	}

	return result, nil
}

// Run converts every entry using the worker pool. Failures are logged and
// counted; they do not stop the batch.
func (r *Runner) Run(ctx context.Context, entries []filewalker.FileEntry) Summary {
	pool := worker.NewPool[filewalker.FileEntry, Result](r.workers, r.ConvertFile)
	tasks := pool.Execute(ctx, entries)

	var summary Summary
	for _, task := range tasks {
		if task.Err != nil {
			log.Error().Err(task.Err).Str("file", task.Input.Path).Msg("Conversion failed")
			summary.Failed++
			continue
		}
		if task.Result.Skipped {
			log.Debug().Str("file", task.Input.Path).Msg("Header unchanged, skipping")
			summary.Skipped++
			continue
		}
		log.Info().
			Str("input", task.Input.Path).
			Str("output", task.Input.OutPath).
			Int("lines", task.Result.Lines).
			Int("changed", task.Result.Changed).
			Msg("Header converted")
		summary.Converted++
	}

	log.Info().
		Int("converted", summary.Converted).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Conversion complete")

	return summary
}

// Err returns an error when any conversion in the summary failed.
func (s Summary) Err() error {
	if s.Failed > 0 {
		return fmt.Errorf("%d of %d headers failed to convert", s.Failed, s.Converted+s.Skipped+s.Failed)
	}
	return nil
}

func countChanges(before, after string) (lines, changed int) {
	body := strings.TrimRight(before, "\n")
	if body == "" {
		return 0, 0
	}
	in := strings.Split(body, "\n")
	out := strings.Split(strings.TrimRight(after, "\n"), "\n")
	for i := range in {
		if i < len(out) && in[i] != out[i] {
			changed++
		}
	}
	return len(in), changed
}
