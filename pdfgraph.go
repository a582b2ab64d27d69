// Package pdfgraph reads PDF files into a typed object graph.
//
// Basic usage:
//
//	r, err := pdfgraph.Open("document.pdf", pdfgraph.DefaultConfig())
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	images, err := r.Images()
//
// Settings can come from a YAML file:
//
//	cfg, err := pdfgraph.LoadConfig("pdfgraph.yaml")
//	r, err := pdfgraph.Open("document.pdf", cfg, reader.WithLogger(cfg.Logger(os.Stderr)))
//
// Many documents are loaded in parallel with OpenAll. Each document has its
// own resolution state; nothing is shared between them.
//
// For lower-level access see the reader, resolver and transform packages.
package pdfgraph

import (
	"context"
	"fmt"
	"sync"

	"github.com/tsawler/pdfgraph/reader"
)

// Open validates cfg and opens a PDF file. Extra options are applied after
// the ones derived from cfg.
func Open(path string, cfg Config, opts ...reader.Option) (*reader.Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return reader.Open(path, append(cfg.ReaderOptions(), opts...)...)
}

// Result is the outcome of opening one document with OpenAll.
type Result struct {
	Path   string
	Reader *reader.Reader
	Err    error
}

// OpenAll opens the documents at paths with at most cfg.Workers at a time
// and loads every object of each. Results are in the order of paths. A
// document that fails to open or load carries its error; the others are
// unaffected. The caller closes the readers of successful results.
func OpenAll(ctx context.Context, paths []string, cfg Config, opts ...reader.Option) []Result {
	results := make([]Result, len(paths))
	if err := cfg.Validate(); err != nil {
		for i, p := range paths {
			results[i] = Result{Path: p, Err: err}
		}
		return results
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = DefaultConfig().Workers
	}

	// Use a buffered channel as a semaphore to limit concurrency
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			results[i].Path = p

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i].Err = ctx.Err()
				return
			}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}

			r, err := Open(p, cfg, opts...)
			if err != nil {
				results[i].Err = err
				return
			}
			if err := r.LoadAll(); err != nil {
				r.Close()
				results[i].Err = fmt.Errorf("%s: %w", p, err)
				return
			}
			results[i].Reader = r
		}(i, p)
	}
	wg.Wait()

	return results
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	r := pdfgraph.Must(pdfgraph.Open("document.pdf", pdfgraph.DefaultConfig()))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
