package verify

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
	"git.home.luguber.info/inful/htmlres/internal/logfields"
)

// Reason classifies a Problem.
type Reason string

const (
	ReasonMissingFile    Reason = "missing_file"
	ReasonInlineMarker   Reason = "inline_marker"
	ReasonOutsideOutput  Reason = "outside_output"
	ReasonUnprefixedPath Reason = "unprefixed"
)

// Problem is one bad reference.
type Problem struct {
	Ref    Ref
	Reason Reason
	Path   string // file looked up on disk, when any
}

// Result is the outcome for one document.
type Result struct {
	File     string
	Refs     int
	Skipped  int // external refs
	Problems []Problem
}

// OK reports whether the document has no problems.
func (r *Result) OK() bool { return len(r.Problems) == 0 }

// Verifier resolves references against OutputDir. URLs under PublicPath are
// looked up with the prefix removed.
type Verifier struct {
	OutputDir  string
	PublicPath string
	// Concurrency bounds Files; zero means 4.
	Concurrency int
	Logger      *slog.Logger
}

// File checks one document on disk.
func (v *Verifier) File(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open HTML file").
			WithContext("path", path).
			Build()
	}
	defer func() {
		_ = f.Close()
	}()

	refs, err := ExtractRefs(f)
	if err != nil {
		return nil, err
	}

	res := &Result{File: path, Refs: len(refs)}
	for _, ref := range refs {
		if isExternal(ref.URL) {
			res.Skipped++
			continue
		}
		if p, bad := v.check(ref); bad {
			res.Problems = append(res.Problems, p)
		}
	}

	v.logger().Debug("Verified document",
		logfields.File(path),
		logfields.Count(res.Refs),
		slog.Int("problems", len(res.Problems)))
	return res, nil
}

func (v *Verifier) check(ref Ref) (Problem, bool) {
	u := ref.URL
	if strings.Contains(u, "__inline") {
		return Problem{Ref: ref, Reason: ReasonInlineMarker}, true
	}
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}

	switch {
	case v.PublicPath != "" && strings.HasPrefix(u, v.PublicPath):
		u = strings.TrimPrefix(u, v.PublicPath)
	case v.PublicPath != "" && v.PublicPath != "/" && strings.HasPrefix(u, "/"):
		// Root-relative but not under the public path the build serves from.
		return Problem{Ref: ref, Reason: ReasonUnprefixedPath}, true
	}

	rel := filepath.FromSlash(strings.TrimPrefix(u, "/"))
	target := filepath.Join(v.OutputDir, rel)
	if r, err := filepath.Rel(filepath.Clean(v.OutputDir), target); err != nil || strings.HasPrefix(r, "..") {
		return Problem{Ref: ref, Reason: ReasonOutsideOutput, Path: target}, true
	}
	if _, err := os.Stat(target); err != nil {
		return Problem{Ref: ref, Reason: ReasonMissingFile, Path: target}, true
	}
	return Problem{}, false
}

// Files checks documents concurrently. Results keep the order of paths. The
// first read or parse failure cancels the rest.
func (v *Verifier) Files(ctx context.Context, paths []string) ([]*Result, error) {
	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	limit := v.Concurrency
	if limit <= 0 {
		limit = 4
	}
	g.SetLimit(limit)

	for i, p := range paths {
		g.Go(func() error {
			res, err := v.File(gctx, p)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (v *Verifier) logger() *slog.Logger {
	if v.Logger != nil {
		return v.Logger
	}
	return slog.Default()
}
