/*
Command glsltc is the GLSLT driver: it loads one or more GLSL template
source files, runs the transformation core, and writes the result.

Parsing GLSL source text into an ast.Unit and serializing the
transformed unit back to text are both outside this module's scope
(spec.md §1) — glsltc must be linked with a concrete glslt.Frontend
before it can do real work; see frontend.go in package glslt.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/glslt-dev/glslt/ast"
	"github.com/glslt-dev/glslt/glslt"
)

const (
	exitOK      = 0
	exitUserErr = 1
	exitIOErr   = 2
)

// frontend is the concrete GLSL parser/printer this build of glsltc is
// linked with. Nil in this module — see frontend.go in package glslt.
var frontend glslt.Frontend

type stringList []string

func (s *stringList) String() string     { return fmt.Sprint([]string(*s)) }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("glsltc", flag.ContinueOnError)

	var includeDirs, keepFns stringList
	fs.Var(&includeDirs, "I", "system include directory (repeatable)")
	fs.Var(&keepFns, "K", "minifying-mode root identifier (repeatable)")
	fs.Var(&keepFns, "keep-fns", "alias for -K")
	output := fs.String("o", "", "output destination (default: stdout)")
	prefix := fs.String("p", "", "override identifier prefix")
	verbose := fs.Bool("v", false, "verbose logging")
	quiet := fs.Bool("q", false, "suppress non-error logging")

	if err := fs.Parse(argv); err != nil {
		return exitUserErr
	}
	inputs := fs.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "glsltc: at least one input file is required")
		return exitUserErr
	}

	level := slog.LevelInfo
	switch {
	case *quiet:
		level = slog.LevelError
	case *verbose:
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := glslt.DefaultConfig()
	if *prefix != "" {
		cfg.IdentifierPrefix = *prefix
	}
	cfg.KeepFns = keepFns
	if *verbose {
		cfg.Trace = func(event, name string) {
			logger.Debug("instantiation", "state", event, "name", name)
		}
	}

	unit, err := loadInputs(context.Background(), inputs, logger)
	if err != nil {
		logger.Error("loading inputs", "error", err)
		return exitIOErr
	}

	out, err := glslt.Transform(unit, cfg)
	if err != nil {
		logger.Error("transform failed", "error", err)
		return exitUserErr
	}

	data, err := serialize(out)
	if err != nil {
		logger.Error("serialization failed", "error", err)
		return exitUserErr
	}

	if err := writeOutput(*output, data); err != nil {
		logger.Error("writing output", "error", err)
		return exitIOErr
	}
	return exitOK
}

// loadInputs reads and sniffs every input file concurrently, parses
// each into its own ast.Unit via the linked Frontend, and concatenates
// their declarations in command-line order — standing in for the
// external preprocessor's "#include stitching produces one merged
// unit" contract (spec.md §1) when the caller passes multiple already-
// independent top-level files instead of a single pre-stitched one.
func loadInputs(ctx context.Context, paths []string, logger *slog.Logger) (*ast.Unit, error) {
	units := make([]*ast.Unit, len(paths))

	g, _ := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			u, err := loadFile(path, logger)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			units[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &ast.Unit{}
	for _, u := range units {
		merged.Decls = append(merged.Decls, u.Decls...)
	}
	return merged, nil
}

func loadFile(path string, logger *slog.Logger) (*ast.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	mtype := mimetype.Detect(data)
	if !mtype.Is("text/plain") && mtype.Parent() != nil && !mtype.Parent().Is("text/plain") {
		logger.Warn("input does not look like plain text", "path", path, "detected", mtype.String())
	}

	if frontend == nil {
		return nil, fmt.Errorf("no GLSL frontend linked into this build of glsltc")
	}
	return frontend.Parse(path, data)
}

func serialize(unit *ast.Unit) ([]byte, error) {
	if frontend == nil {
		return nil, fmt.Errorf("no GLSL frontend linked into this build of glsltc")
	}
	return frontend.Serialize(unit)
}

func writeOutput(path string, data []byte) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err := w.Write(data)
	return err
}
