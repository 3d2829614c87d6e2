// Package registry discovers .sublime-syntax grammars and builds each one at
// most once, on first use.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	stdpath "path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/scopes/internal/log"
	"github.com/zjrosen/scopes/internal/syntax"
	"github.com/zjrosen/scopes/internal/tracing"
)

// GrammarExt is the file suffix of grammar files.
const GrammarExt = ".sublime-syntax"

// ErrNoGrammar is returned when nothing handles an extension or path.
var ErrNoGrammar = errors.New("no grammar")

// Source is a filesystem scanned for grammars. Name labels it in listings.
type Source struct {
	Name string
	FS   fs.FS
}

// DirSource returns a Source over a directory on disk.
func DirSource(dir string) Source {
	return Source{Name: dir, FS: os.DirFS(dir)}
}

// Header is the part of a grammar read without building it.
type Header struct {
	Name           string   `yaml:"name"`
	Scope          string   `yaml:"scope"`
	FileExtensions []string `yaml:"file_extensions"`
	FirstLineMatch string   `yaml:"first_line_match"`
	Hidden         bool     `yaml:"hidden"`
}

// Entry is one discovered grammar.
type Entry struct {
	Header
	Source string
	Path   string

	fsys      fs.FS
	firstLine *regexp2.Regexp
	load      func() (*syntax.Syntax, error)
}

// Registry maps file extensions to grammars.
type Registry struct {
	entries []*Entry
	byExt   map[string]*Entry

	syntaxOpts []syntax.Option
	tracer     trace.Tracer
}

// Option configures a Registry.
type Option func(*Registry)

// WithTracer traces grammar builds.
func WithTracer(t trace.Tracer) Option {
	return func(r *Registry) {
		r.tracer = t
	}
}

// WithSyntaxOptions passes opts to every grammar build.
func WithSyntaxOptions(opts ...syntax.Option) Option {
	return func(r *Registry) {
		r.syntaxOpts = append(r.syntaxOpts, opts...)
	}
}

// New scans sources in order. A grammar in a later source takes over the
// extensions of an earlier one. Files whose header cannot be read are
// skipped and logged.
func New(sources []Source, opts ...Option) (*Registry, error) {
	r := &Registry{
		byExt:  make(map[string]*Entry),
		tracer: noop.NewTracerProvider().Tracer("noop"),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, src := range sources {
		if err := r.scan(src); err != nil {
			return nil, fmt.Errorf("scan %s: %w", src.Name, err)
		}
	}
	log.Info(log.CatRegistry, "Registry ready", "grammars", len(r.entries), "extensions", len(r.byExt))
	return r, nil
}

func (r *Registry) scan(src Source) error {
	return fs.WalkDir(src.FS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || stdpath.Ext(path) != GrammarExt {
			return nil
		}

		content, err := fs.ReadFile(src.FS, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		var h Header
		if err := yaml.Unmarshal(syntax.StripDirective(content), &h); err != nil {
			log.Warn(log.CatRegistry, "Skipping unreadable grammar", "source", src.Name, "path", path, "error", err)
			return nil
		}
		if h.Name == "" {
			h.Name = strings.TrimSuffix(stdpath.Base(path), GrammarExt)
		}
		r.add(src, path, h)
		return nil
	})
}

func (r *Registry) add(src Source, path string, h Header) {
	e := &Entry{Header: h, Source: src.Name, Path: path, fsys: src.FS}
	e.load = sync.OnceValues(func() (*syntax.Syntax, error) {
		return r.build(e)
	})
	if h.FirstLineMatch != "" {
		re, err := regexp2.Compile(h.FirstLineMatch, regexp2.None)
		if err != nil {
			log.Warn(log.CatRegistry, "Ignoring bad first_line_match", "grammar", h.Name, "error", err)
		} else {
			re.MatchTimeout = syntax.DefaultMatchTimeout
			e.firstLine = re
		}
	}

	r.entries = append(r.entries, e)
	for _, ext := range h.FileExtensions {
		key := normalizeExt(ext)
		if prev, ok := r.byExt[key]; ok {
			log.Debug(log.CatRegistry, "Extension taken over", "ext", key, "from", prev.Name, "to", h.Name)
		}
		r.byExt[key] = e
	}
}

func (r *Registry) build(e *Entry) (*syntax.Syntax, error) {
	_, span := r.tracer.Start(context.Background(), tracing.SpanGrammarBuild, trace.WithAttributes(
		attribute.String(tracing.AttrGrammarName, e.Name),
		attribute.String(tracing.AttrGrammarSource, e.Source),
		attribute.StringSlice(tracing.AttrGrammarExt, e.FileExtensions),
	))
	defer span.End()

	syn, err := syntax.Load(e.fsys, e.Path, r.syntaxOpts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatRegistry, "Grammar build failed", err, "grammar", e.Name)
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrGrammarContexts, len(syn.Contexts)+len(syn.Anonymous)))
	log.Debug(log.CatRegistry, "Grammar built", "grammar", e.Name, "contexts", len(syn.Contexts))
	return syn, nil
}

// Lookup returns the grammar for a file extension, with or without the
// leading dot. The grammar is built on first request; a failed build keeps
// failing without being retried.
func (r *Registry) Lookup(ctx context.Context, ext string) (*syntax.Syntax, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := r.byExt[normalizeExt(ext)]
	if !ok {
		return nil, fmt.Errorf("%w for extension %q", ErrNoGrammar, ext)
	}
	return e.load()
}

// LookupPath picks a grammar by the extension of path, then by matching
// firstLine against each grammar's first_line_match.
func (r *Registry) LookupPath(ctx context.Context, path, firstLine string) (*syntax.Syntax, error) {
	if ext := filepath.Ext(path); ext != "" {
		syn, err := r.Lookup(ctx, ext)
		if !errors.Is(err, ErrNoGrammar) {
			return syn, err
		}
	}
	if firstLine != "" {
		for _, e := range r.entries {
			if e.firstLine == nil {
				continue
			}
			if ok, err := e.firstLine.MatchString(firstLine); err == nil && ok {
				return e.load()
			}
		}
	}
	return nil, fmt.Errorf("%w for %s", ErrNoGrammar, path)
}

// List returns the discovered grammars sorted by name, hidden ones
// included.
func (r *Registry) List() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := New([]Source{{Name: "builtin", FS: BuiltinFS()}})
	if err != nil {
		log.ErrorErr(log.CatRegistry, "Builtin grammars unavailable", err)
		return &Registry{byExt: map[string]*Entry{}, tracer: noop.NewTracerProvider().Tracer("noop")}
	}
	return r
})

// Default returns the process-wide registry over the built-in grammars.
func Default() *Registry {
	return defaultRegistry()
}
