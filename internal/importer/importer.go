// Package importer loads books from CUE or YAML files, checks each entry
// against an embedded CUE schema, and inserts them through a provider.
//
// Both formats use a top-level "books" list:
//
//	books: [
//		{product_name: "Algorithms", price: 10, quanity: 5},
//	]
package importer

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"cuelang.org/go/encoding/yaml"

	"github.com/roach88/books/internal/contract"
	"github.com/roach88/books/internal/provider"
	"github.com/roach88/books/internal/values"
)

//go:embed book.cue
var bookSchema string

// LoadError reports a file that could not be read or an entry that does not
// satisfy the schema.
type LoadError struct {
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Loader validates book files. A Loader may be reused; it is not safe for
// concurrent use.
type Loader struct {
	ctx  *cue.Context
	book cue.Value
}

// NewLoader compiles the embedded schema.
func NewLoader() (*Loader, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(bookSchema, cue.Filename("book.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile book schema: %w", err)
	}
	return &Loader{
		ctx:  ctx,
		book: schema.LookupPath(cue.ParsePath("#Book")),
	}, nil
}

// LoadFile reads path (.cue, .yaml or .yml) and returns one Values per book
// in file order.
func (l *Loader) LoadFile(path string) ([]values.Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	var v cue.Value
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		v = l.ctx.CompileBytes(data, cue.Filename(path))
	case ".yaml", ".yml":
		f, err := yaml.Extract(path, data)
		if err != nil {
			return nil, formatCUEError(err)
		}
		v = l.ctx.BuildFile(f)
	default:
		return nil, &LoadError{Message: fmt.Sprintf("unsupported file type %q (want .cue, .yaml or .yml)", filepath.Ext(path))}
	}

	return l.decode(v)
}

// LoadString is like LoadFile for CUE source held in memory.
func (l *Loader) LoadString(filename, src string) ([]values.Values, error) {
	return l.decode(l.ctx.CompileString(src, cue.Filename(filename)))
}

func (l *Loader) decode(v cue.Value) ([]values.Values, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	booksVal := v.LookupPath(cue.ParsePath("books"))
	if !booksVal.Exists() {
		return nil, &LoadError{Message: "no top-level books list", Pos: v.Pos()}
	}

	iter, err := booksVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []values.Values
	for i := 0; iter.Next(); i++ {
		entry := l.book.Unify(iter.Value())
		if err := entry.Validate(cue.Concrete(true)); err != nil {
			return nil, withIndex(formatCUEError(err), i)
		}
		vals, err := entryValues(entry)
		if err != nil {
			return nil, withIndex(err, i)
		}
		out = append(out, vals)
	}
	return out, nil
}

// entryValues converts a concrete #Book into Values.
func entryValues(entry cue.Value) (values.Values, error) {
	fields, err := entry.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	vals := values.New()
	for fields.Next() {
		label := fields.Label()
		fv := fields.Value()
		switch fv.IncompleteKind() {
		case cue.NullKind:
			vals.PutNull(label)
		case cue.IntKind:
			n, err := fv.Int64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			vals.PutInt(label, n)
		case cue.StringKind:
			s, err := fv.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			vals.PutString(label, s)
		default:
			return nil, &LoadError{Message: fmt.Sprintf("field %s: unsupported kind %s", label, fv.IncompleteKind()), Pos: fv.Pos()}
		}
	}
	return vals, nil
}

// Import inserts records in order through p, stopping at the first failure.
// It returns the addresses created before the failure.
func Import(ctx context.Context, p *provider.Provider, records []values.Values) ([]contract.Address, error) {
	created := make([]contract.Address, 0, len(records))
	for i, rec := range records {
		addr, err := p.Insert(ctx, p.CollectionAddress(), rec)
		if err != nil {
			return created, fmt.Errorf("book %d: %w", i, err)
		}
		created = append(created, addr)
	}
	return created, nil
}

func withIndex(err error, i int) error {
	if le, ok := err.(*LoadError); ok {
		return &LoadError{Message: fmt.Sprintf("book %d: %s", i, le.Message), Pos: le.Pos}
	}
	return fmt.Errorf("book %d: %w", i, err)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &LoadError{Message: first.Error(), Pos: positions[0]}
	}
	return &LoadError{Message: first.Error()}
}
