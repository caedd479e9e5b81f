// Package hydrate turns documents written in JSON, YAML, TOML or any other
// registered syntax into typed structs. Each document is parsed into a generic
// map, normalised by pre-hooks, decoded through encoding/json so struct tags
// stay the single source of field names, and checked by post-hooks.
package hydrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat indicates no parser is registered for a format.
	ErrUnknownFormat = errors.New("hydrate: unknown format")
	// ErrEmptyDocument indicates a document without top-level keys.
	ErrEmptyDocument = errors.New("hydrate: document is empty")
)

// Stage names the decode step that failed.
type Stage string

const (
	StageParse   Stage = "parse"
	StagePrepare Stage = "prepare"
	StageDecode  Stage = "decode"
	StageVerify  Stage = "verify"
)

// Context identifies the document being decoded.
type Context struct {
	// Source is the file or label the document came from.
	Source string
	// Format selects the registered parser (json, yaml, toml).
	Format string
}

// Error reports which stage failed for which document.
type Error struct {
	Source string
	Format string
	Stage  Stage
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("hydrate: %s %q: %v", e.Stage, e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ParseFunc parses raw bytes of one syntax into a generic document.
type ParseFunc func([]byte) (map[string]any, error)

// PreHook rewrites the generic document before it is decoded.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook adjusts or validates the decoded struct.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts documents into values of T.
type Decoder[T any] struct {
	parsers   map[string]ParseFunc
	preHooks  []PreHook
	postHooks []PostHook[T]
	strict    bool
}

// WithFormat registers parse for documents of the named format.
func WithFormat[T any](name string, parse ParseFunc) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if name != "" && parse != nil {
			d.parsers[name] = parse
		}
	}
}

// WithPreHook appends hook to the prepare stage.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.preHooks = append(d.preHooks, hook)
		}
	}
}

// WithPostHook appends hook to the verify stage.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.postHooks = append(d.postHooks, hook)
		}
	}
}

// WithStrict rejects keys that do not map to a field of T.
func WithStrict[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.strict = true
	}
}

// NewDecoder builds a decoder. JSON is always registered.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{parsers: map[string]ParseFunc{"json": ParseJSON}}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Formats reports whether a parser is registered for format.
func (d *Decoder[T]) Formats(format string) bool {
	_, ok := d.parsers[format]
	return ok
}

// DecodeBytes parses data with the parser registered for ctx.Format and
// decodes the result.
func (d *Decoder[T]) DecodeBytes(ctx Context, data []byte) (T, error) {
	var zero T
	parse, ok := d.parsers[ctx.Format]
	if !ok {
		return zero, d.fail(ctx, StageParse, fmt.Errorf("%w: %q", ErrUnknownFormat, ctx.Format))
	}
	doc, err := parse(data)
	if err != nil {
		return zero, d.fail(ctx, StageParse, err)
	}
	return d.Decode(ctx, doc)
}

// Decode runs doc through the prepare, decode and verify stages. doc is
// cloned first so hooks never mutate the caller's map.
func (d *Decoder[T]) Decode(ctx Context, doc map[string]any) (T, error) {
	var zero T
	if len(doc) == 0 {
		return zero, d.fail(ctx, StageParse, ErrEmptyDocument)
	}

	current, err := clone(doc)
	if err != nil {
		return zero, d.fail(ctx, StagePrepare, err)
	}
	for _, hook := range d.preHooks {
		next, err := hook(ctx, current)
		if err != nil {
			return zero, d.fail(ctx, StagePrepare, err)
		}
		if next != nil {
			current = next
		}
	}

	result, err := d.decode(current)
	if err != nil {
		return zero, d.fail(ctx, StageDecode, err)
	}

	for _, hook := range d.postHooks {
		if err := hook(ctx, &result); err != nil {
			return zero, d.fail(ctx, StageVerify, err)
		}
	}
	return result, nil
}

func (d *Decoder[T]) decode(doc map[string]any) (T, error) {
	var out T
	buffer, err := json.Marshal(doc)
	if err != nil {
		return out, err
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	if d.strict {
		decoder.DisallowUnknownFields()
	}
	err = decoder.Decode(&out)
	return out, err
}

func (d *Decoder[T]) fail(ctx Context, stage Stage, err error) error {
	return &Error{Source: ctx.Source, Format: ctx.Format, Stage: stage, Err: err}
}

// ParseJSON parses a JSON object, keeping numbers exact.
func ParseJSON(data []byte) (map[string]any, error) {
	doc := map[string]any{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func clone(doc map[string]any) (map[string]any, error) {
	buffer, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return ParseJSON(buffer)
}
