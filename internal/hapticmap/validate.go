package hapticmap

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// ErrInvalid marks a map file that failed schema validation.
var ErrInvalid = errors.New("invalid haptic map")

// Validator checks map files against the embedded CUE schema. A Validator
// is not safe for concurrent use.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator compiles the schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("hapticmap: compile schema: %w", err)
	}
	return &Validator{ctx: ctx, schema: schema.LookupPath(cue.ParsePath("#Config"))}, nil
}

// Check validates data without decoding it. Schema violations wrap
// ErrInvalid and list every failing field.
func (v *Validator) Check(data []byte, source string) error {
	doc := v.ctx.CompileBytes(data, cue.Filename(source))
	if err := doc.Err(); err != nil {
		return fmt.Errorf("hapticmap: parse %s: %w: %s", source, ErrInvalid, cueerrors.Details(err, nil))
	}
	unified := v.schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("hapticmap: validate %s: %w: %s", source, ErrInvalid, cueerrors.Details(err, nil))
	}
	return nil
}

// Parse validates then decodes data.
func (v *Validator) Parse(data []byte, source string) (*Config, error) {
	if err := v.Check(data, source); err != nil {
		return nil, err
	}
	return decode(data, source)
}

// Load reads, validates and decodes a file.
func (v *Validator) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hapticmap: read %s: %w", path, err)
	}
	return v.Parse(data, path)
}
