// Package compiler validates filterview scenario documents against an
// embedded CUE schema.
package compiler

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed scenario.cue
var scenarioSchema string

// Definitions exposed by the schema.
const (
	DefScenario  = "#Scenario"
	DefStep      = "#Step"
	DefAssertion = "#Assertion"
)

// Diagnostic is one CUE validation failure.
type Diagnostic struct {
	Path    string    `json:"path,omitempty"`
	Message string    `json:"message"`
	Pos     token.Pos `json:"-"`
}

func (d Diagnostic) String() string {
	if d.Path != "" {
		return d.Path + ": " + d.Message
	}
	return d.Message
}

// SchemaError lists every diagnostic a document produced.
type SchemaError struct {
	Def         string
	Diagnostics []Diagnostic
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		parts[i] = d.String()
	}
	return fmt.Sprintf("%s: %s", e.Def, strings.Join(parts, "; "))
}

// IsSchemaError reports whether err is a *SchemaError.
func IsSchemaError(err error) bool {
	_, ok := err.(*SchemaError)
	return ok
}

// ValidateScenario checks a decoded scenario document (maps, slices and
// scalars as produced by yaml.v3) against #Scenario. Unknown fields are
// rejected since definitions are closed.
func ValidateScenario(raw any) error {
	return Validate(DefScenario, raw)
}

// Validate checks raw against one of the schema definitions.
func Validate(def string, raw any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(scenarioSchema, cue.Filename("scenario.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}

	defVal := schema.LookupPath(cue.ParsePath(def))
	if !defVal.Exists() {
		return fmt.Errorf("schema has no definition %s", def)
	}

	data := ctx.Encode(raw)
	if err := data.Err(); err != nil {
		return newSchemaError(def, err)
	}

	v := defVal.Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return newSchemaError(def, err)
	}
	return nil
}

func newSchemaError(def string, err error) *SchemaError {
	se := &SchemaError{Def: def}
	for _, e := range errors.Errors(err) {
		d := Diagnostic{
			Path:    strings.Join(e.Path(), "."),
			Message: errorMessage(e),
		}
		if positions := errors.Positions(e); len(positions) > 0 {
			d.Pos = positions[0]
		}
		se.Diagnostics = append(se.Diagnostics, d)
	}
	if len(se.Diagnostics) == 0 {
		se.Diagnostics = []Diagnostic{{Message: err.Error()}}
	}
	return se
}

func errorMessage(e errors.Error) string {
	format, args := e.Msg()
	return fmt.Sprintf(format, args...)
}
