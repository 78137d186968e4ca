package config

import (
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"sigs.k8s.io/yaml"
)

// SchemaError is one schema violation.
type SchemaError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e SchemaError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SchemaErrors is a collection of schema violations.
type SchemaErrors []SchemaError

// Error implements the error interface.
func (e SchemaErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config does not match schema:\n")
	for _, err := range e {
		sb.WriteString("  ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

func asSchemaErrors(err error, target *SchemaErrors) bool {
	return errors.As(err, target)
}

// Validator validates configuration content against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(configSchemaCUE, cue.Filename("config.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	if def.Err() != nil {
		return nil, fmt.Errorf("looking up #Config: %w", def.Err())
	}

	return &Validator{ctx: ctx, schema: def}, nil
}

// ValidateBytes validates YAML (or JSON) configuration content.
// An empty document is valid.
func (v *Validator) ValidateBytes(data []byte) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return SchemaErrors{{Message: fmt.Sprintf("invalid YAML: %v", err)}}
	}

	value := v.ctx.CompileBytes(jsonData, cue.Filename("ship.yaml"))
	if value.Err() != nil {
		return SchemaErrors{{Message: value.Err().Error()}}
	}

	unified := v.schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toSchemaErrors(err)
	}
	return nil
}

func toSchemaErrors(err error) SchemaErrors {
	var out SchemaErrors
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		out = append(out, SchemaError{
			Field:   strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		})
	}
	if len(out) == 0 {
		out = append(out, SchemaError{Message: err.Error()})
	}
	return out
}
