package classifier

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/opal-lang/kul/pkgs/kulerr"
	"github.com/opal-lang/kul/pkgs/position"
)

// Spec is the JSON-serializable description of a custom delimiter set,
// letting a classifier be configured from a file instead of Go code —
// SPEC_FULL.md's domain-stack wiring for github.com/santhosh-tekuri/
// jsonschema/v5, following the same compile-and-validate pattern
// core/types.Validator uses for parameter schemas, with the same
// size/depth security limits (measureSchemaDepth's analogue here is
// simpler: depth is bounded structurally by the schema below, so only
// the size guard applies).
type Spec struct {
	NestStart  []string `json:"nest_start"`
	NestEnd    []string `json:"nest_end"`
	Escape     []string `json:"escape"`
	Whitespace []string `json:"whitespace"`
}

// MaxSpecBytes bounds the size of a classifier spec document accepted
// by LoadSpec, mirroring ValidationConfig.MaxSchemaSize's role of
// keeping a small, trusted-ish input from turning into a resource-
// exhaustion vector.
const MaxSpecBytes = 64 * 1024

const specSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["nest_start", "nest_end"],
  "properties": {
    "nest_start": {"type": "array", "items": {"type": "string", "minLength": 1}, "minItems": 1},
    "nest_end":   {"type": "array", "items": {"type": "string", "minLength": 1}, "minItems": 1},
    "escape":     {"type": "array", "items": {"type": "string", "minLength": 1}},
    "whitespace": {"type": "array", "items": {"type": "string", "minLength": 1}}
  },
  "additionalProperties": false
}`

var specSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema://classifier-spec.json", strings.NewReader(specSchemaJSON)); err != nil {
		panic(fmt.Sprintf("classifier: invalid embedded spec schema: %v", err))
	}
	schema, err := compiler.Compile("schema://classifier-spec.json")
	if err != nil {
		panic(fmt.Sprintf("classifier: failed compiling embedded spec schema: %v", err))
	}
	specSchema = schema
}

// LoadSpec reads a classifier Spec document from r, validates it
// against the embedded JSON Schema (structure) and MaxSpecBytes (size),
// then builds a Table via FromSets — so a malformed or conflicting
// custom-delimiter document is rejected the same way a malformed
// parameter value is in core/types.Validator, rather than producing a
// Classifier with surprising behavior.
func LoadSpec(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxSpecBytes+1))
	if err != nil {
		return nil, kulerr.Wrap(kulerr.KindClassifierConflict, position.Ignored{},
			"failed reading classifier spec", err)
	}
	if len(raw) > MaxSpecBytes {
		return nil, kulerr.New(kulerr.KindClassifierConflict, position.Ignored{},
			"classifier spec too large").WithContext("max_bytes", MaxSpecBytes)
	}

	var asAny any
	if err := json.Unmarshal(raw, &asAny); err != nil {
		return nil, kulerr.Wrap(kulerr.KindClassifierConflict, position.Ignored{},
			"classifier spec is not valid JSON", err)
	}
	if err := specSchema.Validate(asAny); err != nil {
		return nil, kulerr.Wrap(kulerr.KindClassifierConflict, position.Ignored{},
			"classifier spec failed schema validation", err)
	}

	var spec Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, kulerr.Wrap(kulerr.KindClassifierConflict, position.Ignored{},
			"failed decoding classifier spec", err)
	}

	nestStart, err := toRunes("nest_start", spec.NestStart)
	if err != nil {
		return nil, err
	}
	nestEnd, err := toRunes("nest_end", spec.NestEnd)
	if err != nil {
		return nil, err
	}
	escape, err := toRunes("escape", spec.Escape)
	if err != nil {
		return nil, err
	}
	whitespace, err := toRunes("whitespace", spec.Whitespace)
	if err != nil {
		return nil, err
	}

	return FromSets(nestStart, nestEnd, escape, whitespace)
}

func toRunes(field string, values []string) ([]rune, error) {
	runes := make([]rune, 0, len(values))
	for _, v := range values {
		rs := []rune(v)
		if len(rs) != 1 {
			return nil, kulerr.New(kulerr.KindClassifierConflict, position.Ignored{},
				"classifier spec entry must be exactly one character").
				WithContext("field", field).WithContext("value", v)
		}
		runes = append(runes, rs[0])
	}
	return runes, nil
}
