// Package resource loads the per-resource UI definitions (labels,
// form fields, table columns) from CUE. The schema is the source of
// truth: a definition that does not satisfy #Resource fails at
// startup.
package resource

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/KevinAshley/webparts/internal/forms"
	"github.com/KevinAshley/webparts/internal/table"
)

//go:embed schema/*.cue
var schemaFS embed.FS

const schemaFile = "schema/resource_schema.cue"

// FieldDef mirrors #Field.
type FieldDef struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Kind         string `json:"kind"`
	Required     bool   `json:"required"`
	Disabled     bool   `json:"disabled"`
	Multiline    bool   `json:"multiline"`
	AutoComplete bool   `json:"autoComplete"`
}

// ColumnDef mirrors #Column.
type ColumnDef struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// Definition mirrors #Resource.
type Definition struct {
	Name           string      `json:"name"`
	Heading        string      `json:"heading"`
	Singular       string      `json:"singular"`
	Plural         string      `json:"plural"`
	DefaultOrderBy string      `json:"defaultOrderBy"`
	Fields         []FieldDef  `json:"fields"`
	Columns        []ColumnDef `json:"columns"`
}

// FormFields converts the definition into form field descriptors.
func (d Definition) FormFields() []forms.Field {
	out := make([]forms.Field, len(d.Fields))
	for i, f := range d.Fields {
		out[i] = forms.Field{
			ID:           f.ID,
			Label:        f.Label,
			Kind:         forms.Kind(f.Kind),
			Required:     f.Required,
			Disabled:     f.Disabled,
			Multiline:    f.Multiline,
			AutoComplete: f.AutoComplete,
		}
	}
	return out
}

// TableColumns converts the definition into table column descriptors.
func (d Definition) TableColumns() []table.Column {
	out := make([]table.Column, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = table.Column{
			ID:    c.ID,
			Label: c.Label,
			Type:  table.ColumnType(c.Type),
		}
	}
	return out
}

// Load compiles every embedded definition against #Resource and
// returns them keyed by name.
func Load() (map[string]Definition, error) {
	ctx := cuecontext.New()

	schemaSrc, err := schemaFS.ReadFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("reading resource schema: %w", err)
	}
	schemaVal := ctx.CompileBytes(schemaSrc, cue.Filename(schemaFile))
	if schemaVal.Err() != nil {
		return nil, fmt.Errorf("compiling resource schema: %w", schemaVal.Err())
	}
	resourceDef := schemaVal.LookupPath(cue.ParsePath("#Resource"))
	if resourceDef.Err() != nil {
		return nil, fmt.Errorf("resource schema has no #Resource: %w", resourceDef.Err())
	}

	entries, err := fs.Glob(schemaFS, "schema/*.cue")
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)

	defs := make(map[string]Definition)
	for _, name := range entries {
		if name == schemaFile {
			continue
		}
		src, err := schemaFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		val := ctx.CompileBytes(src, cue.Filename(name))
		if val.Err() != nil {
			return nil, fmt.Errorf("compiling %s: %w", name, val.Err())
		}
		unified := resourceDef.Unify(val)
		if err := unified.Validate(cue.Concrete(true)); err != nil {
			return nil, fmt.Errorf("validating %s: %w", name, err)
		}
		var d Definition
		if err := unified.Decode(&d); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		if _, dup := defs[d.Name]; dup {
			return nil, fmt.Errorf("duplicate resource name %q in %s", d.Name, name)
		}
		defs[d.Name] = d
	}
	return defs, nil
}

// MustLoad is Load for startup paths where a broken schema should
// abort the process.
func MustLoad() map[string]Definition {
	defs, err := Load()
	if err != nil {
		panic(err)
	}
	return defs
}
