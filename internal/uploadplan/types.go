package uploadplan

import (
	"bytes"
	"encoding/json"
	"fmt"

	"upload-mapper/internal/mapping"
)

// Plan is the upload plan document.
type Plan struct {
	BaseTableName string `json:"baseTableName" validate:"required"`
	// MustMatchTables lists, lowercase and sorted, the tables whose records
	// must already exist.
	MustMatchTables []string   `json:"mustMatchTables,omitempty"`
	Uploadable      Uploadable `json:"uploadable"`
}

// Uploadable is one table's part of the plan. Exactly one member is set.
type Uploadable struct {
	UploadTable         *UploadTable `json:"uploadTable,omitempty"`
	MustMatchTable      *UploadTable `json:"mustMatchTable,omitempty"`
	TreeRecord          *TreeRecord  `json:"treeRecord,omitempty"`
	MustMatchTreeRecord *TreeRecord  `json:"mustMatchTreeRecord,omitempty"`
}

func (u Uploadable) members() int {
	n := 0

	for _, set := range []bool{
		u.UploadTable != nil,
		u.MustMatchTable != nil,
		u.TreeRecord != nil,
		u.MustMatchTreeRecord != nil,
	} {
		if set {
			n++
		}
	}

	return n
}

// IsMustMatch reports whether the uploadable only matches existing records.
func (u Uploadable) IsMustMatch() bool {
	return u.MustMatchTable != nil || u.MustMatchTreeRecord != nil
}

// Table returns the upload table member, whichever kind it is.
func (u Uploadable) Table() *UploadTable {
	if u.UploadTable != nil {
		return u.UploadTable
	}

	return u.MustMatchTable
}

// Tree returns the tree record member, whichever kind it is.
func (u Uploadable) Tree() *TreeRecord {
	if u.TreeRecord != nil {
		return u.TreeRecord
	}

	return u.MustMatchTreeRecord
}

// UploadTable holds the mapped fields of a regular table and its relations.
type UploadTable struct {
	WBCols map[string]ColumnDef     `json:"wbcols" validate:"dive"`
	Static map[string]Literal       `json:"static"`
	ToOne  map[string]Uploadable    `json:"toOne"  validate:"dive"`
	ToMany map[string][]UploadTable `json:"toMany" validate:"dive,dive"`
}

func newUploadTable() *UploadTable {
	return &UploadTable{
		WBCols: make(map[string]ColumnDef),
		Static: make(map[string]Literal),
		ToOne:  make(map[string]Uploadable),
		ToMany: make(map[string][]UploadTable),
	}
}

// TreeRecord holds the mapped ranks of a tree table.
type TreeRecord struct {
	Ranks map[string]TreeRank `json:"ranks" validate:"dive"`
}

// TreeRank holds the fields mapped at one rank.
type TreeRank struct {
	TreeNodeCols map[string]ColumnDef `json:"treeNodeCols"     validate:"dive"`
	Static       map[string]Literal   `json:"static,omitempty"`
}

// ColumnDef binds a field to a spreadsheet column.
//
// On input it also accepts the short form, a bare column name, which takes
// the default column options.
type ColumnDef struct {
	Column        string                `json:"column"`
	MatchBehavior mapping.MatchBehavior `json:"matchBehavior" validate:"required,oneof=ignoreNever ignoreAlways ignoreWhenBlank"`
	NullAllowed   bool                  `json:"nullAllowed"`
	Default       *string               `json:"default"`
}

func newColumnDef(column string, opts mapping.ColumnOptions) ColumnDef {
	return ColumnDef{
		Column:        column,
		MatchBehavior: opts.MatchBehavior,
		NullAllowed:   opts.NullAllowed,
		Default:       opts.Default,
	}
}

// Options returns the column options the definition carries.
func (c ColumnDef) Options() mapping.ColumnOptions {
	return mapping.ColumnOptions{
		MatchBehavior: c.MatchBehavior,
		NullAllowed:   c.NullAllowed,
		Default:       c.Default,
	}
}

// UnmarshalJSON accepts either a column name or a full definition.
func (c *ColumnDef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var column string
		if err := json.Unmarshal(data, &column); err != nil {
			return fmt.Errorf("column definition: %w", err)
		}

		*c = newColumnDef(column, mapping.DefaultColumnOptions())

		return nil
	}

	type plain ColumnDef

	def := plain(newColumnDef("", mapping.DefaultColumnOptions()))
	if err := json.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("column definition: %w", err)
	}

	*c = ColumnDef(def)

	return nil
}

// Literal is a static value. On input it accepts any JSON scalar and keeps
// its text; null becomes the empty string.
type Literal string

// UnmarshalJSON implements json.Unmarshaler.
func (l *Literal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0:
		return fmt.Errorf("static value: empty input")
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("static value: %w", err)
		}

		*l = Literal(s)
	case bytes.Equal(data, []byte("null")):
		*l = ""
	case data[0] == '{' || data[0] == '[':
		return fmt.Errorf("static value: expected a scalar, got %s", data)
	default:
		*l = Literal(data)
	}

	return nil
}
