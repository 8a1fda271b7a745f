package validation

import (
	"errors"
	"fmt"

	"upload-mapper/internal/common"
	"upload-mapper/internal/diagnostic"
	"upload-mapper/internal/mapping"
	"upload-mapper/internal/navigator"
)

// CheckLines reports the problems of a set of mapping lines:
//   - invalid_path: a path that does not resolve or does not end on a field
//   - incomplete_path (warning): a path with a chosen prefix but no field
//   - duplicate_mapping: several lines hold one complete path
//   - conflicting_mapping: paths the mapping tree cannot hold together
//   - missing_required: a required field or relationship left unset
func CheckLines(nav *navigator.Navigator, baseTable string, lines []mapping.Line, mustMatch []string) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	if _, err := nav.Start(baseTable); err != nil {
		diags.AddError(diagnostic.CodeInvalidPath, err.Error(), diagnostic.NoLine, "")

		return diags
	}

	var (
		valid  []mapping.Line
		keys   = make([]string, len(lines))
		holder = make(map[string][]int)
	)

	for i := range lines {
		l := &lines[i]
		path := l.Path.String()

		if len(l.Path) == 0 {
			diags.AddError(diagnostic.CodeInvalidPath, "empty path", i, "")

			continue
		}

		steps, pos, err := nav.Resolve(baseTable, l.Path)
		if err != nil {
			diags.AddError(diagnostic.CodeInvalidPath, err.Error(), i, path)

			continue
		}

		if hasAddToken(steps) {
			diags.AddError(diagnostic.CodeInvalidPath, "path holds an unresolved new-index token", i, path)

			continue
		}

		if !l.IsMapped() {
			if len(l.Path) > 1 {
				diags.AddWarning(diagnostic.CodeIncompletePath, "no field chosen after "+l.Path[:len(l.Path)-1].String(), i, path)
			}

			continue
		}

		if !pos.Done() {
			diags.AddError(diagnostic.CodeInvalidPath, "path does not end on a field", i, path)

			continue
		}

		// Tokens resolve case-insensitively; "CatalogNumber" and
		// "catalogNumber" are one field.
		canonical := l.Clone()
		canonical.Path = navigator.CanonicalPath(steps)

		key := canonical.Path.Key()
		keys[i] = key
		holder[key] = append(holder[key], i)

		if common.IsSingle(holder[key]) {
			valid = append(valid, canonical)
		}
	}

	for i := range lines {
		held := holder[keys[i]]
		if keys[i] == "" || !common.IsMultiple(held) {
			continue
		}

		diags.AddError(diagnostic.CodeDuplicateMapping,
			fmt.Sprintf("column %q shares its path with %d other line(s)", lines[i].Header, len(held)-1),
			i, lines[i].Path.String())
	}

	tree, err := mapping.LinesToTree(valid)
	if err != nil {
		var conflict *mapping.ConflictError
		if errors.As(err, &conflict) {
			diags.AddError(diagnostic.CodeConflictingMapping, conflict.Reason, diagnostic.NoLine, conflict.Path.String())
		} else {
			diags.AddError(diagnostic.CodeConflictingMapping, err.Error(), diagnostic.NoLine, "")
		}

		return diags
	}

	missing, err := FindMissingRequired(nav.Schema(), baseTable, tree, mustMatch)
	if err != nil {
		diags.AddError(diagnostic.CodeInvalidPath, err.Error(), diagnostic.NoLine, "")

		return diags
	}

	for _, p := range missing {
		diags.AddError(diagnostic.CodeMissingRequired, "required field is not mapped", diagnostic.NoLine, p.String())
	}

	return diags
}

func hasAddToken(steps []navigator.Step) bool {
	for _, s := range steps {
		if s.Kind == navigator.KindAddIndex {
			return true
		}
	}

	return false
}
