package command

import (
	"fmt"
)

// ParseSequence parses a decoded YAML value (the `up` or `down` key of a
// migration file) into a command sequence. The value must be a list of
// one-key maps, or a single one-key map treated as a singleton list.
func ParseSequence(raw any) ([]Command, error) {
	if raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []any:
		cmds := make([]Command, 0, len(v))
		for _, item := range v {
			m, ok := asStringMap(item)
			if !ok {
				return nil, fmt.Errorf("%w: up/down must be a map or list of maps", ErrValidation)
			}
			cmd, err := ParseCommand(m)
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, cmd)
		}
		return cmds, nil
	case map[string]any:
		cmd, err := ParseCommand(v)
		if err != nil {
			return nil, err
		}
		return []Command{cmd}, nil
	default:
		return nil, fmt.Errorf("%w: up/down must be a map or list of maps", ErrValidation)
	}
}

// ParseCommand parses a single dispatch-key map into a typed Command.
func ParseCommand(m map[string]any) (Command, error) {
	if len(m) != 1 {
		return nil, fmt.Errorf("%w: up/down must be a map or list of maps", ErrValidation)
	}
	var key string
	var body any
	for k, v := range m {
		key, body = k, v
	}
	bm, _ := asStringMap(body)

	switch Kind(key) {
	case KindCreateTable:
		return parseCreateTable(bm)
	case KindDropTable:
		return DropTable{Table: strField(bm, "table")}, nil
	case KindAlterTable:
		return parseAlterTable(bm)
	case KindCreateIndex:
		return parseCreateIndex(bm)
	case KindDropIndex:
		return DropIndex{Index: strField(bm, "index"), On: strField(bm, "on")}, nil
	case KindInsertInto:
		return parseInsertInto(bm)
	case KindUpdate:
		return parseUpdate(bm)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, key)
	}
}

func parseCreateTable(m map[string]any) (Command, error) {
	return CreateTable{
		Table:        strField(m, "table"),
		Columns:      columnsField(m, "columns"),
		PrimaryKey:   stringSliceField(m, "primary-key"),
		Constraints:  constraintsField(m, "constraints"),
		TableOptions: tableOptionsField(m, "table-options"),
	}, nil
}

func parseAlterTable(m map[string]any) (Command, error) {
	return AlterTable{
		Table:           strField(m, "table"),
		AddColumns:      columnsField(m, "add-columns"),
		DropColumns:     stringSliceField(m, "drop-columns"),
		ModifyColumns:   columnsField(m, "modify-columns"),
		AddConstraints:  constraintsField(m, "add-constraints"),
		DropConstraints: stringSliceField(m, "drop-constraints"),
		PrimaryKey:      stringSliceField(m, "primary-key"),
		TableOptions:    tableOptionsField(m, "table-options"),
		Charset:         charsetField(m, "character-set"),
	}, nil
}

func parseCreateIndex(m map[string]any) (Command, error) {
	return CreateIndex{
		Index:   strField(m, "index"),
		On:      strField(m, "on"),
		Columns: stringSliceField(m, "columns"),
		Unique:  boolField(m, "unique"),
	}, nil
}

func parseInsertInto(m map[string]any) (Command, error) {
	values := valuesField(m, "values")
	query := strField(m, "query")
	if len(values) == 0 && query == "" {
		return nil, fmt.Errorf("%w: insert-into requires values or query", ErrValidation)
	}
	return InsertInto{
		Table:   strField(m, "table"),
		Columns: stringSliceField(m, "columns"),
		Values:  values,
		Query:   query,
	}, nil
}

func parseUpdate(m map[string]any) (Command, error) {
	query := strField(m, "query")
	overrides := map[string]string{}
	for k, v := range m {
		if k == "query" {
			continue
		}
		if s, ok := v.(string); ok {
			overrides[k] = s
		}
	}
	if query == "" && len(overrides) == 0 {
		return nil, fmt.Errorf("%w: update requires query", ErrValidation)
	}
	return Update{Query: query, Overrides: overrides}, nil
}

// --- decoding helpers, tolerant of both map[string]any and map[any]any ---

func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func strField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func boolField(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	b, _ := m[key].(bool)
	return b
}

func stringSliceField(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func columnsField(m map[string]any, key string) []Column {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	cols := make([]Column, 0, len(raw))
	for _, v := range raw {
		entry, ok := v.([]any)
		if !ok || len(entry) == 0 {
			continue
		}
		name, _ := entry[0].(string)
		tokens := make([]string, 0, len(entry)-1)
		for _, t := range entry[1:] {
			if s, ok := t.(string); ok {
				tokens = append(tokens, s)
			}
		}
		cols = append(cols, Column{Name: name, Tokens: tokens})
	}
	return cols
}

func constraintsField(m map[string]any, key string) []Constraint {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Constraint, 0, len(raw))
	for _, v := range raw {
		entry, ok := v.([]any)
		if !ok || len(entry) < 2 {
			continue
		}
		name, _ := entry[0].(string)
		ref, _ := entry[1].(string)
		out = append(out, Constraint{Name: name, Ref: ref})
	}
	return out
}

func tableOptionsField(m map[string]any, key string) []TableOption {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]TableOption, 0, len(raw))
	for _, v := range raw {
		bm, ok := asStringMap(v)
		if !ok {
			continue
		}
		out = append(out, TableOption{Name: strField(bm, "name"), Value: strField(bm, "value")})
	}
	return out
}

func charsetField(m map[string]any, key string) *Charset {
	if m == nil {
		return nil
	}
	bm, ok := asStringMap(m[key])
	if !ok {
		return nil
	}
	return &Charset{Name: strField(bm, "charset-name"), Collation: strField(bm, "collation")}
}

func valuesField(m map[string]any, key string) [][]any {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([][]any, 0, len(raw))
	for _, v := range raw {
		row, ok := v.([]any)
		if !ok {
			continue
		}
		out = append(out, row)
	}
	return out
}
