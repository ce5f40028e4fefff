// Package plan implements the plan recorder: an ordered buffer of commands
// already compiled within the current migration, which the dialect
// compilers consult to make idempotency decisions that depend on what else
// this migration has already scheduled (e.g. "don't skip re-adding a column
// that a prior step in this same migration dropped").
package plan

import "github.com/ternmigrate/tern/internal/command"

// Plan is scoped to exactly one migration's execution: created empty at the
// start, appended to once per successfully compiled command, and discarded
// at the end. It is not safe for concurrent use — migrations run
// single-threaded and sequentially.
type Plan struct {
	entries []command.Command
}

// New returns an empty plan.
func New() *Plan {
	return &Plan{}
}

// Append records a command as having been compiled. Callers must only call
// this after compilation of the command succeeded, so that a failed
// compilation never pollutes later idempotency decisions.
func (p *Plan) Append(c command.Command) {
	p.entries = append(p.entries, c)
}

// Len returns the number of commands recorded so far.
func (p *Plan) Len() int {
	return len(p.entries)
}

// Commands returns the recorded commands in submission order. The returned
// slice must not be mutated.
func (p *Plan) Commands() []command.Command {
	return p.entries
}

// DroppedTable reports whether a prior entry in this plan drops the named
// table.
func (p *Plan) DroppedTable(table string) bool {
	for _, c := range p.entries {
		if dt, ok := c.(command.DropTable); ok && dt.Table == table {
			return true
		}
	}
	return false
}

// DroppedColumn reports whether a prior alter-table entry in this plan
// drops the named column on the named table.
func (p *Plan) DroppedColumn(table, column string) bool {
	for _, c := range p.entries {
		at, ok := c.(command.AlterTable)
		if !ok || at.Table != table {
			continue
		}
		for _, col := range at.DropColumns {
			if col == column {
				return true
			}
		}
	}
	return false
}

// DroppedForeignKey reports whether a prior alter-table entry in this plan
// drops the named foreign key (or the primary-key sentinel) on the named
// table.
func (p *Plan) DroppedForeignKey(table, name string) bool {
	for _, c := range p.entries {
		at, ok := c.(command.AlterTable)
		if !ok || at.Table != table {
			continue
		}
		for _, fk := range at.DropConstraints {
			if fk == name {
				return true
			}
		}
	}
	return false
}

// DroppedIndex reports whether a prior entry in this plan drops the named
// index on the named table.
func (p *Plan) DroppedIndex(table, index string) bool {
	for _, c := range p.entries {
		if di, ok := c.(command.DropIndex); ok && di.On == table && di.Index == index {
			return true
		}
	}
	return false
}

// ColumnType returns the declared type token of a column added to a table
// earlier in this plan (via create-table or alter-table add-columns), used
// by create-index's non-indexable-type filter when the live introspector
// cannot answer (e.g. the table was itself just created in this
// migration). ok is false if no such column was found in the plan.
func (p *Plan) ColumnType(table, column string) (tokens []string, ok bool) {
	for _, c := range p.entries {
		switch cc := c.(type) {
		case command.CreateTable:
			if cc.Table != table {
				continue
			}
			for _, col := range cc.Columns {
				if col.Name == column {
					tokens, ok = col.Tokens, true
				}
			}
		case command.AlterTable:
			if cc.Table != table {
				continue
			}
			for _, col := range cc.AddColumns {
				if col.Name == column {
					tokens, ok = col.Tokens, true
				}
			}
		}
	}
	return tokens, ok
}
