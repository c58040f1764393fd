package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskapi/internal/model"
	"taskapi/internal/query"
)

var pendingTable = model.PendingTask{}.TableName()

// applyQuery translates q into clauses on db. table qualifies every column.
func applyQuery(db *gorm.DB, table string, q *query.Query) *gorm.DB {
	db = applyWhere(db, table, q.Where)

	if len(q.Sort) == 0 {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: "date_created"}}).
			Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: "id"}})
	}
	for _, o := range q.Sort {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: o.Field.Column}, Desc: o.Desc})
	}

	if q.Skip > 0 {
		db = db.Offset(q.Skip)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	return db
}

func applyWhere(db *gorm.DB, table string, conds []query.Condition) *gorm.DB {
	if len(conds) == 0 {
		return db
	}
	exprs := make([]clause.Expression, 0, len(conds))
	for _, c := range conds {
		exprs = append(exprs, condition(table, c))
	}
	return db.Clauses(clause.Where{Exprs: exprs})
}

var matchNothing = clause.Expr{SQL: "1 = 0"}
var matchAll = clause.Expr{SQL: "1 = 1"}

func condition(table string, c query.Condition) clause.Expression {
	if c.Field.Kind == query.KindIDSet {
		return membership(table, c)
	}

	col := clause.Column{Table: table, Name: c.Field.Column}
	isNull := clause.Eq{Column: col, Value: nil}
	notNull := clause.Neq{Column: col, Value: nil}

	switch c.Op {
	case query.OpEq:
		return clause.Eq{Column: col, Value: c.Value}
	case query.OpNe:
		if c.Value == nil {
			return notNull
		}
		return clause.Or(clause.Neq{Column: col, Value: c.Value}, isNull)
	case query.OpGt:
		return clause.Gt{Column: col, Value: c.Value}
	case query.OpGte:
		return clause.Gte{Column: col, Value: c.Value}
	case query.OpLt:
		return clause.Lt{Column: col, Value: c.Value}
	case query.OpLte:
		return clause.Lte{Column: col, Value: c.Value}
	}

	values, withNull := splitNull(c.Values)
	switch c.Op {
	case query.OpIn:
		switch {
		case len(values) == 0 && withNull:
			return isNull
		case len(values) == 0:
			return matchNothing
		case withNull:
			return clause.Or(clause.IN{Column: col, Values: values}, isNull)
		default:
			return clause.IN{Column: col, Values: values}
		}
	case query.OpNin:
		switch {
		case len(values) == 0 && withNull:
			return notNull
		case len(values) == 0:
			return matchAll
		case withNull:
			return clause.And(clause.Not(clause.IN{Column: col, Values: values}), notNull)
		default:
			return clause.Or(clause.Not(clause.IN{Column: col, Values: values}), isNull)
		}
	}
	panic(fmt.Sprintf("repository: unhandled operator %q", c.Op))
}

// membership filters users on the contents of their pending set.
func membership(table string, c query.Condition) clause.Expression {
	values := c.Values
	if c.Op == query.OpEq || c.Op == query.OpNe {
		values = []any{c.Value}
	}
	if len(values) == 0 {
		if c.Op == query.OpIn {
			return matchNothing
		}
		return matchAll
	}

	sql := fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE %s.user_id = %s.id AND %s.task_id IN ?)",
		pendingTable, pendingTable, table, pendingTable)
	if c.Op == query.OpNe || c.Op == query.OpNin {
		sql = "NOT " + sql
	}
	return clause.Expr{SQL: sql, Vars: []any{values}}
}

func splitNull(in []any) ([]any, bool) {
	out := make([]any, 0, len(in))
	withNull := false
	for _, v := range in {
		if v == nil {
			withNull = true
			continue
		}
		out = append(out, v)
	}
	return out, withNull
}
