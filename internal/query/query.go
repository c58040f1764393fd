package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"taskapi/internal/apperr"
	"taskapi/internal/validation"
)

type Op string

const (
	OpEq  Op = "$eq"
	OpNe  Op = "$ne"
	OpIn  Op = "$in"
	OpNin Op = "$nin"
	OpGt  Op = "$gt"
	OpGte Op = "$gte"
	OpLt  Op = "$lt"
	OpLte Op = "$lte"
)

func (op Op) isRange() bool {
	return op == OpGt || op == OpGte || op == OpLt || op == OpLte
}

func (op Op) isList() bool {
	return op == OpIn || op == OpNin
}

// Condition is one filter predicate. Value holds the coerced operand for
// scalar operators, Values for $in/$nin. A nil value on a KindRef field means
// "no reference".
type Condition struct {
	Field  Field
	Op     Op
	Value  any
	Values []any
}

type Order struct {
	Field Field
	Desc  bool
}

type Query struct {
	Where      []Condition
	Sort       []Order
	Projection Projection
	Skip       int
	// Limit of 0 means unlimited.
	Limit int
	Count bool
}

// Parse builds a Query from the where, sort, select, skip, limit and count
// parameters. defaultLimit applies when limit is absent.
func Parse(values url.Values, schema Schema, defaultLimit int) (*Query, error) {
	q := &Query{Limit: defaultLimit}

	var err error
	if values.Has("where") {
		if q.Where, err = parseWhere(values.Get("where"), schema); err != nil {
			return nil, err
		}
	}
	if values.Has("count") {
		q.Count = strings.EqualFold(strings.TrimSpace(values.Get("count")), "true")
	}
	if q.Count {
		return q, nil
	}

	if values.Has("sort") {
		if q.Sort, err = parseSort(values.Get("sort"), schema); err != nil {
			return nil, err
		}
	}
	if values.Has("select") {
		if q.Projection, err = parseSelect(values.Get("select"), schema); err != nil {
			return nil, err
		}
	}
	if values.Has("skip") {
		if q.Skip, err = parseCount("skip", values.Get("skip")); err != nil {
			return nil, err
		}
	}
	if values.Has("limit") {
		if q.Limit, err = parseCount("limit", values.Get("limit")); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func malformed(format string, args ...any) error {
	return apperr.Validation(apperr.ReasonMalformedQuery, fmt.Sprintf(format, args...))
}

// parseObject validates raw as a JSON object. A JSON null is an empty object.
func parseObject(param, raw string) (gjson.Result, bool, error) {
	if !gjson.Valid(raw) {
		return gjson.Result{}, false, malformed("invalid JSON in %q", param)
	}
	obj := gjson.Parse(raw)
	if obj.Type == gjson.Null {
		return obj, false, nil
	}
	if !obj.IsObject() {
		return gjson.Result{}, false, malformed("%q must be a JSON object", param)
	}
	return obj, true, nil
}

func parseWhere(raw string, schema Schema) ([]Condition, error) {
	obj, ok, err := parseObject("where", raw)
	if err != nil || !ok {
		return nil, err
	}

	var conds []Condition
	obj.ForEach(func(key, value gjson.Result) bool {
		field, found := schema.Lookup(key.String())
		if !found {
			err = malformed("unknown field %q in where", key.String())
			return false
		}

		if !value.IsObject() {
			var c Condition
			if c, err = newCondition(field, OpEq, value); err == nil {
				conds = append(conds, c)
			}
			return err == nil
		}

		n := 0
		value.ForEach(func(opKey, operand gjson.Result) bool {
			n++
			op := Op(opKey.String())
			var c Condition
			if c, err = newCondition(field, op, operand); err == nil {
				conds = append(conds, c)
			}
			return err == nil
		})
		if err == nil && n == 0 {
			err = malformed("empty operator object for %q", field.Name)
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return conds, nil
}

func newCondition(field Field, op Op, operand gjson.Result) (Condition, error) {
	switch op {
	case OpEq, OpNe, OpIn, OpNin, OpGt, OpGte, OpLt, OpLte:
	default:
		return Condition{}, malformed("unsupported operator %q on %q", string(op), field.Name)
	}
	if op.isRange() && (field.Kind == KindBool || field.Kind == KindRef || field.Kind == KindIDSet) {
		return Condition{}, malformed("operator %q is not supported on %q", string(op), field.Name)
	}

	c := Condition{Field: field, Op: op}
	if op.isList() {
		if !operand.IsArray() {
			return Condition{}, malformed("%q on %q expects an array", string(op), field.Name)
		}
		for _, item := range operand.Array() {
			v, err := coerce(field, item)
			if err != nil {
				return Condition{}, err
			}
			c.Values = append(c.Values, v)
		}
		return c, nil
	}

	v, err := coerce(field, operand)
	if err != nil {
		return Condition{}, err
	}
	c.Value = v
	return c, nil
}

// coerce converts a JSON operand to the Go type of the field.
func coerce(field Field, v gjson.Result) (any, error) {
	switch field.Kind {
	case KindString:
		if v.Type != gjson.String {
			return nil, malformed("%q expects a string", field.Name)
		}
		return v.String(), nil

	case KindBool:
		switch {
		case v.Type == gjson.True, v.Type == gjson.String && strings.EqualFold(v.String(), "true"):
			return true, nil
		case v.Type == gjson.False, v.Type == gjson.String && strings.EqualFold(v.String(), "false"):
			return false, nil
		}
		return nil, malformed("%q expects a boolean", field.Name)

	case KindTime:
		var raw any
		switch v.Type {
		case gjson.Number:
			raw = v.Num
		case gjson.String:
			raw = v.String()
		default:
			return nil, malformed("%q expects a timestamp", field.Name)
		}
		t, ok := validation.ParseInstant(raw)
		if !ok {
			return nil, malformed("%q expects a timestamp", field.Name)
		}
		return t, nil

	case KindRef:
		if v.Type == gjson.Null || (v.Type == gjson.String && strings.TrimSpace(v.String()) == "") {
			return nil, nil
		}
		fallthrough

	case KindID, KindIDSet:
		if v.Type != gjson.String {
			return nil, malformed("%q expects an id", field.Name)
		}
		id, err := uuid.Parse(strings.TrimSpace(v.String()))
		if err != nil {
			return nil, malformed("%q expects a valid id", field.Name)
		}
		return id, nil
	}
	return nil, malformed("unsupported field %q", field.Name)
}

func parseSort(raw string, schema Schema) ([]Order, error) {
	obj, ok, err := parseObject("sort", raw)
	if err != nil || !ok {
		return nil, err
	}

	var orders []Order
	obj.ForEach(func(key, value gjson.Result) bool {
		field, found := schema.Lookup(key.String())
		if !found || !field.sortable() {
			err = malformed("cannot sort on %q", key.String())
			return false
		}

		var desc bool
		switch {
		case value.Type == gjson.Number && value.Num == 1:
		case value.Type == gjson.Number && value.Num == -1:
			desc = true
		case value.Type == gjson.String:
			switch strings.ToLower(value.String()) {
			case "asc", "ascending":
			case "desc", "descending":
				desc = true
			default:
				err = malformed("invalid sort direction for %q", field.Name)
				return false
			}
		default:
			err = malformed("invalid sort direction for %q", field.Name)
			return false
		}
		orders = append(orders, Order{Field: field, Desc: desc})
		return true
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func parseCount(param, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, malformed("%q must be a non-negative integer", param)
	}
	return n, nil
}
