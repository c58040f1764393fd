package query

import (
	"github.com/tidwall/gjson"
)

// Projection selects the fields of a response document. The zero value keeps
// every field.
type Projection struct {
	include   bool
	fields    map[string]bool
	excludeID bool
}

func (p Projection) IsZero() bool {
	return len(p.fields) == 0 && !p.excludeID
}

// Apply filters doc in place and returns it. id stays unless excluded
// explicitly.
func (p Projection) Apply(doc map[string]any) map[string]any {
	if p.IsZero() {
		return doc
	}
	for k := range doc {
		keep := true
		switch {
		case k == "id":
			keep = !p.excludeID
		case p.include:
			keep = p.fields[k]
		default:
			keep = !p.fields[k]
		}
		if !keep {
			delete(doc, k)
		}
	}
	return doc
}

func parseSelect(raw string, schema Schema) (Projection, error) {
	obj, ok, err := parseObject("select", raw)
	if err != nil || !ok {
		return Projection{}, err
	}

	p := Projection{fields: make(map[string]bool)}
	mode := 0 // 1 include, -1 exclude
	obj.ForEach(func(key, value gjson.Result) bool {
		field, found := schema.Lookup(key.String())
		if !found {
			err = malformed("unknown field %q in select", key.String())
			return false
		}

		var on bool
		switch {
		case value.Type == gjson.True, value.Type == gjson.Number && value.Num == 1:
			on = true
		case value.Type == gjson.False, value.Type == gjson.Number && value.Num == 0:
		default:
			err = malformed("invalid select value for %q", field.Name)
			return false
		}

		if field.Name == "id" {
			p.excludeID = !on
			return true
		}

		m := -1
		if on {
			m = 1
		}
		if mode != 0 && mode != m {
			err = malformed("select cannot mix inclusion and exclusion")
			return false
		}
		mode = m
		p.fields[field.Name] = true
		return true
	})
	if err != nil {
		return Projection{}, err
	}

	p.include = mode == 1
	if mode == 0 && !p.excludeID {
		// {"id": 1} alone keeps only the id.
		if obj.Get("id").Exists() || obj.Get("_id").Exists() {
			p.include = true
			p.fields["id"] = true
		}
	}
	return p, nil
}
