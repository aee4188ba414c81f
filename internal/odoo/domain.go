package odoo

// Search operators used by this gateway.
const (
	OpEqual = "="
	OpILike = "ilike"
	OpIn    = "in"
)

// OrMarker joins the two terms that follow it.
const OrMarker = "|"

// Clause is one (field, operator, value) filter.
type Clause struct {
	Field    string
	Operator string
	Value    any
}

// Where builds a clause.
func Where(field, operator string, value any) Clause {
	return Clause{Field: field, Operator: operator, Value: value}
}

// Term is either a clause or an OR marker.
type Term struct {
	Or     bool
	Clause Clause
}

// Domain is an ordered search filter in prefix notation. Consecutive terms
// are implicitly ANDed; an OR marker applies to the two terms after it.
type Domain []Term

// And appends a clause.
func (d Domain) And(c Clause) Domain {
	return append(d, Term{Clause: c})
}

// Or appends an OR marker followed by a and b.
func (d Domain) Or(a, b Clause) Domain {
	return append(d, Term{Or: true}, Term{Clause: a}, Term{Clause: b})
}

// Wire encodes the domain for execute_kw.
func (d Domain) Wire() []any {
	out := make([]any, 0, len(d))
	for _, t := range d {
		if t.Or {
			out = append(out, OrMarker)
			continue
		}
		out = append(out, []any{t.Clause.Field, t.Clause.Operator, t.Clause.Value})
	}
	return out
}
