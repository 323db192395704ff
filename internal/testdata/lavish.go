// Package testdata generates the lavish fixture shared by the backend and
// session tests: a deterministic problem with value groups, values, entity
// groups, entities and extra facts.
//
// Entities get values round-robin, entity i taking value i mod the number
// of values, and entity groups the same way. With 5 entities and 3 values
// that is e0→v0, e1→v1, e2→v2, e3→v0, e4→v1: exactly two unique pairs of
// entities share a value, (e0, e3) and (e1, e4).
package testdata

import "fmt"

type ValueGroup struct {
	Code string
}

func (g *ValueGroup) String() string { return g.Code }

type Value struct {
	Code  string
	Group *ValueGroup
}

func (v *Value) String() string { return v.Code }

type EntityGroup struct {
	Code string
}

func (g *EntityGroup) String() string { return g.Code }

type Entity struct {
	Code            string
	Group           *EntityGroup
	Value           *Value
	IntegerProperty int
}

func (e *Entity) String() string { return e.Code }

// ExtraFact is a fact no entity references.
type ExtraFact struct {
	Code string
}

func (f *ExtraFact) String() string { return f.Code }

// Config sizes a lavish solution.
type Config struct {
	ValueGroups  int
	Values       int
	EntityGroups int
	Entities     int
	ExtraFacts   int
}

// Solution is one generated problem.
type Solution struct {
	ValueGroups  []*ValueGroup
	Values       []*Value
	EntityGroups []*EntityGroup
	Entities     []*Entity
	ExtraFacts   []*ExtraFact
}

// Generate builds the solution described by cfg. Counts below 1 produce
// no facts of that kind; entities need at least one value and one entity
// group.
func Generate(cfg Config) *Solution {
	s := &Solution{}
	for i := range cfg.ValueGroups {
		s.ValueGroups = append(s.ValueGroups, &ValueGroup{Code: fmt.Sprintf("Value group %d", i)})
	}
	for i := range cfg.Values {
		v := &Value{Code: fmt.Sprintf("Value %d", i)}
		if len(s.ValueGroups) > 0 {
			v.Group = s.ValueGroups[i%len(s.ValueGroups)]
		}
		s.Values = append(s.Values, v)
	}
	for i := range cfg.EntityGroups {
		s.EntityGroups = append(s.EntityGroups, &EntityGroup{Code: fmt.Sprintf("Entity group %d", i)})
	}
	for i := range cfg.Entities {
		e := &Entity{Code: fmt.Sprintf("Entity %d", i), IntegerProperty: 1}
		if len(s.EntityGroups) > 0 {
			e.Group = s.EntityGroups[i%len(s.EntityGroups)]
		}
		if len(s.Values) > 0 {
			e.Value = s.Values[i%len(s.Values)]
		}
		s.Entities = append(s.Entities, e)
	}
	for i := range cfg.ExtraFacts {
		s.ExtraFacts = append(s.ExtraFacts, &ExtraFact{Code: fmt.Sprintf("Extra fact %d", i)})
	}
	return s
}

// Facts returns every fact of the solution, problem facts first.
func (s *Solution) Facts() []any {
	var facts []any
	for _, g := range s.ValueGroups {
		facts = append(facts, g)
	}
	for _, v := range s.Values {
		facts = append(facts, v)
	}
	for _, g := range s.EntityGroups {
		facts = append(facts, g)
	}
	for _, f := range s.ExtraFacts {
		facts = append(facts, f)
	}
	for _, e := range s.Entities {
		facts = append(facts, e)
	}
	return facts
}

// Clone returns a copy of e with the same field values and a new identity.
func (e *Entity) Clone() *Entity {
	c := *e
	return &c
}

// EntityCode orders entities for unique pairs.
func EntityCode(e *Entity) string { return e.Code }

// EntityValue is the value of an entity.
func EntityValue(e *Entity) *Value { return e.Value }
