// Package main is a guided tour of the scoring library: score values, score
// holders, constraint streams and sessions on both backends.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gitrdm/gokanscore/internal/parallel"
	"github.com/gitrdm/gokanscore/pkg/bavet"
	"github.com/gitrdm/gokanscore/pkg/constraint"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreholder"
	"github.com/gitrdm/gokanscore/pkg/session"
	"github.com/gitrdm/gokanscore/pkg/stream"
)

// Employee is a problem fact.
type Employee struct {
	Name   string
	Senior bool
}

func (e *Employee) String() string { return e.Name }

// Shift is a planning entity; Employee is its planning variable.
type Shift struct {
	Day      int
	Slot     string
	Employee *Employee
}

func (s *Shift) String() string { return fmt.Sprintf("day %d %s", s.Day, s.Slot) }

func main() {
	fmt.Println("=== gokanscore tour ===")
	fmt.Println()

	scoreValues()
	scoreHolder()
	bavetSession()
	explainedSession()
	replicatedSessions()
}

// scoreValues shows parsing, arithmetic and comparison.
func scoreValues() {
	fmt.Println("1. Score values:")

	def, err := score.NewDefinition(score.TypeHardSoft)
	if err != nil {
		log.Fatal(err)
	}
	a, err := def.Parse("-1hard/-20soft")
	if err != nil {
		log.Fatal(err)
	}
	b := score.OfHardSoft(0, -300)

	fmt.Printf("   a = %s, b = %s\n", a, b)
	fmt.Printf("   a + b = %s, b * 0.5 = %s\n", a.Add(b), b.Multiply(0.5))
	fmt.Printf("   a < b: %v (hard levels decide first), b feasible: %v\n", a.CompareTo(b) < 0, b.IsFeasible())
	fmt.Println()
}

// scoreHolder drives an accumulator by hand; backends do the same.
func scoreHolder() {
	fmt.Println("2. Score holder:")

	def, _ := score.NewDefinition(score.TypeHardSoft)
	h, err := scoreholder.New(def, true, nil, "")
	if err != nil {
		log.Fatal(err)
	}
	id := constraint.NewID("tour", "understaffed")
	if err := h.ConfigureConstraintWeight(id, score.OfHardSoft(0, 5)); err != nil {
		log.Fatal(err)
	}

	monday := &Shift{Day: 1, Slot: "early"}
	undo, err := h.PenalizeBy(stream.Match{ID: id, Facts: []any{monday}}, 3)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("   after penalizing %s by 3: %s\n", monday, h.ExtractScore(0))
	undo()
	fmt.Printf("   after the undo: %s\n", h.ExtractScore(0))
	fmt.Println()
}

func rosterConstraints(f *stream.Factory) []*stream.Constraint {
	shifts := stream.ForEach[*Shift](f)
	return []*stream.Constraint{
		// Nobody works two shifts on one day.
		stream.ForEachUniquePair(f, (*Shift).String,
			stream.EqualOn(func(s *Shift) *Employee { return s.Employee }, func(s *Shift) *Employee { return s.Employee }),
			stream.EqualOn(func(s *Shift) int { return s.Day }, func(s *Shift) int { return s.Day })).
			Penalize("one shift per day", score.OfHardSoft(1, 0)),
		// A junior on a late shift needs a senior on the same day.
		shifts.
			Filter(stream.UniPredicate(func(s *Shift) bool { return s.Slot == "late" && !s.Employee.Senior })).
			IfNotExists(shifts,
				stream.EqualOn(func(s *Shift) int { return s.Day }, func(s *Shift) int { return s.Day }),
				stream.Filtering(func(_ []any, right any) bool { return right.(*Shift).Employee.Senior })).
			PenalizeConfigurable("no senior"),
		// Balance the load: every shift beyond two per employee costs.
		shifts.
			GroupBy([]*stream.Mapping{stream.UniKey(func(s *Shift) *Employee { return s.Employee })}, stream.Count()).
			Filter(stream.BiPredicate(func(_ *Employee, n int) bool { return n > 2 })).
			PenalizeBy("overloaded", score.OfHardSoft(0, 1), stream.BiWeigher(func(_ *Employee, n int) int { return n - 2 })),
	}
}

func roster() (employees []*Employee, shifts []*Shift) {
	ann := &Employee{Name: "Ann", Senior: true}
	bob := &Employee{Name: "Bob"}
	cid := &Employee{Name: "Cid"}
	employees = []*Employee{ann, bob, cid}
	assign := []*Employee{ann, bob, bob, bob, cid, ann}
	for i, e := range assign {
		slot := "early"
		if i%2 == 1 {
			slot = "late"
		}
		shifts = append(shifts, &Shift{Day: i / 2, Slot: slot, Employee: e})
	}
	return employees, shifts
}

// bavetSession builds the tuple network directly, without a factory.
func bavetSession() {
	fmt.Println("3. Bavet session:")

	def, _ := score.NewDefinition(score.TypeHardSoft)
	h, _ := scoreholder.New(def, false, nil, "")
	constraints := rosterConstraints(stream.NewFactory("tour"))
	for _, c := range constraints {
		w := c.Weight()
		if c.Configurable() {
			w = score.OfHardSoft(0, 10)
		}
		if err := h.ConfigureConstraintWeight(c.ID(), w); err != nil {
			log.Fatal(err)
		}
	}
	s, err := bavet.NewSession(constraints, h)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("   %d nodes for %d constraints\n", s.NodeCount(), len(constraints))

	employees, shifts := roster()
	for _, e := range employees {
		_ = s.Insert(e)
	}
	for _, sh := range shifts {
		_ = s.Insert(sh)
	}
	sc, _ := s.CalculateScore(0)
	fmt.Printf("   roster score: %s\n", sc)

	// Give Bob's day 1 early shift to Cid.
	shifts[2].Employee = employees[2]
	_ = s.Update(shifts[2])
	sc, _ = s.CalculateScore(0)
	fmt.Printf("   after one change: %s\n", sc)
	fmt.Println()
}

// explainedSession uses the factory on the rete backend and explains the
// score.
func explainedSession() {
	fmt.Println("4. Rete session with explanation:")

	cfg := session.DefaultConfig()
	cfg.Backend = session.BackendRete
	cfg.ConstraintPackage = "tour"
	cfg.ConstraintMatchEnabled = true
	cfg.Score.Type = score.TypeHardSoft
	cfg.ConstraintWeights = map[string]string{"tour/no senior": "0hard/10soft"}

	ctx := context.Background()
	f, err := session.NewFactory(ctx, cfg, rosterConstraints)
	if err != nil {
		log.Fatal(err)
	}
	s, err := f.NewSession(ctx)
	if err != nil {
		log.Fatal(err)
	}
	employees, shifts := roster()
	for _, e := range employees {
		_ = s.Insert(e)
	}
	for _, sh := range shifts {
		_ = s.Insert(sh)
	}
	e, err := session.Explain(s, 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(e)
	fmt.Println()
}

// replicatedSessions scores independent copies of the roster on several
// goroutines, one session each.
func replicatedSessions() {
	fmt.Println("5. Replicated sessions:")

	cfg := session.DefaultConfig()
	cfg.ConstraintPackage = "tour"
	cfg.Score.Type = score.TypeHardSoft
	cfg.ConstraintWeights = map[string]string{"tour/no senior": "0hard/10soft"}
	ctx := context.Background()
	f, err := session.NewFactory(ctx, cfg, rosterConstraints)
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	replicas, err := parallel.Replicate(ctx, 4, func(ctx context.Context, _ int) (session.Session, error) {
		return f.NewSession(ctx)
	})
	if err != nil {
		log.Fatal(err)
	}
	scores := make([]score.Score, len(replicas))
	err = parallel.Each(ctx, replicas, func(_ context.Context, worker int, s session.Session) error {
		employees, shifts := roster()
		// Worker w hands its first w shifts to Ann.
		for i := range worker {
			shifts[i].Employee = employees[0]
		}
		for _, e := range employees {
			if err := s.Insert(e); err != nil {
				return err
			}
		}
		for _, sh := range shifts {
			if err := s.Insert(sh); err != nil {
				return err
			}
		}
		var err error
		scores[worker], err = s.CalculateScore(0)
		return err
	})
	if err != nil {
		log.Fatal(err)
	}
	for i, sc := range scores {
		fmt.Printf("   replica %d: %s\n", i, sc)
	}
	fmt.Printf("   done in %v\n", time.Since(start).Round(time.Microsecond))
}
