package problems

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/session"
	"github.com/gitrdm/gokanscore/pkg/stream"
)

// Computer is a problem fact with capacities and a fixed running cost.
type Computer struct {
	ID     int
	CPU    int
	Memory int
	Cost   int
}

func (c *Computer) String() string { return fmt.Sprintf("computer %d", c.ID) }

// Process needs resources of the computer it runs on, its planning variable.
type Process struct {
	ID       int
	CPU      int
	Memory   int
	Computer *Computer
}

func (p *Process) String() string { return fmt.Sprintf("process %d", p.ID) }

// Cloud assigns processes to computers.
type Cloud struct {
	Computers []*Computer
	Processes []*Process
}

// NewCloud generates size computers and three processes per computer, each
// on a random computer. Total demand stays below total capacity.
func NewCloud(size int, r *rand.Rand) *Cloud {
	c := &Cloud{}
	for i := range size {
		cpu := 8 + 4*r.IntN(4)
		c.Computers = append(c.Computers, &Computer{
			ID:     i,
			CPU:    cpu,
			Memory: 2 * cpu,
			Cost:   100 + 10*cpu + r.IntN(50),
		})
	}
	for i := range 3 * size {
		c.Processes = append(c.Processes, &Process{
			ID:       i,
			CPU:      1 + r.IntN(4),
			Memory:   1 + r.IntN(8),
			Computer: c.Computers[r.IntN(size)],
		})
	}
	return c
}

func (c *Cloud) Name() string { return "cloudbalancing" }

func (c *Cloud) Score() session.ScoreConfig {
	return session.ScoreConfig{Type: score.TypeHardSoft}
}

func (c *Cloud) Weights() map[string]string {
	return map[string]string{"cloudbalancing/computer cost": "0hard/1soft"}
}

func (c *Cloud) Provider() stream.Provider { return CloudConstraints }

// CloudConstraints penalize capacity overruns by the excess (hard) and every
// computer in use by its cost (soft, configurable).
func CloudConstraints(f *stream.Factory) []*stream.Constraint {
	processes := stream.ForEach[*Process](f)
	computer := stream.UniKey(func(p *Process) *Computer { return p.Computer })
	overrun := func(name string, demand func(*Process) int, capacity func(*Computer) int) *stream.Constraint {
		excess := func(c *Computer, total int) int { return total - capacity(c) }
		return processes.
			GroupBy([]*stream.Mapping{computer}, stream.Sum(stream.UniKey(demand))).
			Filter(stream.BiPredicate(func(c *Computer, total int) bool { return excess(c, total) > 0 })).
			PenalizeBy(name, score.OfHardSoft(1, 0), stream.BiWeigher(excess))
	}
	return []*stream.Constraint{
		overrun("required cpu",
			func(p *Process) int { return p.CPU },
			func(c *Computer) int { return c.CPU }),
		overrun("required memory",
			func(p *Process) int { return p.Memory },
			func(c *Computer) int { return c.Memory }),
		stream.ForEach[*Computer](f).
			IfExists(processes, stream.EqualOn(func(c *Computer) *Computer { return c }, func(p *Process) *Computer { return p.Computer })).
			PenalizeConfigurableBy("computer cost", stream.UniWeigher(func(c *Computer) int { return c.Cost })),
	}
}

func (c *Cloud) Facts() []any {
	var facts []any
	for _, m := range c.Computers {
		facts = append(facts, m)
	}
	for _, p := range c.Processes {
		facts = append(facts, p)
	}
	return facts
}

// RandomMove moves a random process to a random computer.
func (c *Cloud) RandomMove(r *rand.Rand) Move {
	p := c.Processes[r.IntN(len(c.Processes))]
	from := p.Computer
	to := c.Computers[r.IntN(len(c.Computers))]
	return Move{
		Entity: p,
		do:     func() { p.Computer = to },
		undo:   func() { p.Computer = from },
	}
}

func (c *Cloud) String() string {
	var sb strings.Builder
	for _, m := range c.Computers {
		var ids []string
		cpu, mem := 0, 0
		for _, p := range c.Processes {
			if p.Computer == m {
				ids = append(ids, fmt.Sprint(p.ID))
				cpu += p.CPU
				mem += p.Memory
			}
		}
		fmt.Fprintf(&sb, "computer %d  cpu %2d/%-2d  memory %2d/%-2d  processes [%s]\n",
			m.ID, cpu, m.CPU, mem, m.Memory, strings.Join(ids, " "))
	}
	return sb.String()
}
