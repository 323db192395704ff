package problems

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/session"
	"github.com/gitrdm/gokanscore/pkg/stream"
)

// Color is a problem fact.
type Color struct {
	Name string
}

func (c *Color) String() string { return c.Name }

// Region is colored; the color is the planning variable.
type Region struct {
	Name  string
	Color *Color
}

func (r *Region) String() string { return r.Name }

// Border connects two regions that must not share a color.
type Border struct {
	A, B *Region
}

func (b *Border) String() string { return b.A.Name + "-" + b.B.Name }

// Coloring is a map coloring problem.
type Coloring struct {
	Colors  []*Color
	Regions []*Region
	Borders []*Border
}

var colorNames = []string{"red", "green", "blue", "yellow", "purple", "orange"}

// australia is the classic three colorable map.
var australia = struct {
	regions []string
	borders [][2]int
}{
	regions: []string{"WA", "NT", "SA", "Q", "NSW", "V", "T"},
	borders: [][2]int{{0, 1}, {0, 2}, {1, 2}, {1, 3}, {2, 3}, {2, 4}, {2, 5}, {3, 4}, {4, 5}},
}

// NewColoring builds a coloring problem with random initial colors. Size 7
// or less gives the map of Australia with three colors. Larger sizes give a
// ring of regions with chords and four colors.
func NewColoring(size int, r *rand.Rand) *Coloring {
	c := &Coloring{}
	if size <= len(australia.regions) {
		c.addColors(3)
		for _, name := range australia.regions {
			c.addRegion(name, r)
		}
		for _, b := range australia.borders {
			c.Borders = append(c.Borders, &Border{A: c.Regions[b[0]], B: c.Regions[b[1]]})
		}
		return c
	}
	c.addColors(4)
	for i := range size {
		c.addRegion(fmt.Sprintf("R%d", i), r)
	}
	for i := range size {
		c.Borders = append(c.Borders, &Border{A: c.Regions[i], B: c.Regions[(i+1)%size]})
		if i%3 == 0 {
			c.Borders = append(c.Borders, &Border{A: c.Regions[i], B: c.Regions[(i+size/2)%size]})
		}
	}
	return c
}

func (c *Coloring) addColors(n int) {
	for _, name := range colorNames[:n] {
		c.Colors = append(c.Colors, &Color{Name: name})
	}
}

func (c *Coloring) addRegion(name string, r *rand.Rand) {
	c.Regions = append(c.Regions, &Region{Name: name, Color: c.Colors[r.IntN(len(c.Colors))]})
}

func (c *Coloring) Name() string { return "graphcoloring" }

func (c *Coloring) Score() session.ScoreConfig {
	return session.ScoreConfig{Type: score.TypeHardSoft}
}

func (c *Coloring) Weights() map[string]string {
	return map[string]string{"graphcoloring/colors used": "0hard/1soft"}
}

func (c *Coloring) Provider() stream.Provider { return ColoringConstraints }

// ColoringConstraints penalize bordering regions of the same color (hard)
// and every color in use (soft, configurable).
func ColoringConstraints(f *stream.Factory) []*stream.Constraint {
	regions := stream.ForEach[*Region](f)
	self := func(r *Region) *Region { return r }
	return []*stream.Constraint{
		stream.ForEach[*Border](f).
			Join(regions, stream.EqualOn(func(b *Border) *Region { return b.A }, self)).
			Join(regions,
				stream.Equal(stream.BiKey(func(b *Border, _ *Region) *Region { return b.B }), stream.UniKey(self)),
				stream.Equal(stream.BiKey(func(_ *Border, a *Region) *Color { return a.Color }),
					stream.UniKey(func(r *Region) *Color { return r.Color }))).
			Penalize("same color", score.OfHardSoft(1, 0)),
		regions.
			GroupBy([]*stream.Mapping{stream.UniKey(func(r *Region) *Color { return r.Color })}).
			PenalizeConfigurable("colors used"),
	}
}

func (c *Coloring) Facts() []any {
	var facts []any
	for _, col := range c.Colors {
		facts = append(facts, col)
	}
	for _, b := range c.Borders {
		facts = append(facts, b)
	}
	for _, r := range c.Regions {
		facts = append(facts, r)
	}
	return facts
}

// RandomMove recolors a random region.
func (c *Coloring) RandomMove(r *rand.Rand) Move {
	region := c.Regions[r.IntN(len(c.Regions))]
	from := region.Color
	to := c.Colors[r.IntN(len(c.Colors))]
	return Move{
		Entity: region,
		do:     func() { region.Color = to },
		undo:   func() { region.Color = from },
	}
}

func (c *Coloring) String() string {
	var sb strings.Builder
	for _, r := range c.Regions {
		fmt.Fprintf(&sb, "%-4s %s\n", r.Name, r.Color)
	}
	return sb.String()
}
