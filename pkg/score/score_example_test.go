package score_test

import (
	"fmt"

	"github.com/gitrdm/gokanscore/pkg/score"
)

func ExampleDefinition_Parse() {
	def, _ := score.NewBendableDefinition(score.TypeBendable, 2, 1)
	weight, _ := def.Parse("[3/0]hard/[0]soft")

	fmt.Println(weight.Multiply(5))
	fmt.Println(weight.IsFeasible())
	// Output:
	// [15/0]hard/[0]soft
	// true
}

func ExampleScore_CompareTo() {
	a := score.OfHardSoft(0, -120)
	b := score.OfHardSoft(-1, 0)

	fmt.Println(a.CompareTo(b) > 0)
	// Output: true
}
