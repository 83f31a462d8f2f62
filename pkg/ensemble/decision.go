package ensemble

import "fmt"

// Label is the final three-way classification of a record.
type Label int

// Final labels.
const (
	Unknown Label = -1
	Normal  Label = 0
	Attack  Label = 1
)

func (l Label) String() string {
	switch l {
	case Unknown:
		return "unknown"
	case Normal:
		return "normal"
	case Attack:
		return "attack"
	}
	return fmt.Sprintf("label(%d)", int(l))
}

// fusion maps (attack verdict, normal verdict) to the final label. A verdict is 1 when the
// row is an inlier of that class's subsystem.
var fusion = [2][2]Label{
	// normal: 0   1
	{Unknown, Normal}, // attack 0
	{Attack, Attack},  // attack 1
}

// Decide fuses one row's subsystem verdicts. Any non-zero verdict counts as 1.
func Decide(attack, normal int) Label {
	return fusion[bit(attack)][bit(normal)]
}

// Fuse applies Decide row by row.
func Fuse(attack, normal []int) ([]Label, error) {
	if len(attack) != len(normal) {
		return nil, fmt.Errorf("fuse: %d attack verdicts, %d normal verdicts", len(attack), len(normal))
	}
	out := make([]Label, len(attack))
	for i := range attack {
		out[i] = Decide(attack[i], normal[i])
	}
	return out, nil
}

func bit(v int) int {
	if v != 0 {
		return 1
	}
	return 0
}
