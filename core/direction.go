package core

// Direction is the travel direction of the actuator. Its value is the sign
// applied to the step increment on each tick.
type Direction int8

const (
	Forward  Direction = 1
	Backward Direction = -1
)

// Reversed returns the opposite direction.
func (d Direction) Reversed() Direction {
	return -d
}

// valid reports whether d is one of the two defined directions.
func (d Direction) valid() bool {
	return d == Forward || d == Backward
}

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	}
	return "invalid"
}
