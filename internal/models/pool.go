package models

// Pool describes a number domain.
type Pool struct {
	Name  string
	Size  int
	Picks int
}

var (
	// PrimaryPool is the 6-from-33 pool.
	PrimaryPool = Pool{Name: "primary", Size: 33, Picks: 6}
	// SecondaryPool is the 1-from-16 pool.
	SecondaryPool = Pool{Name: "secondary", Size: 16, Picks: 1}
)

// Theoretical primary sum and span bounds.
const (
	MinPrimarySum  = 1 + 2 + 3 + 4 + 5 + 6
	MaxPrimarySum  = 28 + 29 + 30 + 31 + 32 + 33
	MaxPrimarySpan = 32
)

// Contains reports whether n is a valid number of the pool.
func (p Pool) Contains(n int) bool {
	return n >= 1 && n <= p.Size
}
