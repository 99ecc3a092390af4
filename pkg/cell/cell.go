package cell

// Cell is an exclusive-access slot holding at most one value of type T.
//
// The zero value is not usable; create cells with New or Empty.
type Cell[T any] struct {
	slot chan T
}

// New creates a full cell holding v.
func New[T any](v T) *Cell[T] {
	c := Empty[T]()
	c.slot <- v
	return c
}

// Empty creates an empty cell.
func Empty[T any]() *Cell[T] {
	return &Cell[T]{slot: make(chan T, 1)}
}

// Take removes and returns the cell's value, leaving it empty.
// Blocks until the cell is full.
func (c *Cell[T]) Take() T {
	return <-c.slot
}

// Put stores v, leaving the cell full.
// Blocks until the cell is empty.
func (c *Cell[T]) Put(v T) {
	c.slot <- v
}

// Modify atomically replaces the cell's value with f applied to it.
// Blocks until the cell is full. f must not touch the cell itself.
func (c *Cell[T]) Modify(f func(T) T) {
	v := <-c.slot
	c.slot <- f(v)
}

// Read returns the cell's value without emptying it.
// Blocks until the cell is full.
func (c *Cell[T]) Read() T {
	v := <-c.slot
	c.slot <- v
	return v
}
