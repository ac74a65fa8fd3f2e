package renderer

// Unwind collects cleanups to run in reverse order when a multi step
// construction fails part way.
type Unwind []func()

func (u *Unwind) Add(cleanup func()) {
	*u = append(*u, cleanup)
}

// Unwind runs the cleanups, newest first.
func (u *Unwind) Unwind() {
	for i := len(*u) - 1; i >= 0; i-- {
		(*u)[i]()
	}
	*u = (*u)[:0]
}

// Discard forgets the cleanups once construction succeeded.
func (u *Unwind) Discard() {
	*u = (*u)[:0]
}
