package pipeline

// Seq is a lazy, single-pass sequence of values. Next returns the next
// element until the sequence is exhausted or an element fails to produce.
// A Seq is not restartable: once consumed (or failed) it stays that way.
type Seq struct {
	next func() (any, bool, error)
	done bool
	err  error
}

// NewSeq wraps a pull function into a Seq. The function returns the next
// element and true, or false once the sequence is exhausted.
func NewSeq(next func() (any, bool, error)) *Seq {
	return &Seq{next: next}
}

// Next pulls the next element. ok is false once the sequence is exhausted or
// a previous pull failed; a pull error is sticky and returned from every
// subsequent call.
func (s *Seq) Next() (value any, ok bool, err error) {
	if s.done {
		return nil, false, s.err
	}
	value, ok, err = s.next()
	if err != nil {
		s.done = true
		s.err = err
		return nil, false, err
	}
	if !ok {
		s.done = true
	}
	return value, ok, nil
}

// Collect drains the remainder of the sequence into a slice.
func (s *Seq) Collect() ([]any, error) {
	var elems []any
	for {
		value, ok, err := s.Next()
		if err != nil {
			return elems, err
		}
		if !ok {
			return elems, nil
		}
		elems = append(elems, value)
	}
}
