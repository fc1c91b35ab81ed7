package storage

// ListOptions narrows an iteration. `Cursor` is the inclusive key to start
// from; a zero `Limit` means no limit.
type ListOptions struct {
	Reverse bool
	Cursor  []byte
	Limit   uint64
}

func (o *ListOptions) normalize() ListOptions {
	if o == nil {
		return ListOptions{}
	}

	return *o
}
