package stream

// EventCollection holds the events of one batch in delivery order. The
// results of its methods are the concatenation of the per-event results,
// files reported by several events are not de-duplicated.
type EventCollection []*Event

// Paths returns the directory of each event.
func (c EventCollection) Paths() []string {
	paths := make([]string, 0, len(c))
	for _, e := range c {
		paths = append(paths, e.Path)
	}

	return paths
}

func (c EventCollection) collect(fn func(*Event) ([]string, error)) ([]string, error) {
	var all []string

	for _, e := range c {
		files, err := fn(e)
		if err != nil {
			return nil, err
		}

		all = append(all, files...)
	}

	return all, nil
}

// Files returns the current files of all events.
func (c EventCollection) Files() ([]string, error) {
	return c.collect((*Event).Files)
}

// ModifiedFiles returns the modified files of all events.
func (c EventCollection) ModifiedFiles() ([]string, error) {
	return c.collect((*Event).ModifiedFiles)
}

// DeletedFiles returns the deleted files of all events. In timestamp mode,
// ErrUnsupported is returned.
func (c EventCollection) DeletedFiles() ([]string, error) {
	return c.collect((*Event).DeletedFiles)
}
