package hmm

// alphabet maps between string labels and integer IDs.
type alphabet struct {
	toID  map[string]int
	toStr []string
}

// alphabetOf builds an alphabet from labels in order. It reports false when
// a label repeats.
func alphabetOf(labels []string) (*alphabet, bool) {
	a := &alphabet{
		toID:  make(map[string]int, len(labels)),
		toStr: make([]string, 0, len(labels)),
	}
	for _, s := range labels {
		if _, ok := a.toID[s]; ok {
			return nil, false
		}
		a.add(s)
	}
	return a, true
}

// add adds a string to the alphabet if not already present, returns its ID.
func (a *alphabet) add(s string) int {
	if id, ok := a.toID[s]; ok {
		return id
	}
	id := len(a.toStr)
	a.toID[s] = id
	a.toStr = append(a.toStr, s)
	return id
}

// get returns the ID for a string, or -1 if not found.
func (a *alphabet) get(s string) int {
	if id, ok := a.toID[s]; ok {
		return id
	}
	return -1
}

func (a *alphabet) size() int {
	return len(a.toStr)
}
