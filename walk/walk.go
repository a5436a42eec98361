// Package walk models the paths ("walks") that reads take through a sequence
// graph: an ordered list of oriented node visits, named after the read (or
// closure) that produced them.
package walk

import "github.com/grailbio/graphasm/gfa"

// Step is one oriented visit to a graph node along a walk.
type Step = gfa.NodePos

// Walk is a named, ordered traversal of oriented graph nodes.
type Walk struct {
	Name  string
	Steps []Step
}

// Reverse returns the walk traversed in the opposite direction, with every
// step's orientation flipped.
func (w Walk) Reverse() Walk {
	steps := make([]Step, len(w.Steps))
	for i, s := range w.Steps {
		steps[len(steps)-1-i] = s.Reverse()
	}
	return Walk{Name: w.Name, Steps: steps}
}

// Len reports the number of steps in the walk.
func (w Walk) Len() int { return len(w.Steps) }

// Subpath returns the half-open step range [from, to) as a new Walk that
// keeps the original walk's name.
func (w Walk) Subpath(from, to int) Walk {
	steps := append([]Step(nil), w.Steps[from:to]...)
	return Walk{Name: w.Name, Steps: steps}
}
