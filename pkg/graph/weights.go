package graph

import "fmt"

// WeightSpec names the edge attribute used as traversal cost, or the
// unweighted sentinel under which every edge costs 1.
type WeightSpec struct {
	attr string
}

// Unweighted is the constant-1 weight spec.
func Unweighted() WeightSpec { return WeightSpec{} }

// WeightAttribute selects the named numeric edge attribute as the cost.
func WeightAttribute(name string) WeightSpec { return WeightSpec{attr: name} }

// IsWeighted reports whether the spec names an attribute.
func (w WeightSpec) IsWeighted() bool { return w.attr != "" }

// Attribute returns the attribute name, or "" for the unweighted spec.
func (w WeightSpec) Attribute() string { return w.attr }

func (w WeightSpec) String() string {
	if w.attr == "" {
		return "unweighted"
	}
	return w.attr
}

// Weights resolves the spec against every edge once, returning costs
// indexed by edge position. The unweighted spec resolves to nil, which
// traversal reads as constant 1. An edge without the named attribute or
// with a negative value fails the whole resolution.
func (g *Graph) Weights(spec WeightSpec) ([]float64, error) {
	if !spec.IsWeighted() {
		return nil, nil
	}
	weights := make([]float64, len(g.edges))
	for i, e := range g.edges {
		w, ok := e.Attrs[spec.attr]
		if !ok {
			return nil, fmt.Errorf("graph: edge %d attribute %q: %w", e.ID, spec.attr, ErrMissingAttribute)
		}
		if w < 0 {
			return nil, fmt.Errorf("graph: edge %d attribute %q = %v: %w", e.ID, spec.attr, w, ErrNegativeWeight)
		}
		weights[i] = w
	}
	return weights, nil
}
