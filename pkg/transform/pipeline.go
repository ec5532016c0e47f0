package transform

import "fmt"

// Pipeline is itself a Transform.
type Pipeline struct {
	transforms []Transform
}

// NewPipeline requires at least one transform.
func NewPipeline(transforms ...Transform) (*Pipeline, error) {
	if len(transforms) == 0 {
		return nil, ErrEmptyPipeline
	}
	s := make([]Transform, len(transforms))
	copy(s, transforms)
	return &Pipeline{transforms: s}, nil
}

func (p *Pipeline) Len() int { return len(p.transforms) }

// Apply runs the transforms in forward order.
func (p *Pipeline) Apply(data []byte) ([]byte, error) {
	var err error
	current := data
	for i, t := range p.transforms {
		current, err = t.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("apply: transform %d (%T) failed: %w", i, t, err)
		}
	}
	return current, nil
}

// Reverse runs the transforms backwards, undoing Apply.
func (p *Pipeline) Reverse(data []byte) ([]byte, error) {
	var err error
	current := data
	for i := len(p.transforms) - 1; i >= 0; i-- {
		t := p.transforms[i]
		current, err = t.Reverse(current)
		if err != nil {
			return nil, fmt.Errorf("reverse: transform %d (%T) failed: %w", i, t, err)
		}
	}
	return current, nil
}
