package catalog

import (
	"errors"
	"sync"

	"fieldready/pt-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmptyMessage is shown when no exercise matches the current filter.
const EmptyMessage = "No exercises match your search."

var ErrNotVisible = errors.New("exercise is not in the visible list")

// Target identifies where a click landed relative to the picker modal.
type Target int

const (
	// TargetOverlay is the dimmed area around the modal content.
	TargetOverlay Target = iota
	// TargetContent is anything inside the modal content area.
	TargetContent
)

// PickerView is the render output of a Picker.
type PickerView struct {
	Query        string            `json:"query"`
	Category     string            `json:"category"`
	Categories   []string          `json:"categories"`
	Exercises    []domain.Exercise `json:"exercises"`
	Empty        bool              `json:"empty"`
	EmptyMessage string            `json:"emptyMessage,omitempty"`
}

// Picker holds the transient state of an exercise picker over a catalog
// snapshot it does not own.
type Picker struct {
	mu         sync.Mutex
	catalog    []domain.Exercise
	categories []string
	query      Query

	onAdd   func(domain.Exercise)
	onClose func()
}

// NewPicker creates a picker. Either callback may be nil.
func NewPicker(exercises []domain.Exercise, onAdd func(domain.Exercise), onClose func()) *Picker {
	if onAdd == nil {
		onAdd = func(domain.Exercise) {}
	}
	if onClose == nil {
		onClose = func() {}
	}
	return &Picker{
		catalog:    exercises,
		categories: Categories(exercises),
		onAdd:      onAdd,
		onClose:    onClose,
	}
}

func (p *Picker) SetQuery(text string) {
	p.mu.Lock()
	p.query.Text = text
	p.mu.Unlock()
}

func (p *Picker) SetCategory(category string) {
	p.mu.Lock()
	p.query.Category = category
	p.mu.Unlock()
}

// Query returns the current filter state.
func (p *Picker) Query() Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// View renders the visible subset. An empty subset yields the explicit empty state.
func (p *Picker) View() PickerView {
	p.mu.Lock()
	q := p.query
	p.mu.Unlock()

	visible := Filter(p.catalog, q)
	v := PickerView{
		Query:      q.Text,
		Category:   q.Category,
		Categories: p.categories,
		Exercises:  visible,
	}
	if len(visible) == 0 {
		v.Empty = true
		v.EmptyMessage = EmptyMessage
	}
	return v
}

// Select invokes the add callback once with the visible exercise matching id.
// The picker stays open and its filter state is untouched.
func (p *Picker) Select(id primitive.ObjectID) (domain.Exercise, error) {
	for _, ex := range p.View().Exercises {
		if ex.ID == id {
			p.onAdd(ex)
			return ex, nil
		}
	}
	return domain.Exercise{}, ErrNotVisible
}

// Click handles a click on the modal. Only overlay clicks close the picker.
func (p *Picker) Click(target Target) {
	if target == TargetOverlay {
		p.onClose()
	}
}
