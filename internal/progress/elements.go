package progress

import (
	"errors"
	"fmt"
)

// ErrMissingElement is returned when the reporter is bound to an incomplete element set.
var ErrMissingElement = errors.New("progress: missing ui element")

// Container is the overlay panel holding the other elements.
type Container struct {
	Opacity float32 // 1 = fully visible
	Removed bool    // Once removed the container is never drawn again
	Failed  bool
}

// Text is a single line label.
type Text struct {
	Value string
}

// Bar is a progress control with a value in [0, 100].
type Bar struct {
	Value float64
}

// Elements is the set of UI elements the reporter writes to.
type Elements struct {
	Container   *Container
	CurrentText *Text // Name of the item being loaded
	Bar         *Bar
	PercentText *Text // Completion or failure message
}

// NewElements returns a fully populated element set.
func NewElements() Elements {
	return Elements{
		Container:   &Container{Opacity: 1},
		CurrentText: &Text{},
		Bar:         &Bar{},
		PercentText: &Text{},
	}
}

// validate reports the first absent element.
func (e Elements) validate() error {
	switch {
	case e.Container == nil:
		return fmt.Errorf("%w: progress-container", ErrMissingElement)
	case e.CurrentText == nil:
		return fmt.Errorf("%w: current-text", ErrMissingElement)
	case e.Bar == nil:
		return fmt.Errorf("%w: progress-bar", ErrMissingElement)
	case e.PercentText == nil:
		return fmt.Errorf("%w: progress-text", ErrMissingElement)
	}
	return nil
}
