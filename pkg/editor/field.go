package editor

import (
	"math"
	"strconv"
	"strings"
)

// TextField buffers keystrokes for a free-text field until it loses focus.
type TextField struct {
	committed string
	draft     string
	editing   bool
}

// NewTextField creates a field showing value
func NewTextField(value string) *TextField {
	return &TextField{committed: value, draft: value}
}

// Input replaces the draft with the field's current text. Nothing is committed.
func (f *TextField) Input(text string) {
	f.draft = text
	f.editing = true
}

// Draft returns the text currently shown in the field
func (f *TextField) Draft() string {
	return f.draft
}

// Committed returns the last committed value
func (f *TextField) Committed() string {
	return f.committed
}

// IsDirty reports whether the draft differs from the committed value
func (f *TextField) IsDirty() bool {
	return f.draft != f.committed
}

// Commit makes the draft authoritative and reports whether it changed
func (f *TextField) Commit() (string, bool) {
	f.editing = false
	if f.draft == f.committed {
		return f.committed, false
	}
	f.committed = f.draft
	return f.committed, true
}

// Cancel discards the draft
func (f *TextField) Cancel() {
	f.draft = f.committed
	f.editing = false
}

// Sync adopts an externally committed value. An in-progress edit keeps its draft.
func (f *TextField) Sync(value string) {
	f.committed = value
	if !f.editing {
		f.draft = value
	}
}

// NumberField buffers keystrokes for a numeric field. Input that does not parse commits as 0.
type NumberField struct {
	committed float64
	draft     string
	editing   bool
}

// NewNumberField creates a field showing value
func NewNumberField(value float64) *NumberField {
	return &NumberField{committed: value, draft: FormatNumber(value)}
}

// Input replaces the draft with the field's current text
func (f *NumberField) Input(text string) {
	f.draft = text
	f.editing = true
}

// Draft returns the text currently shown in the field
func (f *NumberField) Draft() string {
	return f.draft
}

// Committed returns the last committed value
func (f *NumberField) Committed() float64 {
	return f.committed
}

// IsDirty reports whether committing the draft would change the value
func (f *NumberField) IsDirty() bool {
	return ParseNumber(f.draft) != f.committed
}

// Commit parses the draft and reports whether the committed value changed.
// The draft is normalized to the parsed value so "abc" reads back as "0".
func (f *NumberField) Commit() (float64, bool) {
	f.editing = false
	v := ParseNumber(f.draft)
	f.draft = FormatNumber(v)
	if v == f.committed {
		return v, false
	}
	f.committed = v
	return v, true
}

// Cancel discards the draft
func (f *NumberField) Cancel() {
	f.draft = FormatNumber(f.committed)
	f.editing = false
}

// Sync adopts an externally committed value. An in-progress edit keeps its draft.
func (f *NumberField) Sync(value float64) {
	f.committed = value
	if !f.editing {
		f.draft = FormatNumber(value)
	}
}

// SelectField is a discrete choice that commits as soon as it changes.
type SelectField[T ~string] struct {
	options []T
	value   T
}

// NewSelectField creates a selection over options showing value
func NewSelectField[T ~string](options []T, value T) *SelectField[T] {
	return &SelectField[T]{options: append([]T(nil), options...), value: value}
}

// Options returns the available choices
func (f *SelectField[T]) Options() []T {
	return append([]T(nil), f.options...)
}

// Value returns the current selection
func (f *SelectField[T]) Value() T {
	return f.value
}

// Select changes the selection and reports whether it changed.
// ok is false when v is not one of the options.
func (f *SelectField[T]) Select(v T) (changed bool, ok bool) {
	found := false
	for _, opt := range f.options {
		if opt == v {
			found = true
			break
		}
	}
	if !found {
		return false, false
	}
	if v == f.value {
		return false, true
	}
	f.value = v
	return true, true
}

// Sync adopts an externally committed value
func (f *SelectField[T]) Sync(v T) {
	f.value = v
}

// ParseNumber converts field text to a float. Empty, non-numeric and non-finite input yields 0.
func ParseNumber(text string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatNumber renders v the way numeric inputs display it
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
