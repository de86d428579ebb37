// Package palette offers one draggable token per registered node kind.
//
// The palette does no validation: a drag carries only the kind identifier and
// the graph store decides whether a node of that kind can be created.
package palette

import (
	"strings"

	"github.com/dshills/logicflow/pkg/graph"
)

// DragFormat is the data-transfer key under which the kind travels
const DragFormat = "application/reactflow"

// EffectMove is the only drag effect the palette allows
const EffectMove = "move"

// Token is one draggable entry
type Token struct {
	Kind        graph.Kind
	Label       string
	Description string
}

// DragPayload is what a drag start puts on the data-transfer channel
type DragPayload struct {
	Format        string
	Data          string
	EffectAllowed string
}

// Kind returns the kind carried by the payload
func (p DragPayload) Kind() graph.Kind {
	return graph.Kind(p.Data)
}

// Palette manages token selection with search filtering
type Palette struct {
	tokens        []Token
	selectedIndex int
	filterText    string
}

// New creates a palette with a token for every kind in registry, in registration order.
// A nil registry uses graph.DefaultRegistry().
func New(registry *graph.Registry) *Palette {
	if registry == nil {
		registry = graph.DefaultRegistry()
	}
	specs := registry.Specs()
	tokens := make([]Token, 0, len(specs))
	for _, spec := range specs {
		label := spec.DisplayName
		if label == "" {
			label = string(spec.Kind)
		}
		tokens = append(tokens, Token{
			Kind:        spec.Kind,
			Label:       label,
			Description: spec.Description,
		})
	}
	return &Palette{tokens: tokens}
}

// Tokens returns every token regardless of the filter
func (p *Palette) Tokens() []Token {
	return append([]Token(nil), p.tokens...)
}

// Filter updates the search filter and returns the matching tokens.
// Matching is a case-insensitive substring test on the label and kind.
func (p *Palette) Filter(text string) []Token {
	p.filterText = text

	if text == "" {
		return p.Tokens()
	}

	lower := strings.ToLower(text)
	filtered := []Token{}
	for _, tok := range p.tokens {
		if strings.Contains(strings.ToLower(tok.Label), lower) ||
			strings.Contains(string(tok.Kind), lower) {
			filtered = append(filtered, tok)
		}
	}

	if p.selectedIndex >= len(filtered) {
		p.selectedIndex = 0
	}
	return filtered
}

// Next moves the selection forward, wrapping around
func (p *Palette) Next() {
	filtered := p.Filter(p.filterText)
	if len(filtered) == 0 {
		return
	}
	p.selectedIndex = (p.selectedIndex + 1) % len(filtered)
}

// Previous moves the selection backward, wrapping around
func (p *Palette) Previous() {
	filtered := p.Filter(p.filterText)
	if len(filtered) == 0 {
		return
	}
	p.selectedIndex--
	if p.selectedIndex < 0 {
		p.selectedIndex = len(filtered) - 1
	}
}

// Selected returns the highlighted token. ok is false when the filter matches nothing.
func (p *Palette) Selected() (Token, bool) {
	filtered := p.Filter(p.filterText)
	if len(filtered) == 0 {
		return Token{}, false
	}
	return filtered[p.selectedIndex], true
}

// DragStart tags a drag of kind. Only the kind identifier is carried.
func (p *Palette) DragStart(kind graph.Kind) DragPayload {
	return DragPayload{
		Format:        DragFormat,
		Data:          string(kind),
		EffectAllowed: EffectMove,
	}
}

// DragSelected starts a drag of the highlighted token
func (p *Palette) DragSelected() (DragPayload, bool) {
	tok, ok := p.Selected()
	if !ok {
		return DragPayload{}, false
	}
	return p.DragStart(tok.Kind), true
}
