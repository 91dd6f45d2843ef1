package view

import (
	"fmt"
	"strings"
	"sync"
)

// Kind is the closed set of widget categories the layout engine knows about.
// Platform defaults (gaps, baselines) are keyed on it.
type Kind int

const (
	KindUnknown Kind = iota
	KindContainer
	KindLabel
	KindTextField
	KindTextArea
	KindButton
	KindList
	KindTable
	KindScrollPane
	KindImage
	KindPanel
	KindComboBox
	KindSlider
	KindSpinner
	KindProgressBar
	KindTree
	KindCheckBox
	KindScrollBar
	KindSeparator
	KindTabbedPane
)

var kindNames = [...]string{
	KindUnknown:     "unknown",
	KindContainer:   "container",
	KindLabel:       "label",
	KindTextField:   "text_field",
	KindTextArea:    "text_area",
	KindButton:      "button",
	KindList:        "list",
	KindTable:       "table",
	KindScrollPane:  "scroll_pane",
	KindImage:       "image",
	KindPanel:       "panel",
	KindComboBox:    "combo_box",
	KindSlider:      "slider",
	KindSpinner:     "spinner",
	KindProgressBar: "progress_bar",
	KindTree:        "tree",
	KindCheckBox:    "check_box",
	KindScrollBar:   "scroll_bar",
	KindSeparator:   "separator",
	KindTabbedPane:  "tabbed_pane",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind accepts the names produced by String. Dashes and spaces are
// treated like underscores and case is ignored.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for k, name := range kindNames {
		if name == norm {
			return Kind(k), nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown component kind %q", s)
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i)
	}
	return out
}

// KindCache remembers the kind assigned to each widget identity so that
// classification runs once per widget.
type KindCache struct {
	mu    sync.Mutex
	kinds map[any]Kind
}

// Lookup returns the cached kind for id, calling assign on first use.
// id must be comparable.
func (c *KindCache) Lookup(id any, assign func() Kind) Kind {
	c.mu.Lock()
	defer c.mu.Unlock()

	if k, ok := c.kinds[id]; ok {
		return k
	}
	k := KindUnknown
	if assign != nil {
		k = assign()
	}
	if c.kinds == nil {
		c.kinds = make(map[any]Kind)
	}
	c.kinds[id] = k
	return k
}

// Forget drops the cached kind for id.
func (c *KindCache) Forget(id any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.kinds, id)
}

// Len returns the number of cached identities.
func (c *KindCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.kinds)
}
