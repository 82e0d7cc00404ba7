// Package dom models the slice of page markup the expense pipelines
// interact with: elements addressable by their stable test identifier,
// their values, data attributes, classes and injected markup. The real
// rendering lives in the external view layer; this package only carries
// the contract both sides agree on.
package dom

// Element is a single addressable node.
type Element struct {
	value   string
	attrs   map[string]string
	classes map[string]bool
	styles  map[string]string
	html    string
	width   int
}

// NewElement creates an empty element.
func NewElement() *Element {
	return &Element{
		attrs:   make(map[string]string),
		classes: make(map[string]bool),
		styles:  make(map[string]string),
	}
}

// Value returns the element's current value (form inputs).
func (e *Element) Value() string { return e.value }

// SetValue sets the element's value.
func (e *Element) SetValue(v string) { e.value = v }

// Attr returns the named attribute, or "" when absent.
func (e *Element) Attr(name string) string { return e.attrs[name] }

// SetAttr sets the named attribute.
func (e *Element) SetAttr(name, value string) { e.attrs[name] = value }

// HasClass reports whether the element carries the class.
func (e *Element) HasClass(name string) bool { return e.classes[name] }

// AddClass adds a class to the element.
func (e *Element) AddClass(name string) { e.classes[name] = true }

// Style returns the named style property, or "" when unset.
func (e *Element) Style(name string) string { return e.styles[name] }

// SetStyle sets a style property.
func (e *Element) SetStyle(name, value string) { e.styles[name] = value }

// HTML returns the element's injected inner markup.
func (e *Element) HTML() string { return e.html }

// SetHTML replaces the element's inner markup.
func (e *Element) SetHTML(markup string) { e.html = markup }

// Width returns the element's rendered width in pixels.
func (e *Element) Width() int { return e.width }

// SetWidth sets the element's rendered width in pixels.
func (e *Element) SetWidth(w int) { e.width = w }

// Document is a collection of elements keyed by test identifier.
type Document struct {
	elements map[string]*Element
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{elements: make(map[string]*Element)}
}

// QueryTestID returns the element registered under the test identifier,
// or nil when the page does not contain it.
func (d *Document) QueryTestID(testID string) *Element {
	return d.elements[testID]
}

// SetElement registers an element under a test identifier, replacing any
// previous one.
func (d *Document) SetElement(testID string, el *Element) {
	d.elements[testID] = el
}

// SetValue is a convenience that registers a plain element holding a
// value, the shape form fields arrive in.
func (d *Document) SetValue(testID, value string) {
	el := d.elements[testID]
	if el == nil {
		el = NewElement()
		d.elements[testID] = el
	}
	el.SetValue(value)
}
