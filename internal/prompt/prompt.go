// Package prompt holds the instruction templates that drive the language
// model. Each template declares its slots up front and is validated at
// construction, so a missing placeholder is a startup panic rather than a
// malformed prompt at request time.
package prompt

import (
	"fmt"
	"strings"
)

// Template is a named instruction template with enumerated slots.
type Template struct {
	name  string
	body  string
	slots []string
}

// New creates a Template and verifies every declared slot appears in the
// body as {{slot}}.
func New(name, body string, slots ...string) (*Template, error) {
	for _, slot := range slots {
		if !strings.Contains(body, placeholder(slot)) {
			return nil, fmt.Errorf("template %q: body is missing slot %q", name, slot)
		}
	}
	return &Template{name: name, body: body, slots: slots}, nil
}

// MustNew is New for package-level template construction.
func MustNew(name, body string, slots ...string) *Template {
	t, err := New(name, body, slots...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the template name.
func (t *Template) Name() string { return t.name }

// Render fills every slot. All declared slots must be supplied.
func (t *Template) Render(values map[string]string) (string, error) {
	out := t.body
	for _, slot := range t.slots {
		v, ok := values[slot]
		if !ok {
			return "", fmt.Errorf("template %q: no value for slot %q", t.name, slot)
		}
		out = strings.ReplaceAll(out, placeholder(slot), v)
	}
	return out, nil
}

func placeholder(slot string) string {
	return "{{" + slot + "}}"
}
