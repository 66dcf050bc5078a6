package sse

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
)

// Render renders a component to a string for an SSE payload
func Render(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// OOB marks a fragment's root element for an out-of-band swap. The fragment
// must start with an element that carries an id.
func OOB(html string) string {
	for i := 0; i < len(html); i++ {
		if html[i] == '>' || html[i] == ' ' {
			return html[:i] + ` hx-swap-oob="true"` + html[i:]
		}
	}
	return html
}
