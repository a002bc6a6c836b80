// Package view renders the server's HTML pages.
package view

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Endpoint describes one API route for the index page.
type Endpoint struct {
	Method      string
	Path        string
	Description string
	Auth        bool
}

// IndexPage lists the API endpoints.
func IndexPage(endpoints []Endpoint) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>TaskFlow API</title>
</head>
<body>
<h1>TaskFlow API</h1>
<p>Send <code>Authorization: Bearer &lt;token&gt;</code> on routes marked as authenticated.</p>
<table>
<thead><tr><th>Method</th><th>Path</th><th>Description</th><th>Auth</th></tr></thead>
<tbody>
`); err != nil {
			return err
		}
		for _, e := range endpoints {
			auth := ""
			if e.Auth {
				auth = "yes"
			}
			if _, err := fmt.Fprintf(w, "<tr><td>%s</td><td><code>%s</code></td><td>%s</td><td>%s</td></tr>\n",
				templ.EscapeString(e.Method),
				templ.EscapeString(e.Path),
				templ.EscapeString(e.Description),
				auth,
			); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</tbody>\n</table>\n</body>\n</html>\n")
		return err
	})
}
