// Package templates holds the templ components served by the HTTP
// surface. The index page is a self-contained static page that talks to
// the JSON API with fetch.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Stock Advisor</title>
  <style>
    body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; color: #1a202c; }
    h1 { font-size: 1.5rem; }
    form { display: flex; gap: .5rem; margin: 1.5rem 0; }
    input[type=text] { flex: 1; padding: .6rem; border: 1px solid #cbd5e0; border-radius: 6px; font-size: 1rem; }
    button { padding: .6rem 1.2rem; border: none; border-radius: 6px; background: #2b6cb0; color: #fff; font-size: 1rem; cursor: pointer; }
    button:disabled { background: #a0aec0; }
    .card { border: 1px solid #e2e8f0; border-radius: 8px; padding: 1rem; margin: .75rem 0; }
    .card h3 { margin: 0 0 .25rem; font-size: 1.05rem; }
    .card .ticker { color: #2b6cb0; font-weight: 600; }
    .error { color: #c53030; }
    .muted { color: #718096; font-size: .9rem; }
  </style>
</head>
<body>
  <h1>Stock Advisor</h1>
  <p class="muted">Describe your investment goal in plain language, for example
  &quot;safe dividend stocks under 100&quot; or &quot;undervalued indian growth stocks&quot;.</p>
  <form id="query-form">
    <input type="text" id="query" placeholder="What are you looking for?" required>
    <button type="submit" id="submit">Recommend</button>
  </form>
  <div id="results"></div>
  <script>
    const form = document.getElementById('query-form');
    const results = document.getElementById('results');
    const submit = document.getElementById('submit');

    form.addEventListener('submit', async (e) => {
      e.preventDefault();
      submit.disabled = true;
      results.innerHTML = '<p class="muted">Analyzing candidates, this can take a minute&hellip;</p>';
      try {
        const resp = await fetch('/api/recommendations', {
          method: 'POST',
          headers: { 'Content-Type': 'application/json' },
          body: JSON.stringify({ query: document.getElementById('query').value })
        });
        const data = await resp.json();
        if (!resp.ok) {
          results.innerHTML = '<p class="error">' + (data.error || 'Request failed') + '</p>';
          return;
        }
        results.innerHTML = data.map(rec =>
          '<div class="card"><h3><span class="ticker">' + rec.ticker + '</span> ' +
          rec.company_name + '</h3><p>' + rec.reason + '</p></div>'
        ).join('');
      } catch (err) {
        results.innerHTML = '<p class="error">' + err + '</p>';
      } finally {
        submit.disabled = false;
      }
    });
  </script>
</body>
</html>
`

// Index returns the main application page
func Index() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, indexHTML)
		return err
	})
}
