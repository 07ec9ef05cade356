package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `
<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.acme.io%2Fabout&rut=abc">Acme | About Us</a>
  <div class="result__snippet">Acme was founded in 2023 by Jane Doe and John Roe.</div>
</div>
<div class="result">
  <a class="result__a" href="https://techcrunch.com/acme-seed-round">Acme raises $1.5M seed</a>
  <div class="result__snippet">The startup announced its seed round today.</div>
</div>
<div class="result">
  <a class="result__a" href=""></a>
</div>
</body></html>`

func TestParseResultsHTML_ExtractsResults(t *testing.T) {
	got, err := ParseResultsHTML(resultsPage)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Acme | About Us", got[0].Title)
	assert.Equal(t, "https://www.acme.io/about", got[0].URL)
	assert.Equal(t, "Acme was founded in 2023 by Jane Doe and John Roe.", got[0].Snippet)

	assert.Equal(t, "Acme raises $1.5M seed", got[1].Title)
	assert.Equal(t, "https://techcrunch.com/acme-seed-round", got[1].URL)
}

func TestParseResultsHTML_NoResults(t *testing.T) {
	got, err := ParseResultsHTML(`<html><body><p>No results.</p></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCleanRedirect(t *testing.T) {
	assert.Equal(t, "https://www.acme.io/", cleanRedirect("//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.acme.io%2F"))
	assert.Equal(t, "https://plain.example.com/page", cleanRedirect("https://plain.example.com/page"))
	assert.Equal(t, "", cleanRedirect(""))
}
