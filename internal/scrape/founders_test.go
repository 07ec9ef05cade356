package scrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/enrich-cli/internal/model"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func testScraper() *Scraper {
	return New(nil, 0, 0)
}

const founderCardsHTML = `
<html><body>
<nav><a href="https://www.linkedin.com/in/not-a-founder">Social</a></nav>
<section>
  <h2>Founders</h2>
  <div>
    <div>
      <h3>Jane Doe</h3>
      <p>Chief executive officer. Previously led payments infrastructure at BigBank.</p>
      <a href="https://www.linkedin.com/in/jane-doe">LinkedIn</a>
    </div>
    <div>
      <h3>John Roe</h3>
      <p>Studied robotics at MIT and worked at SpaceCo before starting Acme.</p>
      <a href="https://www.linkedin.com/in/john-roe">LinkedIn</a>
    </div>
  </div>
</section>
</body></html>`

func TestExtractFounders_SectionCards(t *testing.T) {
	doc := parseDoc(t, founderCardsHTML)

	got := testScraper().extractFounders(doc, "Acme")
	require.Len(t, got, 2)

	jane := got[0]
	assert.Equal(t, "Jane", jane.FirstName)
	assert.Equal(t, "Doe", jane.LastName)
	assert.Equal(t, "Chief Executive Officer", jane.Role)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe", jane.LinkedIn)
	assert.Contains(t, jane.Background, "Previously led payments")
	// Explicit role mention reads stronger than section membership.
	assert.InDelta(t, 0.8, jane.Confidence, 1e-9)

	john := got[1]
	assert.Equal(t, "John", john.FirstName)
	assert.Equal(t, "https://www.linkedin.com/in/john-roe", john.LinkedIn)
	assert.Contains(t, john.Background, "Studied robotics")
	assert.InDelta(t, 0.6, john.Confidence, 1e-9)
}

func TestExtractFounders_CardsDoNotShareLinks(t *testing.T) {
	// The second card has no profile link of its own; it must not inherit
	// the neighbor's and collapse both people onto one identity.
	html := `
<html><body>
<section>
  <h2>Founders</h2>
  <div>
    <div>
      <h3>Jane Doe</h3>
      <a href="https://www.linkedin.com/in/jane-doe">LinkedIn</a>
    </div>
    <div>
      <h3>John Roe</h3>
    </div>
  </div>
</section>
</body></html>`
	got := testScraper().extractFounders(parseDoc(t, html), "Acme")

	require.Len(t, got, 2)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe", got[0].LinkedIn)
	assert.Empty(t, got[1].LinkedIn)
}

func TestExtractFounders_SkipsCompanyNameAndLabels(t *testing.T) {
	html := `
<html><body>
<section>
  <h2>Team</h2>
  <div>
    <div><h3>Acme Robotics</h3></div>
    <div><h3>Jane Doe</h3></div>
  </div>
</section>
</body></html>`
	got := testScraper().extractFounders(parseDoc(t, html), "Acme Robotics")

	require.Len(t, got, 1)
	assert.Equal(t, "Jane", got[0].FirstName)
}

func TestExtractFounders_FreeTextAfterDeepHeading(t *testing.T) {
	// The heading sits too deep for the container walk, so names are picked
	// up from document order after it.
	html := `
<html><body>
<div><div><div><div><div><div><h2>Founders</h2></div></div></div></div></div></div>
<span>Jane Doe</span>
<span>John Roe</span>
</body></html>`
	got := testScraper().extractFounders(parseDoc(t, html), "Acme")

	require.Len(t, got, 2)
	assert.Equal(t, "Jane", got[0].FirstName)
	assert.Equal(t, "John", got[1].FirstName)
	assert.InDelta(t, 0.6, got[0].Confidence, 1e-9)
}

func TestExtractFounders_GlobalLinksLastResort(t *testing.T) {
	html := `
<html><body>
<nav><a href="https://www.linkedin.com/in/nav-person">Nav Person</a></nav>
<div>
  <a href="https://www.linkedin.com/in/ada-park">Ada Park</a>
</div>
<footer><a href="https://www.linkedin.com/in/footer-person">Footer Person</a></footer>
</body></html>`
	got := testScraper().extractFounders(parseDoc(t, html), "Acme")

	require.Len(t, got, 1)
	assert.Equal(t, "Ada", got[0].FirstName)
	assert.Equal(t, "Park", got[0].LastName)
	assert.Equal(t, "https://www.linkedin.com/in/ada-park", got[0].LinkedIn)
}

func TestExtractFounders_DuplicateObservationsMerge(t *testing.T) {
	// The same name showing up in two places folds into one record.
	html := `
<html><body>
<section>
  <h2>Founders</h2>
  <div>
    <div><h3>Jane Doe</h3></div>
    <div><h3>John Roe</h3></div>
    <div><span>Jane Doe</span></div>
  </div>
</section>
</body></html>`
	got := testScraper().extractFounders(parseDoc(t, html), "Acme")

	assert.Len(t, got, 2)
}

func TestNameShaped(t *testing.T) {
	for _, name := range []string{"Jane Doe", "Tomas Novak", "Mary-Jane O'Neil Watson"} {
		assert.True(t, nameShaped(name), "%q should be name shaped", name)
	}
	for _, text := range []string{
		"Jane", "Meet The Team", "Open Roles", "San Francisco", "United States",
		"jane doe", "Read More", "About Us And Friends",
	} {
		assert.False(t, nameShaped(text), "%q should not be name shaped", text)
	}
}

func TestExtractRole(t *testing.T) {
	assert.Equal(t, "CEO", extractRole("She is the CEO of Acme."))
	assert.Equal(t, "Chief Technology Officer", extractRole("serves as chief technology officer"))
	assert.Empty(t, extractRole("loves hiking and coffee"))
}

func TestFounderFromName(t *testing.T) {
	f := founderFromName("Maria de la Cruz")
	assert.Equal(t, model.FounderRecord{FirstName: "Maria", LastName: "de la Cruz"}, f)
}
