package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rdfFixture = `<?xml version="1.0"?>
<rdf:RDF
  xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
  xmlns:content="http://purl.org/rss/1.0/modules/content/"
  xmlns="http://purl.org/rss/1.0/">
  <channel rdf:about="https://example.net/">
    <title>RDF Feed</title>
    <link>https://example.net/</link>
    <description>An RSS 1.0 feed</description>
  </channel>
  <item rdf:about="https://example.net/1">
    <title>Dated</title>
    <link>https://example.net/1</link>
    <description>Summary one</description>
    <content:encoded>Body one</content:encoded>
    <pubDate>Sat, 07 Sep 2002 09:42:31 GMT</pubDate>
    <category>rdf</category>
  </item>
  <item rdf:about="https://example.net/2">
    <title>Undated</title>
    <link>https://example.net/2</link>
    <guid>urn:example:2</guid>
    <description>Summary two</description>
  </item>
  <item rdf:about="https://example.net/3">
    <title>Bad date</title>
    <link>https://example.net/3</link>
    <pubDate>never</pubDate>
  </item>
</rdf:RDF>`

func TestExtractRDFFeed(t *testing.T) {
	feed, err := newTestParser().Run(rdfFixture)
	require.NoError(t, err)

	assert.Equal(t, "RDF Feed", feed.Name)
	assert.Equal(t, "https://example.net/", feed.WebURI)
	assert.Empty(t, feed.CanonicalURI)
	require.Len(t, feed.Items, 3)

	first := feed.Items[0]
	assert.Equal(t, "https://example.net/1", first.ServerID)
	assert.Equal(t, "Dated", first.Title)
	assert.Equal(t, "Body one", first.Content)
	assert.Equal(t, []Category{{Term: "rdf"}}, first.Categories)
	require.NotNil(t, first.Published)
	assert.True(t, time.Date(2002, 9, 7, 9, 42, 31, 0, time.UTC).Equal(*first.Published))
}

func TestExtractRDFWithoutPubDateIsNil(t *testing.T) {
	feed, err := newTestParser().Run(rdfFixture)
	require.NoError(t, err)

	undated := feed.Items[1]
	assert.Nil(t, undated.Published)
	assert.Equal(t, "urn:example:2", undated.ServerID)
	assert.Equal(t, "Summary two", undated.Content)
}

func TestExtractRDFUnparsablePubDateIsNil(t *testing.T) {
	feed, err := newTestParser().Run(rdfFixture)
	require.NoError(t, err)
	assert.Nil(t, feed.Items[2].Published)
}

func TestExtractRDFWithoutItems(t *testing.T) {
	doc := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns="http://purl.org/rss/1.0/">
<channel><title>Quiet</title></channel>
</rdf:RDF>`

	feed, err := newTestParser().Run(doc)
	require.NoError(t, err)
	assert.Equal(t, "Quiet", feed.Name)
	assert.NotNil(t, feed.Items)
	assert.Empty(t, feed.Items)
}
