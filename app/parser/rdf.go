package parser

import (
	"encoding/xml"
	"time"

	"github.com/lysyi3m/syndic/app/rfcdate"
)

// extractRDF reads an <rdf:RDF> (RSS 1.0) document. Channel metadata and the
// items are siblings under the root, all in the root's default namespace.
func extractRDF(root *Node, _ time.Time) *Feed {
	ns := root.DefaultNamespace()
	name := func(local string) xml.Name {
		return xml.Name{Space: ns, Local: local}
	}

	channel := root.Element(name("channel"))

	feed := &Feed{
		Name:       textOf(channel.Element(name("title"))),
		WebURI:     textOf(channel.Element(name("link"))),
		Categories: textCategories(channel, ns),
		Items:      []Item{},
	}

	for _, i := range root.Elements(name("item")) {
		link := textOf(i.Element(name("link")))

		feed.Items = append(feed.Items, Item{
			ServerID:    coalesce(textOf(i.Element(name("guid"))), link),
			Title:       textOf(i.Element(name("title"))),
			WebURI:      link,
			Author:      textOf(i.Element(name("author"))),
			CommentsURI: textOf(i.Element(name("comments"))),
			Published:   rdfPublished(i.Element(name("pubDate"))),
			Content: coalesce(
				textOf(i.Element(xml.Name{Space: nsContent, Local: "encoded"})),
				textOf(i.Element(name("description"))),
			),
			Categories: textCategories(i, ns),
		})
	}

	return feed
}

// rdfPublished has no fallback: a missing or unreadable pubDate stays nil.
func rdfPublished(n *Node) *time.Time {
	if n == nil {
		return nil
	}
	t, err := rfcdate.Parse(textOf(n))
	if err != nil {
		return nil
	}
	return &t
}
