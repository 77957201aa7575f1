package document

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ABCurado/eu-parliment-votes-sdk/internal/votes"
	"github.com/ABCurado/eu-parliment-votes-sdk/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	textStartMarker = "The European Parliament"
	textEndMarker   = "Instructs its President to forward this resolution"
)

// Source fetches documents from the document site.
type Source interface {
	votes.DocumentFetcher
	DocumentUrl(id string) string
}

type Document struct {
	ID   string
	Kind Kind
	Url  string
	// Text is the resolution body, from its opening words up to the closing
	// forwarding instruction.
	Text string
}

// Fetch downloads the English rendering of a document and extracts its text.
func Fetch(ctx context.Context, source Source, id string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("%w: empty document id", votes.ErrInvalidArgument)
	}

	url := source.DocumentUrl(id)
	status, body, err := source.Fetch(ctx, url)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %w", votes.ErrFetchFailure, url, err)
	}
	if status < 200 || status >= 300 {
		return Document{}, &votes.FetchError{Status: status, Url: url}
	}

	text, err := ExtractText(body)
	if err != nil {
		return Document{}, err
	}
	return Document{
		ID:   id,
		Kind: Classify(id),
		Url:  url,
		Text: text,
	}, nil
}

// ExtractText returns the visible page text trimmed to the resolution body.
// When a marker is missing that side is left untrimmed.
func ExtractText(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}
	doc.Find("script, style").Remove()

	var text strings.Builder
	for _, node := range doc.Find("body").Nodes {
		text.WriteString(htmlutil.GetText(node))
		text.WriteString(" ")
	}
	return trim(htmlutil.CleanText(text.String())), nil
}

func trim(text string) string {
	start := strings.Index(text, textStartMarker)
	if start >= 0 {
		text = text[start:]
	}
	end := strings.Index(text, textEndMarker)
	if end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}
