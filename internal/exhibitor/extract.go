package exhibitor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrMalformedBlock is returned when a block selection does not wrap an element.
var ErrMalformedBlock = errors.New("malformed exhibitor block")

var (
	// Word characters are letters, numbers and underscore in any script.
	// Combining marks are not word characters.
	emailPattern = regexp.MustCompile(`[\p{L}\p{N}_.\-]+@[\p{L}\p{N}_.\-]+`)
	phonePattern = regexp.MustCompile(`\+?\p{Nd}[\p{Nd}\s\p{Zs}\-()]{5,}\p{Nd}`)
)

// Selectors locates the exhibitor container and its fields.
type Selectors struct {
	Block       string
	Name        string
	Description string
	Country     string
	Website     string
}

// DefaultSelectors matches the trade-fair participant listing markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Block:       "div.participant-item",
		Name:        "h2",
		Description: "p.description",
		Country:     "span.country",
		Website:     "a[href]",
	}
}

// Extractor pulls records out of a parsed listing page.
type Extractor struct {
	sel Selectors
}

// NewExtractor builds an Extractor. Empty field selectors fall back to defaults.
func NewExtractor(sel Selectors) *Extractor {
	def := DefaultSelectors()
	if sel.Block == "" {
		sel.Block = def.Block
	}
	if sel.Name == "" {
		sel.Name = def.Name
	}
	if sel.Description == "" {
		sel.Description = def.Description
	}
	if sel.Country == "" {
		sel.Country = def.Country
	}
	if sel.Website == "" {
		sel.Website = def.Website
	}
	return &Extractor{sel: sel}
}

// Blocks returns every exhibitor container in document order.
func (e *Extractor) Blocks(doc *goquery.Document) []*goquery.Selection {
	if doc == nil {
		return nil
	}
	var blocks []*goquery.Selection
	doc.Find(e.sel.Block).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, s)
	})
	return blocks
}

// Extract builds a Record from a single block. Missing sub-elements leave the
// corresponding field nil.
func (e *Extractor) Extract(block *goquery.Selection) (Record, error) {
	if block == nil || block.Length() == 0 {
		return Record{}, fmt.Errorf("empty selection: %w", ErrMalformedBlock)
	}
	if node := block.Get(0); node.Type != html.ElementNode {
		return Record{}, fmt.Errorf("node type %d: %w", node.Type, ErrMalformedBlock)
	}

	rec := Record{
		Name:        firstText(block, e.sel.Name),
		Description: firstText(block, e.sel.Description),
		Country:     firstText(block, e.sel.Country),
		Website:     firstAttr(block, e.sel.Website, "href"),
	}
	rec.Email, rec.Phone = ExtractContacts(FlattenText(block))
	return rec, nil
}

// ExtractContacts returns the first email-like and the first phone-like
// substring of text. The two searches are independent; a missing match is nil.
func ExtractContacts(text string) (email, phone *string) {
	if m := emailPattern.FindString(text); m != "" {
		email = ptr(m)
	}
	if m := phonePattern.FindString(text); m != "" {
		phone = ptr(m)
	}
	return email, phone
}

// FlattenText joins the trimmed, non-empty descendant text nodes of sel with
// single spaces. Script and style contents are skipped.
func FlattenText(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

func firstText(block *goquery.Selection, selector string) *string {
	m := block.Find(selector).First()
	if m.Length() == 0 {
		return nil
	}
	return ptr(strings.TrimSpace(m.Text()))
}

func firstAttr(block *goquery.Selection, selector, attr string) *string {
	m := block.Find(selector).First()
	v, ok := m.Attr(attr)
	if !ok {
		return nil
	}
	return ptr(strings.TrimSpace(v))
}
