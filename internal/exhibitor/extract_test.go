package exhibitor

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<html><body>
<div class="participant-item">
  <h2> Acme Bikes </h2>
  <p class="description">Frames and forks</p>
  <span class="country">Germany</span>
  <a href="  https://acme.example  ">Website</a>
  <div class="contact">Contact: Jane Doe, jane.doe@example.com, +49 69 1234 5678</div>
</div>
<div class="participant-item">
  <p class="description">No heading here</p>
  <script>var phone = "+1 555 000 0000";</script>
</div>
<div class="other-item"><h2>Ignored</h2></div>
</body></html>`

func mustDoc(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestBlocksSelectsContainersInOrder(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(DefaultSelectors())
	blocks := ex.Blocks(mustDoc(t, listingHTML))
	require.Len(t, blocks, 2)
	require.Contains(t, blocks[0].Text(), "Acme Bikes")
	require.Contains(t, blocks[1].Text(), "No heading here")

	require.Empty(t, ex.Blocks(mustDoc(t, "<html><body><p>empty</p></body></html>")))
	require.Nil(t, ex.Blocks(nil))
}

func TestExtractFieldMapping(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(Selectors{})
	blocks := ex.Blocks(mustDoc(t, listingHTML))
	require.Len(t, blocks, 2)

	rec, err := ex.Extract(blocks[0])
	require.NoError(t, err)
	require.Equal(t, "Acme Bikes", *rec.Name)
	require.Equal(t, "Frames and forks", *rec.Description)
	require.Equal(t, "Germany", *rec.Country)
	require.Equal(t, "https://acme.example", *rec.Website)
	require.Equal(t, "jane.doe@example.com", *rec.Email)
	require.Equal(t, "+49 69 1234 5678", *rec.Phone)
	require.Zero(t, rec.ID)
}

func TestExtractMissingHeadingLeavesNameNil(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(DefaultSelectors())
	blocks := ex.Blocks(mustDoc(t, listingHTML))

	rec, err := ex.Extract(blocks[1])
	require.NoError(t, err)
	require.Nil(t, rec.Name)
	require.Nil(t, rec.Country)
	require.Nil(t, rec.Website)
	require.Nil(t, rec.Email)
	require.Nil(t, rec.Phone, "script text must not feed contact extraction")
	require.Equal(t, "No heading here", *rec.Description)
}

func TestExtractRejectsMalformedSelection(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(DefaultSelectors())
	doc := mustDoc(t, listingHTML)

	_, err := ex.Extract(doc.Find("section.missing"))
	require.True(t, errors.Is(err, ErrMalformedBlock))

	_, err = ex.Extract(nil)
	require.ErrorIs(t, err, ErrMalformedBlock)

	text := doc.Find("h2").First().Contents()
	_, err = ex.Extract(text)
	require.ErrorIs(t, err, ErrMalformedBlock)
}

func TestExtractCustomSelectors(t *testing.T) {
	t.Parallel()

	markup := `<ul><li class="exh"><h3>Velo AG</h3><em class="land">CH</em>
<a name="anchor">no href</a><a href="https://velo.example">site</a></li></ul>`
	ex := NewExtractor(Selectors{Block: "li.exh", Name: "h3", Country: "em.land"})
	blocks := ex.Blocks(mustDoc(t, markup))
	require.Len(t, blocks, 1)

	rec, err := ex.Extract(blocks[0])
	require.NoError(t, err)
	require.Equal(t, "Velo AG", *rec.Name)
	require.Equal(t, "CH", *rec.Country)
	require.Equal(t, "https://velo.example", *rec.Website)
	require.Nil(t, rec.Description)
}

func TestExtractContacts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		wantEmail string
		wantPhone string
	}{
		{
			name:      "example block",
			text:      "Contact: Jane Doe, jane.doe@example.com, +49 69 1234 5678",
			wantEmail: "jane.doe@example.com",
			wantPhone: "+49 69 1234 5678",
		},
		{
			name:      "first email wins",
			text:      "sales@first.example or support@second.example",
			wantEmail: "sales@first.example",
		},
		{
			name:      "phone with parentheses and hyphens",
			text:      "Call (030) 123-4567 today",
			wantPhone: "030) 123-4567",
		},
		{
			name: "short numbers are not phones",
			text: "Hall 12, booth 4711",
		},
		{
			name:      "unicode local part",
			text:      "Write to jürgen@rad.example",
			wantEmail: "jürgen@rad.example",
		},
		{
			name: "combining mark breaks the local part",
			text: "cafe\u0301@x.com",
		},
		{
			name: "nothing to find",
			text: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			email, phone := ExtractContacts(tt.text)
			if tt.wantEmail == "" {
				require.Nil(t, email)
			} else {
				require.NotNil(t, email)
				require.Equal(t, tt.wantEmail, *email)
			}
			if tt.wantPhone == "" {
				require.Nil(t, phone)
			} else {
				require.NotNil(t, phone)
				require.Equal(t, tt.wantPhone, *phone)
			}
		})
	}
}

func TestExtractNestedHeadingKeepsInnerWhitespace(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(DefaultSelectors())
	blocks := ex.Blocks(mustDoc(t, `<div class="participant-item"><h2> Acme
  <b>Bikes</b> </h2></div>`))
	require.Len(t, blocks, 1)

	rec, err := ex.Extract(blocks[0])
	require.NoError(t, err)
	require.Equal(t, "Acme\n  Bikes", *rec.Name)
}

func TestFlattenText(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<div id="b">  Hello
  <b>big</b><!-- hidden --> <i> world </i><style>.x{}</style></div>`)
	require.Equal(t, "Hello big world", FlattenText(doc.Find("#b")))
	require.Empty(t, FlattenText(nil))
}

func TestRecordValues(t *testing.T) {
	t.Parallel()

	rec := Record{Name: ptr("Acme"), Phone: ptr("+1 234 567")}
	require.Equal(t, []any{"Acme", nil, nil, nil, nil, "+1 234 567"}, rec.Values())
	require.Len(t, Columns, len(rec.Values()))
}
