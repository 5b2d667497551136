package scanner

import (
	"github.com/beevik/etree"

	"github.com/arthur-debert/linkify/pkg/errors"
)

// Fragment renders text as a paragraph of HTML with each linkified
// span wrapped in an anchor. Text outside matches is emitted as
// character data, so markup in the input comes out escaped.
func (s *Scanner) Fragment(text string) (string, error) {
	hits := s.Scan(text)

	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalEndTags = true
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true

	p := doc.CreateElement("p")
	pos := 0
	for _, h := range hits {
		if h.Match.Start > pos {
			p.CreateText(text[pos:h.Match.Start])
		}
		a := p.CreateElement("a")
		a.CreateAttr("href", h.URL)
		a.SetText(h.Match.Text)
		pos = h.Match.End
	}
	if pos < len(text) {
		p.CreateText(text[pos:])
	}

	out, err := doc.WriteToString()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to serialize fragment")
	}
	return out, nil
}
