package models

// Paper is a knowledge item sourced from a paper repository (arXiv and
// friends). It additionally carries a lazily-fetched PDF reference: the
// record itself is stored immediately, the PDF only when storage processing
// finds it absent.
type Paper struct {
	KnowledgeItem

	ArxivID     string   `json:"arxiv_id,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	URL         string   `json:"url,omitempty"`
	PDFURL      string   `json:"pdf_url,omitempty"`
	PublishedAt string   `json:"published_date,omitempty"`
}

// PrimaryID prefers the external source ID so re-ingesting the same paper
// lands on the same files.
func (p *Paper) PrimaryID() string {
	if p.ArxivID != "" {
		return p.ArxivID
	}
	return p.KnowledgeItem.PrimaryID()
}

// FetchRef exposes the paper's raw-artifact reference. ok is false when the
// paper has no PDF to fetch.
func (p *Paper) FetchRef() (url, extension string, ok bool) {
	if p.PDFURL == "" {
		return "", "", false
	}
	return p.PDFURL, ".pdf", true
}
