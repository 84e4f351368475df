package client

import "sync"

// View is the part of the page the submitter writes to.
type View interface {
	SetStatus(text string)
	ClearResults()
	AppendImage(src string)
}

// Page is an in-memory View.
type Page struct {
	mu      sync.Mutex
	status  string
	results []string
}

func NewPage() *Page {
	return &Page{}
}

func (p *Page) SetStatus(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = text
}

func (p *Page) ClearResults() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = nil
}

func (p *Page) AppendImage(src string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, src)
}

func (p *Page) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Results returns a copy of the image sources in display order.
func (p *Page) Results() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.results...)
}
