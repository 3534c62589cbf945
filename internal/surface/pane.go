package surface

// HTMLView is an in-memory rendered output surface.
type HTMLView struct {
	name    string
	content string
	focused bool
}

// NewHTMLView creates an HTML surface holding content.
func NewHTMLView(content string) *HTMLView {
	return &HTMLView{content: content}
}

func (h *HTMLView) Name() string { return h.name }
func (h *HTMLView) SetName(name string) { h.name = name }
func (h *HTMLView) Focus() { h.focused = true }
func (h *HTMLView) Focused() bool { return h.focused }
func (h *HTMLView) Content() string { return h.content }

// Pane is an ordered set of tabs with one active tab. Focusing a tab opened
// through the pane makes it active.
type Pane struct {
	tabs   []Surface
	active int
}

// NewPane creates a pane holding tabs; the first one is active.
func NewPane(tabs ...Surface) *Pane {
	p := &Pane{active: -1}
	for _, t := range tabs {
		p.add(t)
	}
	if len(p.tabs) > 0 {
		p.active = 0
	}
	return p
}

// Active returns the active tab, or nil for an empty pane.
func (p *Pane) Active() Surface {
	if p.active < 0 || p.active >= len(p.tabs) {
		return nil
	}
	return p.tabs[p.active]
}

// Tabs returns the tabs in opening order.
func (p *Pane) Tabs() []Surface {
	out := make([]Surface, len(p.tabs))
	copy(out, p.tabs)
	return out
}

// Activate makes the tab at index active.
func (p *Pane) Activate(index int) bool {
	if index < 0 || index >= len(p.tabs) {
		return false
	}
	p.active = index
	return true
}

// NewTextSurface opens an empty text tab.
func (p *Pane) NewTextSurface() Text {
	tab := &paneBuffer{Buffer: NewBuffer(""), pane: p}
	p.add(tab)
	return tab
}

// NewHTMLSurface opens an HTML tab with content.
func (p *Pane) NewHTMLSurface(content string) HTML {
	tab := &paneHTML{HTMLView: NewHTMLView(content), pane: p}
	p.add(tab)
	return tab
}

func (p *Pane) add(s Surface) {
	p.tabs = append(p.tabs, s)
}

func (p *Pane) focus(s Surface) {
	for i, t := range p.tabs {
		if t == s {
			p.active = i
			return
		}
	}
}

type paneBuffer struct {
	*Buffer
	pane *Pane
}

func (t *paneBuffer) Focus() {
	t.Buffer.Focus()
	t.pane.focus(t)
}

type paneHTML struct {
	*HTMLView
	pane *Pane
}

func (t *paneHTML) Focus() {
	t.HTMLView.Focus()
	t.pane.focus(t)
}
