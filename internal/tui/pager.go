// Package tui provides an interactive pager over a compiled program's
// three listings (source/lexemes, generated code, execution trace),
// built on tview/tcell the way the teacher's debugger TUI is.
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Pager holds the running application and the three scrollable views.
type Pager struct {
	App   *tview.Application
	Pages *tview.Pages

	SourceView *tview.TextView
	CodeView   *tview.TextView
	TraceView  *tview.TextView

	StatusBar *tview.TextView

	tabs  []string
	index int
}

// Show builds a Pager over the three listings and runs it until the
// user quits (q or Ctrl+C). Tab/Shift+Tab switch between listings.
func Show(sourceListing, codeListing, traceListing string) error {
	p := newPager(sourceListing, codeListing, traceListing)
	return p.Run()
}

func newPager(sourceListing, codeListing, traceListing string) *Pager {
	p := &Pager{
		App:  tview.NewApplication(),
		tabs: []string{"Lexemes", "Code", "Trace"},
	}

	p.SourceView = newListingView(" Lexemes ", sourceListing)
	p.CodeView = newListingView(" Generated Code ", codeListing)
	p.TraceView = newListingView(" Execution Trace ", traceListing)

	p.StatusBar = tview.NewTextView().SetDynamicColors(true)
	p.StatusBar.SetText("[yellow]Tab[white]/[yellow]Shift+Tab[white] switch view   [yellow]q[white] quit")

	p.Pages = tview.NewPages().
		AddPage("Lexemes", p.SourceView, true, true).
		AddPage("Code", p.CodeView, true, false).
		AddPage("Trace", p.TraceView, true, false)

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(p.Pages, 0, 1, true).
		AddItem(p.StatusBar, 1, 0, false)

	p.App.SetRoot(layout, true)
	p.setupKeyBindings()

	return p
}

func newListingView(title, text string) *tview.TextView {
	v := tview.NewTextView().
		SetDynamicColors(false).
		SetScrollable(true).
		SetWrap(false)
	v.SetBorder(true).SetTitle(title)
	v.SetText(text)
	return v
}

func (p *Pager) setupKeyBindings() {
	p.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyCtrlC:
			p.App.Stop()
			return nil
		case event.Rune() == 'q':
			p.App.Stop()
			return nil
		case event.Key() == tcell.KeyTab:
			p.nextTab(1)
			return nil
		case event.Key() == tcell.KeyBacktab:
			p.nextTab(-1)
			return nil
		}
		return event
	})
}

func (p *Pager) nextTab(delta int) {
	p.index = (p.index + delta + len(p.tabs)) % len(p.tabs)
	name := p.tabs[p.index]
	p.Pages.SwitchToPage(name)
	p.StatusBar.SetText(fmt.Sprintf("[yellow]%s[white]   Tab/Shift+Tab switch view   q quit", name))
}

// Run starts the event loop. It blocks until the user quits.
func (p *Pager) Run() error {
	return p.App.Run()
}
