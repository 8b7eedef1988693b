package components

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Mode selects how an Autocomplete treats its field value.
type Mode int

const (
	// ModeSingle: the whole field is one tag; commit clears it and submits.
	ModeSingle Mode = iota
	// ModeMulti: the field is a delimited tag line; lookup and commit act on
	// the trailing in-progress token only.
	ModeMulti
)

// Candidate is one suggested tag with its synonym group, as the lookup
// returns them.
type Candidate struct {
	Tag      string
	Synonyms []string
}

// LookupFunc fetches candidates for a query prefix. Ranking and ordering
// belong to the implementation; an error counts as no candidates.
type LookupFunc func(query string) ([]Candidate, error)

// Options tunes an Autocomplete instance.
type Options struct {
	QuietPeriod time.Duration // pause between last keystroke and lookup
	MaxRows     int           // cap on rendered suggestion rows
	Width       int           // display width for row truncation, 0 = off
}

// DefaultOptions returns the standard widget tuning.
func DefaultOptions() Options {
	return Options{
		QuietPeriod: 200 * time.Millisecond,
		MaxRows:     8,
	}
}

type lookupTickMsg struct {
	owner string
	seq   int
}

type lookupResultsMsg struct {
	owner string
	seq   int
	query string
	items []Candidate
}

var (
	acPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#436b77")).
			Bold(true)
	acCursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7f57b4"))
	acRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d7d9da"))
	acRowActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#16161d")).
				Background(lipgloss.Color("#7f57b4")).
				Bold(true)
	acSynonymStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ba0bf"))
)

// Autocomplete is an incremental tag-completion field. Keystrokes edit the
// value and arm a debounced remote lookup; results show in a transient
// suggestion list navigated with Up/Down and committed with Enter or Click.
// Every list lives in the shared OverlayManager, so opening one closes all
// others and CloseAll dismisses everything at once.
type Autocomplete struct {
	id       string
	mode     Mode
	opts     Options
	overlays *OverlayManager
	lookup   LookupFunc
	submit   func(value string) tea.Cmd

	value      string
	candidates []Candidate
	focus      int
	// seq orders lookups per instance. Every edit, commit or dismissal bumps
	// it; debounce ticks and lookup results carrying an older seq are stale
	// and get dropped.
	seq int
}

// NewAutocomplete builds a widget bound to the shared overlay registry. The
// id must be unique among instances.
func NewAutocomplete(id string, mode Mode, overlays *OverlayManager, lookup LookupFunc, opts Options) *Autocomplete {
	def := DefaultOptions()
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = def.QuietPeriod
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = def.MaxRows
	}
	return &Autocomplete{
		id:       id,
		mode:     mode,
		opts:     opts,
		overlays: overlays,
		lookup:   lookup,
		focus:    -1,
	}
}

// OnSubmit sets the callback fired on single-mode commit and
// Enter-to-submit. The callback owns all side effects.
func (a *Autocomplete) OnSubmit(fn func(value string) tea.Cmd) {
	a.submit = fn
}

// SetWidth sets the truncation width for suggestion rows.
func (a *Autocomplete) SetWidth(w int) {
	a.opts.Width = w
}

// Value returns the current field content.
func (a *Autocomplete) Value() string {
	return a.value
}

// SetValue replaces the field content without arming a lookup, the way a
// host prefills a form. Pending lookups die with the old content.
func (a *Autocomplete) SetValue(v string) {
	a.value = v
	a.dismiss()
}

// Reset clears the field and dismisses any list.
func (a *Autocomplete) Reset() {
	a.SetValue("")
}

// Query returns the text a lookup would use right now: the trailing
// in-progress token in multi mode, the whole value in single mode.
func (a *Autocomplete) Query() string {
	if a.mode == ModeMulti {
		return ActiveQuery(a.value)
	}
	return a.value
}

// Tokens returns the field parsed as a tag list.
func (a *Autocomplete) Tokens() []string {
	return SplitTags(a.value)
}

// Open reports whether this instance's suggestion list is showing.
func (a *Autocomplete) Open() bool {
	return a.overlays.IsOpen(a.id) && len(a.candidates) > 0
}

// Focus returns the selected row index, -1 when nothing is selected or no
// list is open.
func (a *Autocomplete) Focus() int {
	if !a.Open() {
		return -1
	}
	return a.focus
}

// Candidates returns the rows of the open list, nil when closed.
func (a *Autocomplete) Candidates() []Candidate {
	if !a.Open() {
		return nil
	}
	return a.candidates
}

// ConsumesEnter reports whether the widget will act on an Enter key press.
// Hosts route Enter here when true and run their own action otherwise.
func (a *Autocomplete) ConsumesEnter() bool {
	if a.Open() && a.focus > -1 {
		return true
	}
	return a.mode == ModeSingle && strings.TrimSpace(a.value) != ""
}

// Update handles key, debounce-tick and lookup-result messages, returning a
// command when the message armed work.
func (a *Autocomplete) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)
	case lookupTickMsg:
		if msg.owner != a.id || msg.seq != a.seq {
			return nil
		}
		return a.fire()
	case lookupResultsMsg:
		if msg.owner != a.id || msg.seq != a.seq {
			return nil
		}
		if len(msg.items) == 0 {
			return nil
		}
		items := msg.items
		if len(items) > a.opts.MaxRows {
			items = items[:a.opts.MaxRows]
		}
		a.candidates = items
		a.focus = -1
		a.overlays.Open(a.id)
		return nil
	}
	return nil
}

func (a *Autocomplete) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyDown:
		a.moveFocus(1)
		return nil
	case tea.KeyUp:
		a.moveFocus(-1)
		return nil
	case tea.KeyEnter:
		return a.enter()
	case tea.KeyBackspace, tea.KeyDelete:
		if a.value == "" {
			return nil
		}
		a.value = trimLastRune(a.value)
		return a.arm()
	case tea.KeySpace:
		a.value += " "
		return a.arm()
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return nil
		}
		a.value += string(msg.Runes)
		return a.arm()
	}
	return nil
}

// arm starts the quiet-period countdown for the current field state,
// superseding any pending one.
func (a *Autocomplete) arm() tea.Cmd {
	a.seq++
	seq := a.seq
	id := a.id
	return tea.Tick(a.opts.QuietPeriod, func(time.Time) tea.Msg {
		return lookupTickMsg{owner: id, seq: seq}
	})
}

// fire runs when the quiet period elapsed uninterrupted: it reads the field
// as it is now, closes every open list, and dispatches the lookup unless the
// active query is empty.
func (a *Autocomplete) fire() tea.Cmd {
	a.overlays.CloseAll()
	a.candidates = nil
	a.focus = -1

	query := a.Query()
	if query == "" {
		return nil
	}

	id := a.id
	seq := a.seq
	lookup := a.lookup
	return func() tea.Msg {
		items, err := lookup(query)
		if err != nil {
			items = nil
		}
		return lookupResultsMsg{owner: id, seq: seq, query: query, items: items}
	}
}

func (a *Autocomplete) moveFocus(delta int) {
	if !a.Open() {
		return
	}
	n := len(a.candidates)
	f := a.focus + delta
	if f >= n {
		f = 0
	}
	if f < 0 {
		f = n - 1
	}
	a.focus = f
}

func (a *Autocomplete) enter() tea.Cmd {
	if a.Open() && a.focus > -1 {
		return a.commit(a.candidates[a.focus].Tag)
	}
	if a.mode == ModeSingle {
		if v := strings.TrimSpace(a.value); v != "" {
			a.value = ""
			a.dismiss()
			if a.submit != nil {
				return a.submit(v)
			}
		}
	}
	// Multi mode with no selection: the host's own Enter handling applies.
	return nil
}

// Click commits the i-th rendered candidate, as a pointer press on its row
// would.
func (a *Autocomplete) Click(i int) tea.Cmd {
	if !a.Open() || i < 0 || i >= len(a.candidates) {
		return nil
	}
	return a.commit(a.candidates[i].Tag)
}

// commit accepts a candidate tag: single mode clears the field and submits,
// multi mode splices the tag over the in-progress token. Either way the
// list closes and the focus index resets.
func (a *Autocomplete) commit(tag string) tea.Cmd {
	a.dismiss()
	if a.mode == ModeSingle {
		a.value = ""
		if a.submit != nil {
			return a.submit(tag)
		}
		return nil
	}
	a.value = SpliceCommit(a.value, tag)
	return nil
}

// dismiss closes every open list and invalidates pending ticks and lookups
// for this instance.
func (a *Autocomplete) dismiss() {
	a.seq++
	a.candidates = nil
	a.focus = -1
	a.overlays.CloseAll()
}

// ViewInput renders the field line; active adds the block cursor.
func (a *Autocomplete) ViewInput(active bool) string {
	line := acPromptStyle.Render("> ") + SanitizeInline(a.value)
	if active {
		line += acCursorStyle.Render("█")
	}
	return line
}

// ViewList renders the open suggestion list, one row per candidate with up
// to two synonyms and a truncation marker when more exist. Empty when no
// list is open.
func (a *Autocomplete) ViewList() string {
	if !a.Open() {
		return ""
	}
	rows := make([]string, 0, len(a.candidates))
	for i, c := range a.candidates {
		row := suggestionRow(c, a.opts.Width)
		if i == a.focus {
			rows = append(rows, acRowActiveStyle.Render(" "+row+" "))
		} else {
			rows = append(rows, acRowStyle.Render(" "+row+" "))
		}
	}
	return strings.Join(rows, "\n")
}

// View renders the input line and, below it, the suggestion list.
func (a *Autocomplete) View() string {
	return a.ViewWithCursor(true)
}

// ViewWithCursor renders the widget with the cursor drawn only when active.
func (a *Autocomplete) ViewWithCursor(active bool) string {
	input := a.ViewInput(active)
	list := a.ViewList()
	if list == "" {
		return input
	}
	return input + "\n" + list
}

// suggestionRow formats one candidate: the tag, then the first two synonyms
// with an ellipsis when the group has more.
func suggestionRow(c Candidate, width int) string {
	tag := SanitizeInline(c.Tag)
	text := tag
	if len(c.Synonyms) > 0 {
		syns := c.Synonyms
		marker := ""
		if len(syns) > 2 {
			syns = syns[:2]
			marker = ", …"
		}
		shown := make([]string, len(syns))
		for i, s := range syns {
			shown[i] = SanitizeInline(s)
		}
		text += acSynonymStyle.Render(" (" + strings.Join(shown, ", ") + marker + ")")
	}
	if width > 0 && runewidth.StringWidth(text) > width {
		// Truncate on the unstyled form so ANSI sequences cannot be cut
		// mid-escape.
		text = runewidth.Truncate(tag, width, "…")
	}
	return text
}

func trimLastRune(s string) string {
	runes := []rune(s)
	return string(runes[:len(runes)-1])
}
