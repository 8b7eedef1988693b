package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/tagdex/internal/api"
	"github.com/gravitrone/tagdex/internal/ui/components"
)

type searchResultsMsg struct {
	include string
	exclude string
	offset  int
	items   []api.Image
	total   int
}

const (
	searchFocusInclude = iota
	searchFocusExclude
	searchFocusResults
)

// SearchModel queries the backend by tag sets: images matching every
// include tag and none of the exclude tags, synonym expansion server-side.
type SearchModel struct {
	client   *api.Client
	overlays *components.OverlayManager
	include  *components.Autocomplete
	exclude  *components.Autocomplete
	focus    int
	list     *components.List
	items    []api.Image
	total    int
	offset   int
	pageSize int
	loading  bool
	ran      bool
	width    int
	height   int
}

// NewSearchModel builds the search UI model.
func NewSearchModel(client *api.Client, overlays *components.OverlayManager, opts components.Options, pageSize int) SearchModel {
	lookup := tagLookup(client)
	return SearchModel{
		client:   client,
		overlays: overlays,
		include:  components.NewAutocomplete("search.include", components.ModeMulti, overlays, lookup, opts),
		exclude:  components.NewAutocomplete("search.exclude", components.ModeMulti, overlays, lookup, opts),
		list:     components.NewList(10),
		pageSize: pageSize,
	}
}

func (m SearchModel) Init() tea.Cmd {
	return nil
}

func (m SearchModel) Update(msg tea.Msg) (SearchModel, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultsMsg:
		if msg.include != m.include.Value() || msg.exclude != m.exclude.Value() || msg.offset != m.offset {
			return m, nil
		}
		m.loading = false
		m.ran = true
		m.items = msg.items
		m.total = msg.total
		labels := make([]string, len(msg.items))
		for i, img := range msg.items {
			labels[i] = components.SanitizeInline(img.Filename)
		}
		m.list.SetItems(labels)
		if m.focus == searchFocusResults && len(m.items) == 0 {
			m.focus = searchFocusExclude
		}
		return m, nil
	case errMsg:
		m.loading = false
		return m, nil
	case tea.KeyMsg:
		return m.handleKeys(msg)
	default:
		// Debounce ticks and lookup results carry their owner's id; each
		// widget acts only on its own.
		if cmd := m.include.Update(msg); cmd != nil {
			return m, cmd
		}
		if cmd := m.exclude.Update(msg); cmd != nil {
			return m, cmd
		}
	}
	return m, nil
}

func (m SearchModel) handleKeys(msg tea.KeyMsg) (SearchModel, tea.Cmd) {
	switch {
	case isDown(msg):
		if w := m.focusedWidget(); w != nil && w.Open() {
			return m, w.Update(msg)
		}
		m.moveFocus(1)
	case isUp(msg):
		if w := m.focusedWidget(); w != nil && w.Open() {
			return m, w.Update(msg)
		}
		if m.focus == searchFocusResults && m.list.Selected() > 0 {
			m.list.Up()
			return m, nil
		}
		m.moveFocus(-1)
	case isEnter(msg):
		if w := m.focusedWidget(); w != nil && w.ConsumesEnter() {
			return m, w.Update(msg)
		}
		return m, m.runSearch(0)
	case isKey(msg, "tab"):
		m.moveFocus(1)
	case isBack(msg):
		if w := m.focusedWidget(); w != nil {
			if w.Value() != "" {
				w.SetValue("")
				return m, nil
			}
		}
		if m.focus == searchFocusResults {
			m.focus = searchFocusExclude
		}
	case isKey(msg, "n") && m.focus == searchFocusResults:
		if m.offset+m.pageSize < m.total {
			return m, m.runSearch(m.offset + m.pageSize)
		}
	case isKey(msg, "p") && m.focus == searchFocusResults:
		if m.offset > 0 {
			next := m.offset - m.pageSize
			if next < 0 {
				next = 0
			}
			return m, m.runSearch(next)
		}
	default:
		if m.focus == searchFocusResults {
			return m, nil
		}
		if w := m.focusedWidget(); w != nil {
			return m, w.Update(msg)
		}
	}
	return m, nil
}

// moveFocus steps between the two fields and the result list, closing any
// open suggestion list on the way.
func (m *SearchModel) moveFocus(delta int) {
	next := m.focus + delta
	if next > searchFocusResults || (next == searchFocusResults && len(m.items) == 0) {
		return
	}
	if next < searchFocusInclude {
		return
	}
	if next != m.focus {
		m.overlays.CloseAll()
		m.focus = next
	}
}

func (m SearchModel) focusedWidget() *components.Autocomplete {
	switch m.focus {
	case searchFocusInclude:
		return m.include
	case searchFocusExclude:
		return m.exclude
	}
	return nil
}

// runSearch fires a paged search with the tag lists as currently typed,
// trailing partial tokens included.
func (m *SearchModel) runSearch(offset int) tea.Cmd {
	include := components.SplitTags(m.include.Value())
	exclude := components.SplitTags(m.exclude.Value())
	if len(include) == 0 && len(exclude) == 0 {
		return nil
	}
	m.overlays.CloseAll()
	m.loading = true
	m.offset = offset
	incEcho := m.include.Value()
	excEcho := m.exclude.Value()
	client := m.client
	limit := m.pageSize
	return func() tea.Msg {
		page, err := client.Search(include, exclude, offset, limit)
		if err != nil {
			return errMsg{err}
		}
		return searchResultsMsg{
			include: incEcho,
			exclude: excEcho,
			offset:  offset,
			items:   page.Results,
			total:   page.Total,
		}
	}
}

func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(MetaKeyStyle.Render("Include"))
	b.WriteString("\n")
	b.WriteString(components.Indent(m.include.ViewWithCursor(m.focus == searchFocusInclude), 2))
	b.WriteString("\n\n")
	b.WriteString(MetaKeyStyle.Render("Exclude"))
	b.WriteString("\n")
	b.WriteString(components.Indent(m.exclude.ViewWithCursor(m.focus == searchFocusExclude), 2))
	b.WriteString("\n\n")
	b.WriteString(m.renderResults())

	return components.Indent(components.TitledBox("Search", b.String(), m.width), 1)
}

func (m SearchModel) renderResults() string {
	if m.loading {
		return MutedStyle.Render("Searching...")
	}
	if !m.ran {
		return MutedStyle.Render("Type tags, Enter to search.")
	}
	if len(m.items) == 0 {
		return MutedStyle.Render("No matches.")
	}

	contentWidth := components.BoxContentWidth(m.width)
	sepWidth := 1
	if bdr := lipgloss.RoundedBorder().Left; bdr != "" {
		sepWidth = lipgloss.Width(bdr)
	}

	// 3 columns -> 2 separators.
	availableCols := contentWidth - (2 * sepWidth)
	if availableCols < 30 {
		availableCols = 30
	}
	scoreWidth := 7
	tagsWidth := availableCols * 40 / 100
	fileWidth := availableCols - tagsWidth - scoreWidth
	if fileWidth < 12 {
		fileWidth = 12
	}
	cols := []components.TableColumn{
		{Header: "File", Width: fileWidth, Align: lipgloss.Left},
		{Header: "Tags", Width: tagsWidth, Align: lipgloss.Left},
		{Header: "Score", Width: scoreWidth, Align: lipgloss.Right},
	}

	visible := m.list.Visible()
	tableRows := make([][]string, 0, len(visible))
	activeRowRel := -1
	for i := range visible {
		absIdx := m.list.RelToAbs(i)
		if absIdx < 0 || absIdx >= len(m.items) {
			continue
		}
		img := m.items[absIdx]
		score := "-"
		if img.Score > 0 {
			score = fmt.Sprintf("%.2f", img.Score)
		}
		if m.focus == searchFocusResults && m.list.IsSelected(absIdx) {
			activeRowRel = len(tableRows)
		}
		tableRows = append(tableRows, []string{
			components.ClampTextWidthEllipsis(img.Filename, fileWidth),
			components.ClampTextWidthEllipsis(strings.Join(img.Tags, ", "), tagsWidth),
			score,
		})
	}

	page := m.offset/m.pageSize + 1
	pages := (m.total + m.pageSize - 1) / m.pageSize
	countLine := MutedStyle.Render(fmt.Sprintf("%d matches · page %d/%d", m.total, page, pages))

	return countLine + "\n\n" + components.TableGridWithActiveRow(cols, tableRows, contentWidth, activeRowRel)
}

// atTop reports whether Up should hand control back to the tab bar.
func (m SearchModel) atTop() bool {
	return m.focus == searchFocusInclude && !m.include.Open()
}

// setSize propagates the terminal size so field and dropdown rendering can
// clamp to the box content width.
func (m *SearchModel) setSize(width, height int) {
	m.width = width
	m.height = height
	fieldWidth := components.BoxContentWidth(width) - 4
	m.include.SetWidth(fieldWidth)
	m.exclude.SetWidth(fieldWidth)
}
