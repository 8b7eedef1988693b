package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/tagdex/internal/api"
	"github.com/gravitrone/tagdex/internal/ui/components"
)

type libraryLoadedMsg struct {
	query  string
	offset int
	keep   bool
	items  []api.CommonTag
	total  int
}

type libraryFilterMsg struct{ query string }
type libraryTagAddedMsg struct{ tag string }
type libraryTagDeletedMsg struct{ tag string }
type librarySynonymsSavedMsg struct{ tag string }

type libraryView int

const (
	libraryViewList libraryView = iota
	libraryViewAdd
	libraryViewSynonyms
)

const (
	libraryFocusFilter = iota
	libraryFocusList
)

// LibraryModel manages the common-tag library: a filterable listing with
// use counts, tag add/delete, and the synonym-group editor.
type LibraryModel struct {
	client        *api.Client
	overlays      *components.OverlayManager
	view          libraryView
	filter        *components.Autocomplete
	addField      *components.Autocomplete
	synField      *components.Autocomplete
	query         string
	lastAdded     string
	synTag        string
	synBefore     []string
	synAfter      []string
	confirmSyn    bool
	confirmDelete bool
	focus         int
	list          *components.List
	items         []api.CommonTag
	total         int
	offset        int
	pageSize      int
	loading       bool
	loaded        bool
	width         int
	height        int
}

// NewLibraryModel builds the library UI model.
func NewLibraryModel(client *api.Client, overlays *components.OverlayManager, opts components.Options, pageSize int) LibraryModel {
	m := LibraryModel{
		client:   client,
		overlays: overlays,
		filter:   components.NewAutocomplete("library.filter", components.ModeSingle, overlays, tagLookup(client), opts),
		addField: components.NewAutocomplete("library.add", components.ModeSingle, overlays, tagLookup(client), opts),
		synField: components.NewAutocomplete("library.synonyms", components.ModeMulti, overlays, tagLookup(client), opts),
		list:     components.NewList(12),
		pageSize: pageSize,
	}
	m.filter.OnSubmit(func(value string) tea.Cmd {
		return func() tea.Msg {
			return libraryFilterMsg{query: normalizeTag(value)}
		}
	})
	m.addField.OnSubmit(func(value string) tea.Cmd {
		tag := normalizeTag(value)
		if tag == "" {
			return nil
		}
		return func() tea.Msg {
			if err := client.AddCommonTag(tag); err != nil {
				return errMsg{err}
			}
			return libraryTagAddedMsg{tag: tag}
		}
	})
	return m
}

func (m LibraryModel) Init() tea.Cmd {
	m.loading = true
	return m.load(0, false)
}

func (m LibraryModel) Update(msg tea.Msg) (LibraryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case libraryLoadedMsg:
		if msg.query != m.query || msg.offset != m.offset {
			return m, nil
		}
		m.loading = false
		m.loaded = true
		m.items = msg.items
		m.total = msg.total
		labels := make([]string, len(msg.items))
		for i, t := range msg.items {
			labels[i] = components.SanitizeInline(t.Tag)
		}
		if msg.keep {
			m.list.SetItemsKeepPosition(labels)
		} else {
			m.list.SetItems(labels)
		}
		return m, nil
	case libraryFilterMsg:
		m.query = msg.query
		m.loading = true
		return m, m.load(0, false)
	case libraryTagAddedMsg:
		m.lastAdded = msg.tag
		m.loading = true
		return m, m.load(0, false)
	case libraryTagDeletedMsg:
		m.confirmDelete = false
		m.loading = true
		return m, m.load(m.offset, true)
	case librarySynonymsSavedMsg:
		m.confirmSyn = false
		m.view = libraryViewList
		m.synField.SetValue("")
		m.synAfter = nil
		m.loading = true
		return m, m.load(m.offset, true)
	case errMsg:
		m.loading = false
		m.confirmSyn = false
		return m, nil
	case tea.KeyMsg:
		if m.confirmDelete {
			switch {
			case isKey(msg, "y"):
				m.confirmDelete = false
				return m, m.deleteSelected()
			case isKey(msg, "n"), isBack(msg):
				m.confirmDelete = false
			}
			return m, nil
		}
		if m.confirmSyn {
			switch {
			case isKey(msg, "y"):
				return m, m.saveSynonyms()
			case isKey(msg, "n"), isBack(msg):
				m.confirmSyn = false
				m.synAfter = nil
			}
			return m, nil
		}
		switch m.view {
		case libraryViewAdd:
			return m.handleAddKeys(msg)
		case libraryViewSynonyms:
			return m.handleSynonymKeys(msg)
		default:
			return m.handleListKeys(msg)
		}
	default:
		if cmd := m.filter.Update(msg); cmd != nil {
			return m, cmd
		}
		if cmd := m.addField.Update(msg); cmd != nil {
			return m, cmd
		}
		if cmd := m.synField.Update(msg); cmd != nil {
			return m, cmd
		}
	}
	return m, nil
}

func (m LibraryModel) handleListKeys(msg tea.KeyMsg) (LibraryModel, tea.Cmd) {
	switch {
	case isKey(msg, "tab"):
		m.overlays.CloseAll()
		m.view = libraryViewAdd
		m.lastAdded = ""
	case isDown(msg):
		if m.focus == libraryFocusFilter {
			if m.filter.Open() {
				return m, m.filter.Update(msg)
			}
			if len(m.items) > 0 {
				m.overlays.CloseAll()
				m.focus = libraryFocusList
			}
			return m, nil
		}
		m.list.Down()
	case isUp(msg):
		if m.focus == libraryFocusFilter {
			if m.filter.Open() {
				return m, m.filter.Update(msg)
			}
			return m, nil
		}
		if m.list.Selected() == 0 {
			m.focus = libraryFocusFilter
			return m, nil
		}
		m.list.Up()
	case isEnter(msg):
		if m.focus == libraryFocusFilter {
			if m.filter.ConsumesEnter() {
				return m, m.filter.Update(msg)
			}
			// Empty submit clears the applied filter.
			m.query = ""
			m.loading = true
			return m, m.load(0, false)
		}
		return m.openSynonyms()
	case isBack(msg):
		if m.focus == libraryFocusFilter && (m.query != "" || m.filter.Value() != "") {
			m.filter.SetValue("")
			m.query = ""
			m.loading = true
			return m, m.load(0, false)
		}
		if m.focus == libraryFocusList {
			m.focus = libraryFocusFilter
		}
	case isKey(msg, "d") && m.focus == libraryFocusList:
		if _, ok := m.selectedTag(); ok {
			m.confirmDelete = true
		}
	case isKey(msg, "n") && m.focus == libraryFocusList:
		if m.offset+m.pageSize < m.total {
			m.loading = true
			return m, m.load(m.offset+m.pageSize, false)
		}
	case isKey(msg, "p") && m.focus == libraryFocusList:
		if m.offset > 0 {
			next := m.offset - m.pageSize
			if next < 0 {
				next = 0
			}
			m.loading = true
			return m, m.load(next, false)
		}
	default:
		if m.focus == libraryFocusFilter {
			return m, m.filter.Update(msg)
		}
	}
	return m, nil
}

func (m LibraryModel) handleAddKeys(msg tea.KeyMsg) (LibraryModel, tea.Cmd) {
	switch {
	case isKey(msg, "tab"), isBack(msg):
		m.overlays.CloseAll()
		m.addField.SetValue("")
		m.lastAdded = ""
		m.view = libraryViewList
		return m, nil
	default:
		return m, m.addField.Update(msg)
	}
}

func (m LibraryModel) handleSynonymKeys(msg tea.KeyMsg) (LibraryModel, tea.Cmd) {
	switch {
	case isKey(msg, "ctrl+s"):
		return m.stageSynonyms()
	case isEnter(msg):
		if m.synField.ConsumesEnter() {
			return m, m.synField.Update(msg)
		}
		return m.stageSynonyms()
	case isBack(msg):
		m.overlays.CloseAll()
		m.synField.SetValue("")
		m.view = libraryViewList
		return m, nil
	default:
		return m, m.synField.Update(msg)
	}
}

// openSynonyms switches to the synonym editor for the selected library tag.
func (m LibraryModel) openSynonyms() (LibraryModel, tea.Cmd) {
	t, ok := m.selectedTag()
	if !ok {
		return m, nil
	}
	m.overlays.CloseAll()
	m.synTag = t.Tag
	m.synBefore = append([]string(nil), t.Synonyms...)
	m.synField.SetValue(tagLineValue(t.Synonyms))
	m.view = libraryViewSynonyms
	return m, nil
}

// stageSynonyms normalizes the edited group and raises the confirm preview.
// Nothing to change or nothing left to change skips the dialog.
func (m LibraryModel) stageSynonyms() (LibraryModel, tea.Cmd) {
	after := normalizeTagList(components.SplitTags(m.synField.Value()), m.synTag)
	if equalTagLists(m.synBefore, after) {
		m.overlays.CloseAll()
		m.synField.SetValue("")
		m.view = libraryViewList
		return m, nil
	}
	m.overlays.CloseAll()
	m.synAfter = after
	m.confirmSyn = true
	return m, nil
}

func (m LibraryModel) saveSynonyms() tea.Cmd {
	mainTag := m.synTag
	synonyms := append([]string(nil), m.synAfter...)
	client := m.client
	return func() tea.Msg {
		if err := client.UpdateSynonyms(mainTag, synonyms); err != nil {
			return errMsg{err}
		}
		return librarySynonymsSavedMsg{tag: mainTag}
	}
}

func (m LibraryModel) deleteSelected() tea.Cmd {
	t, ok := m.selectedTag()
	if !ok {
		return nil
	}
	client := m.client
	return func() tea.Msg {
		if err := client.DeleteCommonTag(t.Tag); err != nil {
			return errMsg{err}
		}
		return libraryTagDeletedMsg{tag: t.Tag}
	}
}

func (m *LibraryModel) load(offset int, keep bool) tea.Cmd {
	m.offset = offset
	query := m.query
	client := m.client
	limit := m.pageSize
	return func() tea.Msg {
		page, err := client.CommonTags(query, limit, offset)
		if err != nil {
			return errMsg{err}
		}
		return libraryLoadedMsg{
			query:  query,
			offset: offset,
			keep:   keep,
			items:  page.Tags,
			total:  page.Total,
		}
	}
}

func (m LibraryModel) selectedTag() (api.CommonTag, bool) {
	idx := m.list.Selected()
	if idx < 0 || idx >= len(m.items) {
		return api.CommonTag{}, false
	}
	return m.items[idx], true
}

func (m LibraryModel) View() string {
	if m.confirmDelete {
		t, _ := m.selectedTag()
		message := fmt.Sprintf("Remove %s from the library?", t.Tag)
		if len(t.Synonyms) > 0 {
			message = fmt.Sprintf("Remove %s and disband its synonym group?", t.Tag)
		}
		return components.Indent(components.ConfirmDialog("Delete Tag", message), 1)
	}
	if m.confirmSyn {
		summary := []components.TableRow{
			{Label: "Tag", Value: m.synTag},
			{Label: "Members", Value: fmt.Sprintf("%d", len(m.synAfter))},
		}
		diffs := []components.DiffRow{
			{Label: "synonyms", From: joinOrDash(m.synBefore), To: joinOrDash(m.synAfter)},
		}
		return components.Indent(components.ConfirmPreviewDialog("Update Synonyms", summary, diffs, m.width), 1)
	}

	switch m.view {
	case libraryViewAdd:
		return m.renderAdd()
	case libraryViewSynonyms:
		return m.renderSynonyms()
	default:
		return m.renderList()
	}
}

func (m LibraryModel) renderModeLine() string {
	library := TabInactiveStyle.Render("Library")
	add := TabInactiveStyle.Render("Add")
	if m.view == libraryViewAdd {
		add = TabActiveStyle.Render("Add")
	} else {
		library = TabActiveStyle.Render("Library")
	}
	return library + " " + add + "  " + MutedStyle.Render("(tab to switch)")
}

func (m LibraryModel) renderList() string {
	var b strings.Builder
	b.WriteString(m.renderModeLine())
	b.WriteString("\n\n")
	b.WriteString(MetaKeyStyle.Render("Filter"))
	b.WriteString("\n")
	b.WriteString(components.Indent(m.filter.ViewWithCursor(m.focus == libraryFocusFilter), 2))
	b.WriteString("\n\n")
	b.WriteString(m.renderListing())

	return components.Indent(components.TitledBox("Library", b.String(), m.width), 1)
}

func (m LibraryModel) renderListing() string {
	if m.loading {
		return MutedStyle.Render("Loading tags...")
	}
	if !m.loaded {
		return ""
	}
	if len(m.items) == 0 {
		message := "No tags in the library yet."
		if m.query != "" {
			message = fmt.Sprintf("No tags match %q.", m.query)
		}
		return message + "\n" + MutedStyle.Render("Press tab to switch to Add.")
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
	countWidth := 7
	synWidth := availableCols * 40 / 100
	tagWidth := availableCols - synWidth - countWidth
	if tagWidth < 12 {
		tagWidth = 12
	}
	cols := []components.TableColumn{
		{Header: "Tag", Width: tagWidth, Align: lipgloss.Left},
		{Header: "Uses", Width: countWidth, Align: lipgloss.Right},
		{Header: "Synonyms", Width: synWidth, Align: lipgloss.Left},
	}

	visible := m.list.Visible()
	tableRows := make([][]string, 0, len(visible))
	activeRowRel := -1
	for i := range visible {
		absIdx := m.list.RelToAbs(i)
		if absIdx < 0 || absIdx >= len(m.items) {
			continue
		}
		t := m.items[absIdx]
		if m.focus == libraryFocusList && m.list.IsSelected(absIdx) {
			activeRowRel = len(tableRows)
		}
		tableRows = append(tableRows, []string{
			components.ClampTextWidthEllipsis(t.Tag, tagWidth),
			fmt.Sprintf("%d", t.Count),
			components.ClampTextWidthEllipsis(joinOrDash(t.Synonyms), synWidth),
		})
	}

	page := m.offset/m.pageSize + 1
	pages := (m.total + m.pageSize - 1) / m.pageSize
	if pages == 0 {
		pages = 1
	}
	countLine := fmt.Sprintf("%d tags · page %d/%d", m.total, page, pages)
	if m.query != "" {
		countLine = fmt.Sprintf("%s · filter: %s", countLine, m.query)
	}

	return MutedStyle.Render(countLine) + "\n\n" +
		components.TableGridWithActiveRow(cols, tableRows, contentWidth, activeRowRel)
}

func (m LibraryModel) renderAdd() string {
	var b strings.Builder
	b.WriteString(m.renderModeLine())
	b.WriteString("\n\n")
	b.WriteString(MetaKeyStyle.Render("Tag"))
	b.WriteString("\n")
	b.WriteString(components.Indent(m.addField.ViewWithCursor(true), 2))
	b.WriteString("\n\n")
	if m.lastAdded != "" {
		b.WriteString(SuccessStyle.Render(fmt.Sprintf("Added %s.", m.lastAdded)))
		b.WriteString("\n")
	}
	b.WriteString(MutedStyle.Render("enter: add · esc: back to list"))

	return components.Indent(components.TitledBox("Add Tag", b.String(), m.width), 1)
}

func (m LibraryModel) renderSynonyms() string {
	var b strings.Builder
	b.WriteString(components.InfoRow("Tag", m.synTag))
	b.WriteString("\n")
	b.WriteString(components.InfoRow("Group", joinOrDash(m.synBefore)))
	b.WriteString("\n\n")
	b.WriteString(MetaKeyStyle.Render("Synonyms"))
	b.WriteString("\n")
	b.WriteString(components.Indent(m.synField.ViewWithCursor(true), 2))
	b.WriteString("\n\n")
	b.WriteString(MutedStyle.Render("space separates tags · ctrl+s: save · esc: cancel"))

	return components.Indent(components.TitledBox("Synonyms", b.String(), m.width), 1)
}

// atTop reports whether Up should hand control back to the tab bar.
func (m LibraryModel) atTop() bool {
	return m.view == libraryViewList && !m.confirmDelete && !m.confirmSyn &&
		m.focus == libraryFocusFilter && !m.filter.Open()
}

func (m *LibraryModel) setSize(width, height int) {
	m.width = width
	m.height = height
	fieldWidth := components.BoxContentWidth(width) - 4
	m.filter.SetWidth(fieldWidth)
	m.addField.SetWidth(fieldWidth)
	m.synField.SetWidth(fieldWidth)
}

func normalizeTag(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.Join(strings.Fields(s), "-")
	return s
}

// normalizeTagList normalizes and dedupes a token list, dropping empties and
// the excluded tag (a group's main tag cannot be its own synonym).
func normalizeTagList(values []string, exclude string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		tag := normalizeTag(v)
		if tag == "" || tag == exclude || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func equalTagLists(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
