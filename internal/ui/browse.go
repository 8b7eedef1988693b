package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/tagdex/internal/api"
	"github.com/gravitrone/tagdex/internal/ui/components"
)

type browseLoadedMsg struct {
	filter string
	tags   string
	offset int
	keep   bool
	items  []api.Image
	total  int
}

type imageDeletedMsg struct{ filename string }

var browseFilters = []string{"all", "tagged", "untagged"}

const (
	browseFocusFilter = iota
	browseFocusList
)

// BrowseModel pages through the library: every image, only tagged, or only
// untagged, optionally narrowed by tags typed into the filter field.
type BrowseModel struct {
	client        *api.Client
	overlays      *components.OverlayManager
	tagField      *components.Autocomplete
	filterIdx     int
	focus         int
	list          *components.List
	items         []api.Image
	total         int
	offset        int
	pageSize      int
	loading       bool
	loaded        bool
	confirmDelete bool
	width         int
	height        int
}

// NewBrowseModel builds the browse UI model.
func NewBrowseModel(client *api.Client, overlays *components.OverlayManager, opts components.Options, pageSize int) BrowseModel {
	return BrowseModel{
		client:   client,
		overlays: overlays,
		tagField: components.NewAutocomplete("browse.tags", components.ModeMulti, overlays, tagLookup(client), opts),
		list:     components.NewList(12),
		pageSize: pageSize,
	}
}

func (m BrowseModel) Init() tea.Cmd {
	m.loading = true
	return m.load(0, false)
}

func (m BrowseModel) Update(msg tea.Msg) (BrowseModel, tea.Cmd) {
	switch msg := msg.(type) {
	case browseLoadedMsg:
		if msg.filter != browseFilters[m.filterIdx] || msg.tags != m.tagField.Value() || msg.offset != m.offset {
			return m, nil
		}
		m.loading = false
		m.loaded = true
		m.items = msg.items
		m.total = msg.total
		labels := make([]string, len(msg.items))
		for i, img := range msg.items {
			labels[i] = components.SanitizeInline(img.Filename)
		}
		if msg.keep {
			m.list.SetItemsKeepPosition(labels)
		} else {
			m.list.SetItems(labels)
		}
		return m, nil
	case imageDeletedMsg:
		m.confirmDelete = false
		m.loading = true
		return m, m.load(m.offset, true)
	case errMsg:
		m.loading = false
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
		return m.handleKeys(msg)
	default:
		if cmd := m.tagField.Update(msg); cmd != nil {
			return m, cmd
		}
	}
	return m, nil
}

func (m BrowseModel) handleKeys(msg tea.KeyMsg) (BrowseModel, tea.Cmd) {
	switch {
	case isKey(msg, "tab"):
		m.overlays.CloseAll()
		m.filterIdx = (m.filterIdx + 1) % len(browseFilters)
		m.loading = true
		return m, m.load(0, false)
	case isDown(msg):
		if m.focus == browseFocusFilter {
			if m.tagField.Open() {
				return m, m.tagField.Update(msg)
			}
			if len(m.items) > 0 {
				m.overlays.CloseAll()
				m.focus = browseFocusList
			}
			return m, nil
		}
		m.list.Down()
	case isUp(msg):
		if m.focus == browseFocusFilter {
			if m.tagField.Open() {
				return m, m.tagField.Update(msg)
			}
			return m, nil
		}
		if m.list.Selected() == 0 {
			m.focus = browseFocusFilter
			return m, nil
		}
		m.list.Up()
	case isEnter(msg):
		if m.focus == browseFocusFilter {
			if m.tagField.ConsumesEnter() {
				return m, m.tagField.Update(msg)
			}
			m.loading = true
			return m, m.load(0, false)
		}
	case isBack(msg):
		if m.focus == browseFocusFilter && m.tagField.Value() != "" {
			m.tagField.SetValue("")
			m.loading = true
			return m, m.load(0, false)
		}
		if m.focus == browseFocusList {
			m.focus = browseFocusFilter
		}
	case isKey(msg, "d") && m.focus == browseFocusList:
		if _, ok := m.selectedImage(); ok {
			m.confirmDelete = true
		}
	case isKey(msg, "n") && m.focus == browseFocusList:
		if m.offset+m.pageSize < m.total {
			m.loading = true
			return m, m.load(m.offset+m.pageSize, false)
		}
	case isKey(msg, "p") && m.focus == browseFocusList:
		if m.offset > 0 {
			next := m.offset - m.pageSize
			if next < 0 {
				next = 0
			}
			m.loading = true
			return m, m.load(next, false)
		}
	default:
		if m.focus == browseFocusFilter {
			return m, m.tagField.Update(msg)
		}
	}
	return m, nil
}

func (m *BrowseModel) load(offset int, keep bool) tea.Cmd {
	m.offset = offset
	filter := browseFilters[m.filterIdx]
	tags := components.SplitTags(m.tagField.Value())
	tagsEcho := m.tagField.Value()
	client := m.client
	limit := m.pageSize
	return func() tea.Msg {
		page, err := client.Browse(filter, tags, offset, limit)
		if err != nil {
			return errMsg{err}
		}
		return browseLoadedMsg{
			filter: filter,
			tags:   tagsEcho,
			offset: offset,
			keep:   keep,
			items:  page.Results,
			total:  page.Total,
		}
	}
}

func (m BrowseModel) deleteSelected() tea.Cmd {
	img, ok := m.selectedImage()
	if !ok {
		return nil
	}
	client := m.client
	return func() tea.Msg {
		if err := client.DeleteImage(img.Filename); err != nil {
			return errMsg{err}
		}
		return imageDeletedMsg{filename: img.Filename}
	}
}

func (m BrowseModel) selectedImage() (api.Image, bool) {
	idx := m.list.Selected()
	if idx < 0 || idx >= len(m.items) {
		return api.Image{}, false
	}
	return m.items[idx], true
}

func (m BrowseModel) View() string {
	if m.confirmDelete {
		img, _ := m.selectedImage()
		return components.Indent(components.ConfirmDialog(
			"Delete Image",
			fmt.Sprintf("Move %s to the trash bin?", img.Filename),
		), 1)
	}

	var b strings.Builder
	b.WriteString(m.renderFilterLine())
	b.WriteString("\n\n")
	b.WriteString(MetaKeyStyle.Render("Tags"))
	b.WriteString("\n")
	b.WriteString(components.Indent(m.tagField.ViewWithCursor(m.focus == browseFocusFilter), 2))
	b.WriteString("\n\n")
	b.WriteString(m.renderListing())

	return components.Indent(components.TitledBox("Browse", b.String(), m.width), 1)
}

func (m BrowseModel) renderFilterLine() string {
	var parts []string
	for i, f := range browseFilters {
		if i == m.filterIdx {
			parts = append(parts, TabActiveStyle.Render(f))
		} else {
			parts = append(parts, TabInactiveStyle.Render(f))
		}
	}
	return strings.Join(parts, " ") + "  " + MutedStyle.Render("(tab to cycle)")
}

func (m BrowseModel) renderListing() string {
	if m.loading {
		return MutedStyle.Render("Loading images...")
	}
	if !m.loaded {
		return ""
	}
	if len(m.items) == 0 {
		return MutedStyle.Render("No images for this filter.")
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
	md5Width := 10
	tagsWidth := availableCols * 45 / 100
	fileWidth := availableCols - tagsWidth - md5Width
	if fileWidth < 12 {
		fileWidth = 12
	}
	cols := []components.TableColumn{
		{Header: "File", Width: fileWidth, Align: lipgloss.Left},
		{Header: "Tags", Width: tagsWidth, Align: lipgloss.Left},
		{Header: "MD5", Width: md5Width, Align: lipgloss.Left},
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
		tags := strings.Join(img.Tags, ", ")
		if tags == "" {
			tags = "-"
		}
		if m.focus == browseFocusList && m.list.IsSelected(absIdx) {
			activeRowRel = len(tableRows)
		}
		tableRows = append(tableRows, []string{
			components.ClampTextWidthEllipsis(img.Filename, fileWidth),
			components.ClampTextWidthEllipsis(tags, tagsWidth),
			shortMD5(img.MD5),
		})
	}

	page := m.offset/m.pageSize + 1
	pages := (m.total + m.pageSize - 1) / m.pageSize
	if pages == 0 {
		pages = 1
	}
	countLine := MutedStyle.Render(fmt.Sprintf("%d images · page %d/%d", m.total, page, pages))

	return countLine + "\n\n" + components.TableGridWithActiveRow(cols, tableRows, contentWidth, activeRowRel)
}

func shortMD5(md5 string) string {
	if len(md5) > 8 {
		return md5[:8]
	}
	if md5 == "" {
		return "-"
	}
	return md5
}

// atTop reports whether Up should hand control back to the tab bar.
func (m BrowseModel) atTop() bool {
	return m.focus == browseFocusFilter && !m.tagField.Open()
}

func (m *BrowseModel) setSize(width, height int) {
	m.width = width
	m.height = height
	m.tagField.SetWidth(components.BoxContentWidth(width) - 4)
}
