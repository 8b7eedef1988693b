package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/tagdex/internal/api"
	"github.com/gravitrone/tagdex/internal/ui/components"
)

type queueImageMsg struct {
	filter string
	item   *api.QueueImage
	note   string
}

type tagsSavedMsg struct{ filename string }

type quickTagsLoadedMsg struct{ items []api.CommonTag }

// taggingFilters mirrors the backend queue filters; untagged is the working
// queue, all and tagged cycle existing images for review.
var taggingFilters = []string{"untagged", "all", "tagged"}

const quickTagCount = 8

const (
	taggingFocusLine = iota
	taggingFocusQuick
)

// TaggingModel is the tag workbench: it pulls the next image off the queue,
// edits its tag line through the autocomplete, and offers the most-used
// library tags as a toggle palette.
type TaggingModel struct {
	client        *api.Client
	overlays      *components.OverlayManager
	tagLine       *components.Autocomplete
	filterIdx     int
	current       *api.QueueImage
	note          string
	quick         []api.CommonTag
	quickList     *components.List
	focus         int
	loading       bool
	saving        bool
	confirmDelete bool
	width         int
	height        int
}

// NewTaggingModel builds the tag workbench UI model.
func NewTaggingModel(client *api.Client, overlays *components.OverlayManager, opts components.Options) TaggingModel {
	return TaggingModel{
		client:    client,
		overlays:  overlays,
		tagLine:   components.NewAutocomplete("tag.line", components.ModeMulti, overlays, tagLookup(client), opts),
		quickList: components.NewList(quickTagCount),
	}
}

func (m TaggingModel) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.loadNext(""), m.loadQuickTags())
}

func (m TaggingModel) Update(msg tea.Msg) (TaggingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case queueImageMsg:
		if msg.filter != taggingFilters[m.filterIdx] {
			return m, nil
		}
		m.loading = false
		m.saving = false
		m.current = msg.item
		m.note = msg.note
		m.focus = taggingFocusLine
		if msg.item != nil {
			m.note = msg.item.Message
			m.tagLine.SetValue(tagLineValue(msg.item.Tags))
		} else {
			m.tagLine.SetValue("")
		}
		return m, nil
	case quickTagsLoadedMsg:
		m.quick = msg.items
		labels := make([]string, len(msg.items))
		for i, t := range msg.items {
			labels[i] = components.SanitizeInline(t.Tag)
		}
		m.quickList.SetItems(labels)
		return m, nil
	case tagsSavedMsg:
		m.loading = true
		return m, m.loadNext(msg.filename)
	case imageDeletedMsg:
		m.confirmDelete = false
		m.loading = true
		return m, m.loadNext("")
	case errMsg:
		m.loading = false
		m.saving = false
		return m, nil
	case tea.KeyMsg:
		if m.confirmDelete {
			switch {
			case isKey(msg, "y"):
				m.confirmDelete = false
				return m, m.deleteCurrent()
			case isKey(msg, "n"), isBack(msg):
				m.confirmDelete = false
			}
			return m, nil
		}
		return m.handleKeys(msg)
	default:
		if cmd := m.tagLine.Update(msg); cmd != nil {
			return m, cmd
		}
	}
	return m, nil
}

func (m TaggingModel) handleKeys(msg tea.KeyMsg) (TaggingModel, tea.Cmd) {
	if m.saving || m.loading {
		return m, nil
	}
	switch {
	case isKey(msg, "tab"):
		m.overlays.CloseAll()
		m.filterIdx = (m.filterIdx + 1) % len(taggingFilters)
		m.loading = true
		return m, m.loadNext("")
	case isKey(msg, "ctrl+s"):
		return m.save()
	case isKey(msg, "ctrl+n"):
		if m.current != nil {
			m.loading = true
			return m, m.loadNext(m.current.Filename)
		}
		m.loading = true
		return m, m.loadNext("")
	case isKey(msg, "ctrl+d"):
		if m.current != nil {
			m.confirmDelete = true
		}
	case isDown(msg):
		if m.focus == taggingFocusLine {
			if m.tagLine.Open() {
				return m, m.tagLine.Update(msg)
			}
			if len(m.quick) > 0 && m.current != nil {
				m.overlays.CloseAll()
				m.focus = taggingFocusQuick
			}
			return m, nil
		}
		m.quickList.Down()
	case isUp(msg):
		if m.focus == taggingFocusLine {
			if m.tagLine.Open() {
				return m, m.tagLine.Update(msg)
			}
			return m, nil
		}
		if m.quickList.Selected() == 0 {
			m.focus = taggingFocusLine
			return m, nil
		}
		m.quickList.Up()
	case isEnter(msg):
		if m.focus == taggingFocusQuick {
			m.toggleQuickTag()
			return m, nil
		}
		if m.tagLine.ConsumesEnter() {
			return m, m.tagLine.Update(msg)
		}
		return m.save()
	case isSpace(msg):
		if m.focus == taggingFocusQuick {
			m.toggleQuickTag()
			return m, nil
		}
		return m, m.tagLine.Update(msg)
	case isBack(msg):
		if m.focus == taggingFocusQuick {
			m.focus = taggingFocusLine
			return m, nil
		}
		if m.current != nil {
			m.tagLine.SetValue(tagLineValue(m.current.Tags))
		}
	default:
		if m.focus == taggingFocusLine {
			return m, m.tagLine.Update(msg)
		}
	}
	return m, nil
}

// tagLineValue rebuilds the editable line from a tag list, with a trailing
// space so the next keystroke starts a fresh token.
func tagLineValue(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return strings.Join(tags, " ") + " "
}

// toggleQuickTag adds or removes the highlighted palette tag from the line.
func (m *TaggingModel) toggleQuickTag() {
	idx := m.quickList.Selected()
	if idx < 0 || idx >= len(m.quick) || m.current == nil {
		return
	}
	tag := m.quick[idx].Tag
	tokens := components.SplitTags(m.tagLine.Value())
	out := make([]string, 0, len(tokens)+1)
	had := false
	for _, t := range tokens {
		if t == tag {
			had = true
			continue
		}
		out = append(out, t)
	}
	if !had {
		out = append(out, tag)
	}
	m.tagLine.SetValue(tagLineValue(out))
}

func (m TaggingModel) save() (TaggingModel, tea.Cmd) {
	if m.current == nil {
		return m, nil
	}
	m.saving = true
	filename := m.current.Filename
	tags := components.SplitTags(m.tagLine.Value())
	client := m.client
	return m, func() tea.Msg {
		if err := client.SaveTags(filename, tags); err != nil {
			return errMsg{err}
		}
		return tagsSavedMsg{filename: filename}
	}
}

func (m TaggingModel) deleteCurrent() tea.Cmd {
	if m.current == nil {
		return nil
	}
	filename := m.current.Filename
	client := m.client
	return func() tea.Msg {
		if err := client.DeleteImage(filename); err != nil {
			return errMsg{err}
		}
		return imageDeletedMsg{filename: filename}
	}
}

func (m TaggingModel) loadNext(current string) tea.Cmd {
	filter := taggingFilters[m.filterIdx]
	client := m.client
	return func() tea.Msg {
		item, err := client.NextImage(current, filter)
		if err != nil {
			if errors.Is(err, api.ErrQueueEmpty) {
				return queueImageMsg{filter: filter, note: err.Error()}
			}
			return errMsg{err}
		}
		return queueImageMsg{filter: filter, item: item}
	}
}

func (m TaggingModel) loadQuickTags() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		page, err := client.CommonTags("", quickTagCount, 0)
		if err != nil {
			return errMsg{err}
		}
		return quickTagsLoadedMsg{items: page.Tags}
	}
}

func (m TaggingModel) View() string {
	if m.confirmDelete && m.current != nil {
		return components.Indent(components.ConfirmDialog(
			"Delete Image",
			fmt.Sprintf("Move %s to the trash bin?", m.current.Filename),
		), 1)
	}
	if m.loading {
		return "  " + MutedStyle.Render("Fetching next image...")
	}
	if m.current == nil {
		note := m.note
		if note == "" {
			note = "The queue is empty."
		}
		return components.Indent(components.EmptyStateBox(
			"Tag",
			note,
			[]string{"Press tab to cycle untagged/all/tagged", "Upload images on tab 4"},
			m.width,
		), 1)
	}

	var b strings.Builder
	b.WriteString(m.renderFilterLine())
	b.WriteString("\n\n")

	b.WriteString(components.InfoRow("File", m.current.Filename))
	b.WriteString("\n")
	b.WriteString(components.InfoRow("MD5", shortMD5(m.current.MD5)))
	if m.note != "" {
		b.WriteString("\n")
		b.WriteString(components.InfoRow("Queue", m.note))
	}
	b.WriteString("\n\n")

	b.WriteString(MetaKeyStyle.Render("Tags"))
	b.WriteString("\n")
	b.WriteString(components.Indent(m.tagLine.ViewWithCursor(m.focus == taggingFocusLine), 2))
	b.WriteString("\n\n")
	b.WriteString(m.renderQuickGrid())

	if m.saving {
		b.WriteString("\n\n" + MutedStyle.Render("Saving..."))
	}

	return components.Indent(components.TitledBox("Tag", b.String(), m.width), 1)
}

func (m TaggingModel) renderFilterLine() string {
	var parts []string
	for i, f := range taggingFilters {
		if i == m.filterIdx {
			parts = append(parts, TabActiveStyle.Render(f))
		} else {
			parts = append(parts, TabInactiveStyle.Render(f))
		}
	}
	line := strings.Join(parts, " ")
	if m.current != nil && m.current.IsReview {
		line += "  " + ReviewBadgeStyle.Render("REVIEW")
	}
	return line + "  " + MutedStyle.Render("(tab to cycle)")
}

// renderQuickGrid draws the most-used library tags with a toggle mark for
// the ones already on the current image.
func (m TaggingModel) renderQuickGrid() string {
	if len(m.quick) == 0 {
		return MutedStyle.Render("No common tags yet.")
	}

	onLine := make(map[string]bool)
	for _, t := range components.SplitTags(m.tagLine.Value()) {
		onLine[t] = true
	}

	contentWidth := components.BoxContentWidth(m.width)
	usesWidth := 6
	tagWidth := contentWidth - usesWidth - 1
	if tagWidth < 12 {
		tagWidth = 12
	}
	cols := []components.TableColumn{
		{Header: "Common Tags", Width: tagWidth, Align: lipgloss.Left},
		{Header: "Uses", Width: usesWidth, Align: lipgloss.Right},
	}

	visible := m.quickList.Visible()
	rows := make([][]string, 0, len(visible))
	activeRowRel := -1
	for i := range visible {
		absIdx := m.quickList.RelToAbs(i)
		if absIdx < 0 || absIdx >= len(m.quick) {
			continue
		}
		t := m.quick[absIdx]
		marker := "[ ]"
		if onLine[t.Tag] {
			marker = "[x]"
		}
		if m.focus == taggingFocusQuick && m.quickList.IsSelected(absIdx) {
			activeRowRel = len(rows)
		}
		rows = append(rows, []string{
			marker + " " + components.ClampTextWidthEllipsis(t.Tag, tagWidth-4),
			fmt.Sprintf("%d", t.Count),
		})
	}

	return components.TableGridWithActiveRow(cols, rows, contentWidth, activeRowRel)
}

// atTop reports whether Up should hand control back to the tab bar.
func (m TaggingModel) atTop() bool {
	return m.focus == taggingFocusLine && !m.tagLine.Open()
}

// dirty reports whether the tag line differs from the image's stored tags.
func (m TaggingModel) dirty() bool {
	if m.current == nil {
		return false
	}
	return !equalTagLists(components.SplitTags(m.tagLine.Value()), m.current.Tags)
}

func (m *TaggingModel) setSize(width, height int) {
	m.width = width
	m.height = height
	m.tagLine.SetWidth(components.BoxContentWidth(width) - 4)
}
