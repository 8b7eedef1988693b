package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/tagdex/internal/api"
	"github.com/gravitrone/tagdex/internal/ui/components"
)

type uploadCheckedMsg struct{ result *api.UploadResult }
type uploadSavedMsg struct{ filename string }

type uploadStep int

const (
	uploadStepPath uploadStep = iota
	uploadStepChecking
	uploadStepTags
	uploadStepSaving
	uploadStepDone
)

// UploadModel sends a local image through the duplicate check and tags it.
// A known file jumps straight to editing the stored image's tags; a new one
// reports its queue position and takes initial tags.
type UploadModel struct {
	client   *api.Client
	overlays *components.OverlayManager
	step     uploadStep
	path     string
	errText  string
	result   *api.UploadResult
	tagLine  *components.Autocomplete
	width    int
	height   int
}

// NewUploadModel builds the upload UI model.
func NewUploadModel(client *api.Client, overlays *components.OverlayManager, opts components.Options) UploadModel {
	return UploadModel{
		client:   client,
		overlays: overlays,
		tagLine:  components.NewAutocomplete("upload.tags", components.ModeMulti, overlays, tagLookup(client), opts),
	}
}

func (m UploadModel) Update(msg tea.Msg) (UploadModel, tea.Cmd) {
	switch msg := msg.(type) {
	case uploadCheckedMsg:
		m.step = uploadStepTags
		m.result = msg.result
		if msg.result.Exists {
			m.tagLine.SetValue(tagLineValue(msg.result.Tags))
		} else {
			m.tagLine.SetValue("")
		}
		return m, nil
	case uploadSavedMsg:
		m.step = uploadStepDone
		return m, nil
	case errMsg:
		// The app surfaces the error itself; drop back to the path prompt so
		// a failed upload can be retried.
		if m.step == uploadStepChecking {
			m.step = uploadStepPath
		}
		if m.step == uploadStepSaving {
			m.step = uploadStepTags
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKeys(msg)
	default:
		if cmd := m.tagLine.Update(msg); cmd != nil {
			return m, cmd
		}
	}
	return m, nil
}

func (m UploadModel) handleKeys(msg tea.KeyMsg) (UploadModel, tea.Cmd) {
	switch m.step {
	case uploadStepChecking, uploadStepSaving:
		return m, nil
	case uploadStepDone:
		if isBack(msg) || isEnter(msg) {
			m.reset()
		}
		return m, nil
	case uploadStepTags:
		return m.handleTagKeys(msg)
	default:
		return m.handlePathKeys(msg)
	}
}

func (m UploadModel) handlePathKeys(msg tea.KeyMsg) (UploadModel, tea.Cmd) {
	switch {
	case isEnter(msg):
		return m.check()
	case isBack(msg):
		m.path = ""
		m.errText = ""
	case isKey(msg, "backspace", "delete"):
		m.path = dropLastRune(m.path)
		m.errText = ""
	default:
		appendChar(&m.path, msg)
	}
	return m, nil
}

func (m UploadModel) handleTagKeys(msg tea.KeyMsg) (UploadModel, tea.Cmd) {
	switch {
	case isKey(msg, "ctrl+s"):
		return m.save()
	case isEnter(msg):
		if m.tagLine.ConsumesEnter() {
			return m, m.tagLine.Update(msg)
		}
		return m.save()
	case isBack(msg):
		m.reset()
		return m, nil
	default:
		return m, m.tagLine.Update(msg)
	}
}

// check validates the path client-side, then runs the duplicate check.
func (m UploadModel) check() (UploadModel, tea.Cmd) {
	path := strings.TrimSpace(m.path)
	if path == "" {
		m.errText = "File path is required"
		return m, nil
	}
	if !api.AllowedImage(path) {
		m.errText = "Unsupported image type (jpg, jpeg, png, gif, webp)"
		return m, nil
	}
	m.errText = ""
	m.step = uploadStepChecking
	client := m.client
	return m, func() tea.Msg {
		result, err := client.UploadFile(path)
		if err != nil {
			return errMsg{err}
		}
		return uploadCheckedMsg{result: result}
	}
}

func (m UploadModel) save() (UploadModel, tea.Cmd) {
	if m.result == nil {
		return m, nil
	}
	m.step = uploadStepSaving
	filename := m.result.Filename
	tags := components.SplitTags(m.tagLine.Value())
	client := m.client
	return m, func() tea.Msg {
		if err := client.SaveTags(filename, tags); err != nil {
			return errMsg{err}
		}
		return uploadSavedMsg{filename: filename}
	}
}

func (m *UploadModel) reset() {
	m.overlays.CloseAll()
	m.step = uploadStepPath
	m.path = ""
	m.errText = ""
	m.result = nil
	m.tagLine.SetValue("")
}

func (m UploadModel) View() string {
	var b strings.Builder
	switch m.step {
	case uploadStepChecking:
		b.WriteString(MutedStyle.Render("Checking upload..."))
	case uploadStepTags, uploadStepSaving:
		b.WriteString(m.renderTagEditor())
	case uploadStepDone:
		b.WriteString(SuccessStyle.Render(fmt.Sprintf("Tags saved for %s.", m.result.Filename)))
		b.WriteString("\n\n")
		b.WriteString(MutedStyle.Render("Press esc to upload another."))
	default:
		b.WriteString(m.renderPathForm())
	}
	return components.Indent(components.TitledBox("Upload", b.String(), m.width), 1)
}

func (m UploadModel) renderPathForm() string {
	var b strings.Builder
	b.WriteString(SelectedStyle.Render("> Path:"))
	b.WriteString("\n")
	renderTextField(&b, m.path, true)
	b.WriteString("\n\n")
	if m.errText != "" {
		b.WriteString(ErrorStyle.Render(m.errText))
		b.WriteString("\n")
	}
	b.WriteString(MutedStyle.Render("enter: upload · esc: clear"))
	return b.String()
}

func (m UploadModel) renderTagEditor() string {
	var b strings.Builder
	b.WriteString(components.InfoRow("File", m.result.Filename))
	b.WriteString("\n")
	b.WriteString(components.InfoRow("MD5", shortMD5(m.result.MD5)))
	b.WriteString("\n")
	if m.result.Exists {
		b.WriteString(WarningStyle.Render("Already in the library; editing its stored tags."))
	} else if m.result.Message != "" {
		b.WriteString(MutedStyle.Render(components.SanitizeInline(m.result.Message)))
	}
	b.WriteString("\n\n")
	b.WriteString(MetaKeyStyle.Render("Tags"))
	b.WriteString("\n")
	b.WriteString(components.Indent(m.tagLine.ViewWithCursor(m.step == uploadStepTags), 2))
	b.WriteString("\n\n")
	if m.step == uploadStepSaving {
		b.WriteString(MutedStyle.Render("Saving..."))
	} else {
		b.WriteString(MutedStyle.Render("ctrl+s: save · esc: discard"))
	}
	return b.String()
}

// atTop reports whether Up should hand control back to the tab bar.
func (m UploadModel) atTop() bool {
	return !m.tagLine.Open()
}

func (m *UploadModel) setSize(width, height int) {
	m.width = width
	m.height = height
	m.tagLine.SetWidth(components.BoxContentWidth(width) - 4)
}

func appendChar(target *string, msg tea.KeyMsg) {
	ch := msg.String()
	if len(ch) == 1 || ch == " " {
		*target += ch
	}
}

func dropLastRune(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return string(runes[:len(runes)-1])
}

func renderTextField(b *strings.Builder, value string, focused bool) {
	if value == "" && !focused {
		b.WriteString(NormalStyle.Render("  -"))
		return
	}
	if focused {
		b.WriteString(NormalStyle.Render("  " + value + AccentStyle.Render("█")))
		return
	}
	b.WriteString(NormalStyle.Render("  " + value))
}
