package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/tagdex/internal/api"
	"github.com/gravitrone/tagdex/internal/ui/components"
)

type transferMode int

const (
	transferExport transferMode = iota
	transferImport
)

type transferStep int

const (
	transferStepMode transferStep = iota
	transferStepPath
	transferStepRunning
	transferStepResult
)

type transferDoneMsg struct {
	summary string
	details []string
}

type transferErrorMsg struct {
	err error
}

var transferModes = []string{"Export library", "Import library"}

// TransferModel moves the whole library through local JSON files: export
// writes a dump, import replays one through the backend.
type TransferModel struct {
	client *api.Client

	mode      transferMode
	step      transferStep
	modeIndex int
	path      string
	summary   string
	details   []string
	errText   string

	width  int
	height int
}

// NewTransferModel builds the transfer UI model.
func NewTransferModel(client *api.Client) TransferModel {
	return TransferModel{client: client}
}

func (m TransferModel) Update(msg tea.Msg) (TransferModel, tea.Cmd) {
	switch msg := msg.(type) {
	case transferDoneMsg:
		m.step = transferStepResult
		m.summary = msg.summary
		m.details = msg.details
		return m, nil
	case transferErrorMsg:
		m.step = transferStepResult
		m.errText = msg.err.Error()
		return m, nil
	case tea.KeyMsg:
		switch m.step {
		case transferStepMode:
			return m.handleModeKeys(msg)
		case transferStepPath:
			return m.handlePathKeys(msg)
		case transferStepResult:
			if isBack(msg) || isEnter(msg) {
				m.reset()
			}
		}
	}
	return m, nil
}

func (m *TransferModel) reset() {
	m.step = transferStepMode
	m.path = ""
	m.summary = ""
	m.details = nil
	m.errText = ""
}

func (m TransferModel) handleModeKeys(msg tea.KeyMsg) (TransferModel, tea.Cmd) {
	switch {
	case isDown(msg):
		if m.modeIndex < len(transferModes)-1 {
			m.modeIndex++
		}
	case isUp(msg):
		if m.modeIndex > 0 {
			m.modeIndex--
		}
	case isEnter(msg):
		m.mode = transferMode(m.modeIndex)
		m.step = transferStepPath
	}
	return m, nil
}

func (m TransferModel) handlePathKeys(msg tea.KeyMsg) (TransferModel, tea.Cmd) {
	switch {
	case isBack(msg):
		m.step = transferStepMode
		m.path = ""
	case isEnter(msg):
		if strings.TrimSpace(m.path) == "" {
			return m, nil
		}
		m.step = transferStepRunning
		return m, m.run()
	case isKey(msg, "backspace", "delete"):
		m.path = dropLastRune(m.path)
	default:
		appendChar(&m.path, msg)
	}
	return m, nil
}

func (m TransferModel) run() tea.Cmd {
	mode := m.mode
	path := strings.TrimSpace(m.path)
	client := m.client

	return func() tea.Msg {
		if mode == transferImport {
			return runLibraryImport(client, path)
		}
		return runLibraryExport(client, path)
	}
}

func runLibraryImport(client *api.Client, path string) tea.Msg {
	result, err := client.ImportLibraryFile(path)
	if err != nil {
		return transferErrorMsg{err: err}
	}
	summary := result.Message
	if summary == "" {
		summary = "Library imported."
	}
	return transferDoneMsg{summary: summary}
}

func runLibraryExport(client *api.Client, path string) tea.Msg {
	snap, err := client.ExportLibrary()
	if err != nil {
		return transferErrorMsg{err: err}
	}
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return transferErrorMsg{err: err}
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return transferErrorMsg{err: err}
	}
	summary := fmt.Sprintf("Exported library to %s", path)
	details := []string{
		fmt.Sprintf("%d images", len(snap.Images)),
		fmt.Sprintf("%d common tags", len(snap.CommonTags)),
	}
	return transferDoneMsg{summary: summary, details: details}
}

func (m TransferModel) View() string {
	switch m.step {
	case transferStepMode:
		return components.Indent(components.TitledBox("Transfer", m.renderModeOptions(), m.width), 1)
	case transferStepPath:
		title := "Import file path"
		if m.mode == transferExport {
			title = "Export file path"
		}
		return components.Indent(components.InputDialog(title, m.path), 1)
	case transferStepRunning:
		label := "Importing..."
		if m.mode == transferExport {
			label = "Exporting..."
		}
		return components.Indent(components.Box(MutedStyle.Render(label), m.width), 1)
	case transferStepResult:
		if m.errText != "" {
			return components.Indent(components.ErrorBox("Transfer Failed", m.errText, m.width), 1)
		}
		body := m.summary
		if len(m.details) > 0 {
			body = body + "\n\n" + strings.Join(m.details, "\n")
		}
		body = body + "\n\n" + MutedStyle.Render("esc: back")
		return components.Indent(components.TitledBox("Transfer", body, m.width), 1)
	default:
		return ""
	}
}

func (m TransferModel) renderModeOptions() string {
	var b strings.Builder
	for i, opt := range transferModes {
		if i == m.modeIndex {
			b.WriteString(SelectedStyle.Render("  > " + opt))
		} else {
			b.WriteString(NormalStyle.Render("    " + opt))
		}
		if i < len(transferModes)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")
	b.WriteString(MutedStyle.Render("enter: select"))
	return b.String()
}

// atTop reports whether Up should hand control back to the tab bar.
func (m TransferModel) atTop() bool {
	return m.step == transferStepMode && m.modeIndex == 0
}

func (m *TransferModel) setSize(width, height int) {
	m.width = width
	m.height = height
}
