package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/tagdex/internal/api"
	"github.com/gravitrone/tagdex/internal/config"
	"github.com/gravitrone/tagdex/internal/ui/components"
)

// --- Tab Constants ---

const (
	tabSearch   = 0
	tabBrowse   = 1
	tabTag      = 2
	tabUpload   = 3
	tabLibrary  = 4
	tabTransfer = 5
	tabCount    = 6
)

var tabNames = []string{"Search", "Browse", "Tag", "Upload", "Library", "Transfer"}

// --- Messages ---

type errMsg struct{ err error }
type clearToastMsg struct{}
type startupCheckedMsg struct {
	apiErr string
	libErr string
}

type startupSummary struct {
	API     string
	Library string
	Done    bool
}

type appToast struct {
	level string
	text  string
}

// --- App Model ---

// App is the root TUI model that routes between tabs.
type App struct {
	client   *api.Client
	config   *config.Config
	overlays *components.OverlayManager
	tab      int
	tabNav   bool
	width    int
	height   int
	err      string
	helpOpen bool

	quitConfirm     bool
	startupChecking bool
	startup         startupSummary
	toast           *appToast

	search   SearchModel
	browse   BrowseModel
	tagging  TaggingModel
	upload   UploadModel
	library  LibraryModel
	transfer TransferModel
}

// NewApp creates the root application model. All suggestion lists share one
// overlay manager so at most one is ever open.
func NewApp(client *api.Client, cfg *config.Config) App {
	overlays := components.NewOverlayManager()
	opts := components.Options{
		QuietPeriod: cfg.QuietPeriod(),
		MaxRows:     suggestLimit,
	}
	page := cfg.Page()
	return App{
		client:          client,
		config:          cfg,
		overlays:        overlays,
		tab:             tabSearch,
		tabNav:          true,
		startupChecking: client != nil,
		startup: startupSummary{
			API:     "checking",
			Library: "checking",
		},
		search:   NewSearchModel(client, overlays, opts, page),
		browse:   NewBrowseModel(client, overlays, opts, page),
		tagging:  NewTaggingModel(client, overlays, opts),
		upload:   NewUploadModel(client, overlays, opts),
		library:  NewLibraryModel(client, overlays, opts, page),
		transfer: NewTransferModel(client),
	}
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.search.Init()}
	if a.startupChecking {
		cmds = append(cmds, a.runStartupCheckCmd())
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.search.setSize(msg.Width, msg.Height)
		a.browse.setSize(msg.Width, msg.Height)
		a.tagging.setSize(msg.Width, msg.Height)
		a.upload.setSize(msg.Width, msg.Height)
		a.library.setSize(msg.Width, msg.Height)
		a.transfer.setSize(msg.Width, msg.Height)
		return a, nil

	case tea.MouseMsg:
		// Any press outside a suggestion row dismisses open lists.
		if msg.Action == tea.MouseActionPress {
			a.overlays.CloseAll()
		}
		return a, nil

	case errMsg:
		a.err = msg.err.Error()
		// Fall through to the active tab so in-flight states can settle.

	case clearToastMsg:
		a.toast = nil
		return a, nil

	case startupCheckedMsg:
		a.startupChecking = false
		a.startup.Done = true
		a.startup.API = classifyStartupAPI(msg.apiErr)
		if a.startup.API == "ok" {
			a.startup.Library = classifyStartupLibrary(msg.libErr)
		} else {
			a.startup.Library = "failed"
		}
		level, text := startupToastCopy(a.startup)
		return a, a.setToast(level, text)

	case tea.KeyMsg:
		if a.quitConfirm {
			switch {
			case isKey(msg, "y"):
				return a, tea.Quit
			case isKey(msg, "n"), isBack(msg):
				a.quitConfirm = false
			}
			return a, nil
		}
		if a.helpOpen {
			if isBack(msg) || isKey(msg, "?") {
				a.helpOpen = false
			}
			return a, nil
		}
		if a.err != "" {
			a.err = ""
		}

		// Global keys. Quit is unconditional; the rest stay out of the way
		// while a text field is receiving runes.
		if isQuit(msg) {
			if a.hasUnsaved() {
				a.quitConfirm = true
				return a, nil
			}
			return a, tea.Quit
		}
		if a.tabNav || !a.typingContext() {
			if isKey(msg, "?") {
				a.helpOpen = true
				return a, nil
			}
			if idx, ok := tabIndexForKey(msg.String()); ok {
				app, cmd := a.switchTab(idx)
				return app, cmd
			}
		}

		// Arrow tab navigation until user enters content with Down
		if a.tabNav {
			if isKey(msg, "left") {
				newTab := (a.tab - 1 + tabCount) % tabCount
				app, cmd := a.switchTab(newTab)
				return app, cmd
			}
			if isKey(msg, "right") {
				newTab := (a.tab + 1) % tabCount
				app, cmd := a.switchTab(newTab)
				return app, cmd
			}
			if isDown(msg) {
				a.tabNav = false
				return a, nil
			}

			// Any other key exits tab nav so the active tab can handle it.
			a.tabNav = false
		} else {
			if isUp(msg) && a.canExitToTabNav() {
				a.tabNav = true
				return a, nil
			}
		}
	}

	// Delegate to active tab
	var cmd tea.Cmd
	switch a.tab {
	case tabSearch:
		a.search, cmd = a.search.Update(msg)
	case tabBrowse:
		a.browse, cmd = a.browse.Update(msg)
	case tabTag:
		a.tagging, cmd = a.tagging.Update(msg)
	case tabUpload:
		a.upload, cmd = a.upload.Update(msg)
	case tabLibrary:
		a.library, cmd = a.library.Update(msg)
	case tabTransfer:
		a.transfer, cmd = a.transfer.Update(msg)
	}
	toastCmd := a.toastCmdForMsg(msg)
	if toastCmd != nil && cmd != nil {
		return a, tea.Batch(cmd, toastCmd)
	}
	if toastCmd != nil {
		return a, toastCmd
	}
	return a, cmd
}

func (a App) View() string {
	banner := centerBlockUniform(RenderBanner(), a.width)
	tabs := centerBlockUniform(a.renderTabs(), a.width)
	startupPanel := ""
	if a.startupChecking {
		startupPanel = "\n\n" + centerBlockUniform(a.renderStartupPanel(), a.width)
	}

	var content string
	switch a.tab {
	case tabSearch:
		content = a.search.View()
	case tabBrowse:
		content = a.browse.View()
	case tabTag:
		content = a.tagging.View()
	case tabUpload:
		content = a.upload.View()
	case tabLibrary:
		content = a.library.View()
	case tabTransfer:
		content = a.transfer.View()
	}
	content = centerBlockUniform(content, a.width)

	if a.quitConfirm {
		content = a.renderQuitConfirm()
		content = centerBlockUniform(content, a.width)
	} else if a.helpOpen {
		content = a.renderHelp()
		content = centerBlockUniform(content, a.width)
	}

	hints := components.StatusBar(a.statusHints(), a.width)

	feedback := ""
	if a.err != "" {
		feedback = "\n\n" + centerBlockUniform(components.ErrorBox("Error", a.err, a.width), a.width)
	} else if a.toast != nil {
		feedback = "\n\n" + centerBlockUniform(a.renderToast(), a.width)
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s\n\n\n%s%s", banner, tabs, startupPanel, content, hints, feedback)
}

func (a *App) switchTab(newTab int) (App, tea.Cmd) {
	oldTab := a.tab
	a.tab = newTab
	a.overlays.CloseAll()
	if oldTab != newTab {
		return *a, a.initTab(newTab)
	}
	return *a, nil
}

func (a App) renderTabs() string {
	segments := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := name
		if i == a.tab {
			segments = append(segments, TabActiveStyle.Render(label))
		} else {
			segments = append(segments, TabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, segments...)
}

func (a App) initTab(tab int) tea.Cmd {
	switch tab {
	case tabSearch:
		return a.search.Init()
	case tabBrowse:
		return a.browse.Init()
	case tabTag:
		return a.tagging.Init()
	case tabLibrary:
		return a.library.Init()
	}
	return nil
}

// typingContext reports whether the active tab is feeding plain runes into a
// text field, in which case digit and "?" shortcuts must not fire.
func (a App) typingContext() bool {
	switch a.tab {
	case tabSearch:
		return a.search.focus != searchFocusResults
	case tabBrowse:
		return a.browse.focus == browseFocusFilter
	case tabTag:
		return a.tagging.focus == taggingFocusLine && a.tagging.current != nil
	case tabUpload:
		return a.upload.step == uploadStepPath || a.upload.step == uploadStepTags
	case tabLibrary:
		if a.library.view != libraryViewList {
			return true
		}
		return a.library.focus == libraryFocusFilter
	case tabTransfer:
		return a.transfer.step == transferStepPath
	}
	return false
}

func (a App) canExitToTabNav() bool {
	switch a.tab {
	case tabSearch:
		return a.search.atTop()
	case tabBrowse:
		return a.browse.atTop()
	case tabTag:
		return a.tagging.atTop()
	case tabUpload:
		return a.upload.atTop()
	case tabLibrary:
		return a.library.atTop()
	case tabTransfer:
		return a.transfer.atTop()
	}
	return false
}

// hasUnsaved reports whether quitting now would drop edits in progress.
func (a App) hasUnsaved() bool {
	if a.tagging.dirty() {
		return true
	}
	if a.upload.step == uploadStepTags {
		return true
	}
	if a.library.view == libraryViewSynonyms {
		return true
	}
	return false
}

func (a App) statusHints() []string {
	if a.quitConfirm {
		return []string{
			components.Hint("y", "Confirm"),
			components.Hint("n", "Cancel"),
		}
	}
	if a.helpOpen {
		return []string{
			components.Hint("esc", "Back"),
		}
	}
	return a.statusHintsForTab()
}

func (a App) statusHintsForTab() []string {
	base := []string{
		components.Hint("1-6", "Tabs"),
		components.Hint("?", "Help"),
		components.Hint("ctrl+c", "Quit"),
	}

	switch a.tab {
	case tabSearch:
		return append(base,
			components.Hint("↑/↓", "Field/Scroll"),
			components.Hint("enter", "Search"),
			components.Hint("n/p", "Page"),
			components.Hint("esc", "Clear"),
		)
	case tabBrowse:
		if a.browse.confirmDelete {
			return append(base,
				components.Hint("y", "Confirm"),
				components.Hint("n", "Cancel"),
			)
		}
		return append(base,
			components.Hint("tab", "Filter"),
			components.Hint("↑/↓", "Scroll"),
			components.Hint("d", "Delete"),
			components.Hint("n/p", "Page"),
		)
	case tabTag:
		if a.tagging.confirmDelete {
			return append(base,
				components.Hint("y", "Confirm"),
				components.Hint("n", "Cancel"),
			)
		}
		return append(base,
			components.Hint("ctrl+s", "Save"),
			components.Hint("ctrl+n", "Skip"),
			components.Hint("ctrl+d", "Delete"),
			components.Hint("tab", "Queue"),
			components.Hint("space", "Toggle"),
			components.Hint("esc", "Revert"),
		)
	case tabUpload:
		switch a.upload.step {
		case uploadStepTags:
			return append(base,
				components.Hint("ctrl+s", "Save"),
				components.Hint("esc", "Discard"),
			)
		case uploadStepDone:
			return append(base,
				components.Hint("esc", "New Upload"),
			)
		default:
			return append(base,
				components.Hint("enter", "Upload"),
				components.Hint("esc", "Clear"),
			)
		}
	case tabLibrary:
		if a.library.confirmDelete || a.library.confirmSyn {
			return append(base,
				components.Hint("y", "Confirm"),
				components.Hint("n", "Cancel"),
			)
		}
		switch a.library.view {
		case libraryViewAdd:
			return append(base,
				components.Hint("enter", "Add"),
				components.Hint("esc", "Back"),
			)
		case libraryViewSynonyms:
			return append(base,
				components.Hint("ctrl+s", "Save"),
				components.Hint("esc", "Cancel"),
			)
		default:
			return append(base,
				components.Hint("↑/↓", "Scroll"),
				components.Hint("enter", "Synonyms"),
				components.Hint("d", "Delete"),
				components.Hint("tab", "Add"),
				components.Hint("n/p", "Page"),
			)
		}
	case tabTransfer:
		switch a.transfer.step {
		case transferStepPath:
			return append(base,
				components.Hint("enter", "Run"),
				components.Hint("esc", "Back"),
			)
		case transferStepResult:
			return append(base,
				components.Hint("esc", "Back"),
			)
		default:
			return append(base,
				components.Hint("↑/↓", "Mode"),
				components.Hint("enter", "Select"),
			)
		}
	}
	return base
}

func (a App) renderHelp() string {
	hints := a.statusHintsForTab()
	lines := make([]string, 0, len(hints)+2)
	lines = append(lines, MutedStyle.Render("esc to close"))
	lines = append(lines, "")
	for _, hint := range hints {
		lines = append(lines, "  "+hint)
	}
	body := strings.Join(lines, "\n")
	return components.Indent(components.TitledBox("Help", body, a.width), 1)
}

func (a App) renderQuitConfirm() string {
	body := "You have unsaved changes. Quit anyway?"
	return components.Indent(components.ConfirmDialog("Quit", body), 1)
}

func (a App) runStartupCheckCmd() tea.Cmd {
	return func() tea.Msg {
		checkClient := a.client.WithTimeout(700 * time.Millisecond)

		msg := startupCheckedMsg{}
		if err := checkClient.Ping(); err != nil {
			msg.apiErr = err.Error()
			return msg
		}
		if _, err := checkClient.CommonTags("", 1, 0); err != nil {
			msg.libErr = err.Error()
		}
		return msg
	}
}

func (a *App) setToast(level, text string) tea.Cmd {
	a.toast = &appToast{
		level: level,
		text:  components.SanitizeInline(text),
	}
	return tea.Tick(2500*time.Millisecond, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	title := "Info"
	switch a.toast.level {
	case "success":
		title = "Success"
	case "warning":
		title = "Warning"
	case "error":
		return components.ErrorBox("Error", a.toast.text, a.width)
	}
	return components.TitledBox(title, a.toast.text, a.width)
}

func (a App) renderStartupPanel() string {
	rows := []components.TableRow{
		{Label: "API", Value: a.startup.API, ValueColor: startupStatusColor(a.startup.API)},
		{Label: "Library", Value: a.startup.Library, ValueColor: startupStatusColor(a.startup.Library)},
	}
	return components.Table("Startup Checks", rows, a.width)
}

func (a *App) toastCmdForMsg(msg tea.Msg) tea.Cmd {
	var level, text string
	switch msg := msg.(type) {
	case tagsSavedMsg:
		level, text = "success", "Tags saved."
	case uploadSavedMsg:
		level, text = "success", "Tags saved."
	case imageDeletedMsg:
		level, text = "success", "Image deleted."
	case libraryTagAddedMsg:
		level, text = "success", "Tag added."
	case libraryTagDeletedMsg:
		level, text = "success", "Tag deleted."
	case librarySynonymsSavedMsg:
		level, text = "success", "Synonyms updated."
	case transferDoneMsg:
		level, text = "success", msg.summary
	}
	if text == "" {
		return nil
	}
	return a.setToast(level, text)
}

func classifyStartupAPI(errText string) string {
	if strings.TrimSpace(errText) == "" {
		return "ok"
	}
	lower := strings.ToLower(errText)
	if strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded") {
		return "timeout"
	}
	return "down"
}

func classifyStartupLibrary(errText string) string {
	if strings.TrimSpace(errText) == "" {
		return "ok"
	}
	return "failed"
}

func startupToastCopy(summary startupSummary) (string, string) {
	if summary.API == "ok" && summary.Library == "ok" {
		return "success", "Startup checks passed: API and tag library are reachable."
	}
	if summary.API != "ok" {
		return "error", fmt.Sprintf("Startup checks failed: API is %s.", summary.API)
	}
	return "warning", fmt.Sprintf("Startup checks: library=%s.", summary.Library)
}

func startupStatusColor(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ok":
		return string(ColorSuccess)
	case "checking":
		return string(ColorMuted)
	case "timeout":
		return string(ColorWarning)
	case "down", "failed":
		return string(ColorError)
	default:
		return string(ColorMuted)
	}
}

func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	maxWidth := 0
	for _, line := range lines {
		w := lipgloss.Width(line)
		if w > maxWidth {
			maxWidth = w
		}
	}
	if maxWidth <= 0 || maxWidth >= width {
		return s
	}
	pad := (width - maxWidth) / 2
	if pad <= 0 {
		return s
	}
	prefix := strings.Repeat(" ", pad)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func tabIndexForKey(key string) (int, bool) {
	switch key {
	case "1", "2", "3", "4", "5", "6":
		idx := int(key[0] - '1')
		if idx >= 0 && idx < tabCount {
			return idx, true
		}
	}
	return 0, false
}
