package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/kwscan/internal/collector"
	"github.com/desertthunder/kwscan/internal/formatter"
	"github.com/desertthunder/kwscan/internal/models"
	"github.com/desertthunder/kwscan/internal/shared"
	"github.com/desertthunder/kwscan/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FormView ViewState = iota
	ResultView
)

// Form fields in focus order.
const (
	fieldKeywords = iota
	fieldFolder
	fieldWorkers
	fieldExact
	fieldCount
)

const chartWidth = 40

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	orchestrator *tasks.Orchestrator
	collect      func(string) (models.FileSet, error)
	logger       *log.Logger
	width        int
	height       int
	inputs       []textinput.Model
	focus        int
	exact        bool
	folder       string // Folder input value the current file set was collected from
	submitAfter  bool   // Start a search once the pending folder selection lands
	bar          progress.Model
	resultList   list.Model
	detail       viewport.Model
	updates      chan tasks.ProgressUpdate
	done         chan searchComplete
	state        tasks.RequestState
	response     *models.SearchResponse
	message      string
	help         help.Model
	keys         keyMap
}

// ModelOpts configures the initial form values of a [Model].
type ModelOpts struct {
	Orchestrator *tasks.Orchestrator
	Collect      func(string) (models.FileSet, error) // Defaults to [collector.Collect]
	Logger       *log.Logger
	Keywords     string
	Folder       string
	ExactMatch   bool
	Workers      int
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	if opts.Collect == nil {
		opts.Collect = collector.Collect
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	maxCores := opts.Orchestrator.MaxCores()
	workers := tasks.DefaultWorkerCount(maxCores)
	if opts.Workers > 0 {
		workers = tasks.ClampWorkers(opts.Workers, maxCores)
	}

	inputs := make([]textinput.Model, fieldExact)
	inputs[fieldKeywords] = newInput("error, warning, failed", opts.Keywords)
	inputs[fieldFolder] = newInput("path/to/folder", opts.Folder)
	inputs[fieldWorkers] = newInput(strconv.Itoa(workers), strconv.Itoa(workers))
	inputs[fieldWorkers].CharLimit = 4
	inputs[fieldKeywords].Focus()

	return &Model{
		ctx:          ctx,
		view:         FormView,
		orchestrator: opts.Orchestrator,
		collect:      opts.Collect,
		logger:       opts.Logger,
		inputs:       inputs,
		exact:        opts.ExactMatch,
		bar:          progress.New(progress.WithDefaultGradient(), progress.WithWidth(chartWidth)),
		detail:       viewport.New(0, 0),
		state:        opts.Orchestrator.State(),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.SetValue(value)
	return ti
}

// Init starts the cursor blink and collects the initial folder, if any.
func (m *Model) Init() tea.Cmd {
	if folder := strings.TrimSpace(m.inputs[fieldFolder].Value()); folder != "" {
		return tea.Batch(textinput.Blink, m.selectFolder(folder))
	}
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case FormView:
			return m.handleFormKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgFilesSelected:
		data := msg.data.(filesSelected)
		submit := m.submitAfter
		m.submitAfter = false
		if data.err != nil {
			m.logger.Warn("folder selection failed", "error", data.err)
			m.message = data.err.Error()
			m.folder = ""
			m.response = nil
			m.orchestrator.SelectFiles(models.FileSet{})
			m.state = m.orchestrator.State()
			return m, nil
		}

		m.orchestrator.SelectFiles(data.files)
		m.folder = strings.TrimSpace(m.inputs[fieldFolder].Value())
		m.response = nil
		m.state = m.orchestrator.State()
		m.message = ""
		if submit {
			return m, m.startSearch()
		}
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.state = update.State
		return m, waitForProgress(m.updates, m.done)

	case MsgSearchComplete:
		data := msg.data.(searchComplete)
		m.updates = nil
		m.done = nil
		m.state = m.orchestrator.State()

		if data.err != nil {
			m.response = nil
			var se *tasks.SearchError
			if errors.As(data.err, &se) {
				m.message = se.Message
			} else {
				m.message = data.err.Error()
			}
			return m, nil
		}

		m.message = ""
		m.response = data.response
		m.resultList = list.New(resultItems(data.response.Results), list.NewDefaultDelegate(), 0, 0)
		m.resultList.Title = fmt.Sprintf("Search Results (%d)", len(data.response.Results))
		m.resultList.SetShowHelp(false)
		m.resize()
		m.refreshDetail()
		m.view = ResultView
		return m, nil
	}

	return m, nil
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.next):
		return m, m.moveFocus(1)
	case key.Matches(msg, m.keys.prev):
		return m, m.moveFocus(-1)
	case key.Matches(msg, m.keys.submit):
		return m.submit()
	case m.focus == fieldExact && key.Matches(msg, m.keys.toggle):
		m.exact = !m.exact
		return m, nil
	case key.Matches(msg, m.keys.back) && m.response != nil:
		m.view = ResultView
		return m, nil
	}

	if m.focus == fieldExact {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "n":
		m.view = FormView
		return m, nil
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	m.refreshDetail()
	return m, cmd
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	if m.focus == fieldWorkers {
		m.normalizeWorkers()
	}
	if m.focus < fieldExact {
		m.inputs[m.focus].Blur()
	}

	m.focus = (m.focus + delta + fieldCount) % fieldCount
	if m.focus < fieldExact {
		return m.inputs[m.focus].Focus()
	}
	return nil
}

// normalizeWorkers rewrites a parseable worker count into [1, maxCores].
func (m *Model) normalizeWorkers() {
	if n, ok := tasks.ParseWorkers(m.inputs[fieldWorkers].Value()); ok {
		m.inputs[fieldWorkers].SetValue(strconv.Itoa(tasks.ClampWorkers(n, m.orchestrator.MaxCores())))
	}
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	if !m.state.CanSubmit() {
		return m, nil
	}

	folder := strings.TrimSpace(m.inputs[fieldFolder].Value())
	switch {
	case folder == "":
		m.folder = ""
		m.response = nil
		m.orchestrator.SelectFiles(models.FileSet{})
	case folder != m.folder:
		m.submitAfter = true
		return m, m.selectFolder(folder)
	}

	return m, m.startSearch()
}

func (m *Model) selectFolder(folder string) tea.Cmd {
	collect := m.collect
	return func() tea.Msg {
		files, err := collect(folder)
		return filesSelectedMsg(files, err)
	}
}

func (m *Model) startSearch() tea.Cmd {
	raw := tasks.RawParameters{
		Keywords:   m.inputs[fieldKeywords].Value(),
		ExactMatch: m.exact,
		Workers:    m.inputs[fieldWorkers].Value(),
	}

	m.message = ""
	m.state = tasks.RequestState{Kind: tasks.Validating}
	m.updates = make(chan tasks.ProgressUpdate, 64)
	m.done = make(chan searchComplete, 1)

	updates, done := m.updates, m.done
	go func() {
		resp, err := m.orchestrator.Submit(m.ctx, raw, updates)
		done <- searchComplete{response: resp, err: err}
		close(updates)
	}()

	return waitForProgress(updates, done)
}

func waitForProgress(updates <-chan tasks.ProgressUpdate, done <-chan searchComplete) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			result := <-done
			return searchCompleteMsg(result.response, result.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) resize() {
	if m.width == 0 {
		return
	}
	m.bar.Width = min(chartWidth, max(10, m.width-10))
	listHeight := max(5, (m.height-12)/2)
	if m.response != nil {
		m.resultList.SetSize(m.width-4, listHeight)
	}
	m.detail.Width = max(20, m.width-6)
	m.detail.Height = max(3, m.height-listHeight-14)
}

func (m *Model) refreshDetail() {
	item, ok := m.resultList.SelectedItem().(resultItem)
	if !ok {
		m.detail.SetContent("No matches found.")
		return
	}
	r := item.result
	m.detail.SetContent(fmt.Sprintf("%s\n%s\n\n%s",
		styles.focused.Render(r.File),
		styles.label.Render(r.Location),
		highlightKeywords(r.Content, r.Keywords),
	))
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case FormView:
		return m.renderForm()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderForm() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Parallel Keyword Search"))
	b.WriteString("\n")

	b.WriteString(m.renderField(fieldKeywords, "Keywords (comma separated)", ""))
	b.WriteString(m.renderField(fieldFolder, "Folder", m.selectionLabel()))
	b.WriteString(m.renderField(fieldWorkers, "Number of workers",
		fmt.Sprintf("Max available on your device: %d", m.orchestrator.MaxCores())))

	check := "[ ]"
	if m.exact {
		check = "[x]"
	}
	exact := fmt.Sprintf("%s Exact match", check)
	if m.focus == fieldExact {
		exact = styles.focused.Render(exact)
	}
	b.WriteString(exact + "\n\n")

	if m.state.CanSubmit() {
		b.WriteString(styles.ok.Render("[ Search ]"))
	} else {
		b.WriteString(styles.help.Render("[ Searching... ]"))
	}
	b.WriteString("\n\n")

	switch m.state.Kind {
	case tasks.Uploading:
		fmt.Fprintf(&b, "%s\nUploading... %d%%\n\n", m.bar.ViewAs(float64(m.state.Progress)/100), m.state.Progress)
	case tasks.AwaitingResponse:
		fmt.Fprintf(&b, "%s\nUpload complete, waiting for results...\n\n", m.bar.ViewAs(1))
	}

	if m.message != "" {
		b.WriteString(styles.err.Render("Error: "+m.message) + "\n\n")
	}

	helpKeys := []key.Binding{m.keys.next, m.keys.submit, m.keys.quit}
	if m.focus == fieldExact {
		helpKeys = append(helpKeys, m.keys.toggle)
	}
	if m.response != nil {
		helpKeys = append(helpKeys, key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "results")))
	}
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderField(field int, label, note string) string {
	title := styles.label.Render(label)
	if m.focus == field {
		title = styles.focused.Render(label)
	}
	out := title + "\n" + m.inputs[field].View() + "\n"
	if note != "" {
		out += styles.help.Render(note) + "\n"
	}
	return out + "\n"
}

func (m *Model) selectionLabel() string {
	files := m.orchestrator.Files()
	if files.Empty() || m.folder == "" {
		return ""
	}
	return fmt.Sprintf("%d files selected from %s", files.Len(), files.BaseName())
}

func (m *Model) renderResult() string {
	if m.response == nil {
		return styles.err.Render("No result available\n\nPress esc to go back, q to quit")
	}

	timing := m.response.Timing
	title := styles.title.Render("Speedup Comparison")
	chart := formatter.RenderChart(formatter.ChartSeries(timing), chartWidth)

	speedup := formatter.FormatSpeedup(timing)
	if speedup != formatter.SpeedupUnavailable {
		speedup += "x faster"
	}
	summary := fmt.Sprintf("%s\nSequential Time: %gs  Parallel Time: %gs",
		styles.ok.Render("⚡ Speedup: "+speedup), timing.Sequential, timing.Parallel)

	var body string
	if len(m.response.Results) == 0 {
		body = styles.warn.Render("No matches found.")
	} else {
		body = fmt.Sprintf("%s\n%s", m.resultList.View(), styles.box.Render(m.detail.View()))
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.back, key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))}
	return fmt.Sprintf("%s\n%s\n%s\n\n%s\n\n%s", title, chart, summary, body, m.help.ShortHelpView(helpKeys))
}

// highlightKeywords renders every case-insensitive occurrence of keywords in content.
func highlightKeywords(content string, keywords []string) string {
	terms := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			terms = append(terms, regexp.QuoteMeta(kw))
		}
	}
	if len(terms) == 0 {
		return content
	}

	re, err := regexp.Compile("(?i)" + strings.Join(terms, "|"))
	if err != nil {
		return content
	}
	return re.ReplaceAllStringFunc(content, func(s string) string {
		return styles.highlight.Render(s)
	})
}
