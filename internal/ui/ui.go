package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lbsync/internal/formatter"
	"github.com/desertthunder/lbsync/internal/tasks"
)

const maxLogLines = 8

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SyncView ViewState = iota
	ResultView
)

// Engine runs one reconciliation. Satisfied by [*tasks.SyncEngine].
type Engine interface {
	Run(ctx context.Context, opts tasks.SyncOpts, progress chan<- tasks.ProgressUpdate) (*tasks.SyncResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	engine       Engine
	opts         tasks.SyncOpts
	view         ViewState
	width        int
	height       int
	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	done         chan syncOutcome
	progress     tasks.ProgressUpdate
	lines        []string
	result       *tasks.SyncResult
	err          error
	changes      list.Model
	quitting     bool
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model that will run engine with opts.
func NewModel(ctx context.Context, engine Engine, opts tasks.SyncOpts) *Model {
	ctx, cancel := context.WithCancel(ctx)
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title.UnsetMarginBottom()

	return &Model{
		ctx:     ctx,
		cancel:  cancel,
		engine:  engine,
		opts:    opts,
		view:    SyncView,
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Result returns the finished run, if any.
func (m *Model) Result() (*tasks.SyncResult, error) {
	return m.result, m.err
}

// Init starts the sync and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startSync())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == ResultView {
			m.changes.SetSize(msg.Width-4, msg.Height-12)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			if m.view == SyncView {
				// quit once the engine has observed the cancellation
				m.quitting = true
				return m, nil
			}
			return m, tea.Quit
		}
		if m.view == ResultView {
			var cmd tea.Cmd
			m.changes, cmd = m.changes.Update(msg)
			return m, cmd
		}
		return m, nil

	case spinner.TickMsg:
		if m.view != SyncView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			update := msg.data.(tasks.ProgressUpdate)
			m.progress = update
			m.lines = append(m.lines, update.Message)
			if len(m.lines) > maxLogLines {
				m.lines = m.lines[len(m.lines)-maxLogLines:]
			}
			return m, m.waitForProgress()

		case MsgSyncComplete:
			outcome := msg.data.(syncOutcome)
			m.result = outcome.result
			m.err = outcome.err
			m.view = ResultView
			m.progressChan = nil
			m.done = nil
			if m.quitting {
				return m, tea.Quit
			}
			if m.result != nil {
				m.changes = list.New(changeItems(m.result.Report()), list.NewDefaultDelegate(), m.width-4, max(m.height-12, 5))
				m.changes.Title = "Changes"
				m.changes.SetShowHelp(false)
			}
			return m, nil
		}
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 100)
	m.done = make(chan syncOutcome, 1)

	progress, done := m.progressChan, m.done
	go func() {
		result, err := m.engine.Run(m.ctx, m.opts, progress)
		close(progress)
		done <- syncOutcome{result: result, err: err}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		if progress == nil {
			return nil
		}

		update, ok := <-progress
		if !ok {
			outcome := <-done
			return syncCompleteMsg(outcome.result, outcome.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSync() string {
	mode := "Syncing"
	if m.opts.DryRun {
		mode = "Previewing"
	}
	title := styles.title.Render(fmt.Sprintf("%s list %s", mode, m.opts.ListID))

	phase := m.progress.Phase.String()
	if phase == "" {
		phase = "starting"
	}
	status := fmt.Sprintf("%s %s", m.spinner.View(), phase)
	if m.progress.Total > 0 {
		status = fmt.Sprintf("%s (%d/%d)", status, m.progress.Step, m.progress.Total)
	}

	hint := "q to cancel"
	if m.quitting {
		hint = "cancelling..."
	}
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, status, strings.Join(m.lines, "\n"), styles.help.Render(hint))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Sync failed: %v", m.err)), helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	report := m.result.Report()
	title := styles.ok.Render("✓ " + formatter.Outcome(report))
	info := fmt.Sprintf(
		"\nList: %s\nCandidates: %d (resolved %d, cached %d, looked up %d)\nRemote films: %d\nAdd: %d  Remove: %d  Dropped: %d",
		report.ListID,
		report.Candidates,
		report.Resolved,
		report.CacheHits,
		report.Lookups,
		report.RemoteCount,
		len(report.ToAdd),
		len(report.ToRemove),
		len(report.Dropped),
	)

	var warning string
	if !report.DryRun && !report.CacheSaved {
		warning = "\n" + styles.warn.Render("Cache was not saved")
	}

	body := ""
	if len(m.changes.Items()) > 0 {
		body = "\n\n" + m.changes.View()
	}

	return fmt.Sprintf("%s\n%s%s%s\n\n%s", title, info, warning, body, helpView)
}

// Run shows the TUI until the user quits and returns the sync outcome.
func Run(ctx context.Context, engine Engine, opts tasks.SyncOpts) (*tasks.SyncResult, error) {
	model := NewModel(ctx, engine, opts)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return nil, fmt.Errorf("failed to run TUI: %w", err)
	}
	return model.Result()
}
