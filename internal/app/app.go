// Package app is the root Bubble Tea model of the terminal client.
package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/model"
	appsync "github.com/nhle/notification-center/internal/sync"
	"github.com/nhle/notification-center/internal/ui"
	helpview "github.com/nhle/notification-center/internal/ui/help"
	"github.com/nhle/notification-center/internal/ui/inbox"
	"github.com/nhle/notification-center/internal/ui/onboarding"
)

// Backend is a connected notification service.
type Backend interface {
	inbox.Service
	Close() error
}

// ConnectFunc builds a Backend for cfg. apiKey is empty when it should be
// looked up from the environment or keyring.
type ConnectFunc func(cfg model.AppConfig, apiKey string) (Backend, error)

// Options wires the root model.
type Options struct {
	Config     model.AppConfig
	ConfigPath string
	Connect    ConnectFunc

	// SaveAPIKey persists the key entered during onboarding.
	SaveAPIKey func(key string) error

	Logger *zap.Logger
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewOnboarding ViewState = iota
	ViewInbox
	ViewHelp
)

// connectedMsg reports the outcome of connecting to the backend.
type connectedMsg struct {
	backend Backend
	err     error
}

// Model is the root Bubble Tea model that manages view routing and the
// backend connection.
type Model struct {
	opts         Options
	cfg          model.AppConfig
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	backend      Backend
	poller       *appsync.Poller
	inbox        inbox.Model
	onboarding   onboarding.Model
	helpView     helpview.Model
	connected    bool
	ready        bool
	unread       int
	lastSync     string
	errMessage   string
}

// New creates the root model.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	k := keys.DefaultKeyMap()
	m := Model{
		opts:       opts,
		cfg:        opts.Config,
		keys:       k,
		layout:     ui.NewLayout(80, 24),
		onboarding: onboarding.New(opts.Config, 80, 22),
		helpView:   helpview.New(k, 80, 22),
	}
	if opts.Config.NeedsOnboarding() {
		m.currentView = ViewOnboarding
	} else {
		m.currentView = ViewInbox
	}
	return m
}

// Init starts onboarding or connects straight away.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewOnboarding {
		return m.onboarding.Init()
	}
	return m.connect(m.cfg, "")
}

func (m Model) connect(cfg model.AppConfig, apiKey string) tea.Cmd {
	connect := m.opts.Connect
	return func() tea.Msg {
		b, err := connect(cfg, apiKey)
		return connectedMsg{backend: b, err: err}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		h := m.layout.ContentHeight()
		if m.connected {
			m.inbox.SetSize(msg.Width, h)
		}
		m.onboarding.SetSize(msg.Width, h)
		m.helpView.SetSize(msg.Width, h)
		return m.updateActiveView(msg)

	case onboarding.DoneMsg:
		return m.finishOnboarding(msg)

	case onboarding.CancelMsg:
		return m, tea.Quit

	case connectedMsg:
		if msg.err != nil {
			m.errMessage = fmt.Sprintf("cannot connect: %v", msg.err)
			m.opts.Logger.Error("connecting to backend", zap.Error(msg.err))
			return m, nil
		}
		return m.startSession(msg.backend)

	case appsync.FeedMsg:
		m.unread = msg.Unread
		m.lastSync = msg.FetchedAt.Format("15:04:05")
		cmd := m.inbox.SetFeed(msg.Notifications, msg.Unread)
		return m, tea.Batch(cmd, m.poller.WaitForNextResult())

	case inbox.LoadedMsg:
		var cmd tea.Cmd
		m.inbox, cmd = m.inbox.Update(msg)
		m.unread = m.inbox.Unread()
		return m, cmd

	case inbox.MarkedMsg:
		var cmd tea.Cmd
		m.inbox, cmd = m.inbox.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.currentView == ViewOnboarding {
			break
		}

		switch msg.String() {
		case "q":
			return m.quit()

		case "?":
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case "esc":
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}

		case "r":
			if m.currentView == ViewInbox && m.connected {
				m.poller.Refresh()
				if m.inbox.Category() != "" {
					return m, m.inbox.Load(true)
				}
				return m, nil
			}
		}
	}

	return m.updateActiveView(msg)
}

func (m Model) finishOnboarding(msg onboarding.DoneMsg) (tea.Model, tea.Cmd) {
	m.cfg = msg.Config
	if m.opts.ConfigPath != "" {
		if err := model.SaveConfig(m.opts.ConfigPath, &m.cfg); err != nil {
			m.opts.Logger.Warn("saving config", zap.Error(err))
			m.errMessage = fmt.Sprintf("config not saved: %v", err)
		}
	}
	if msg.APIKey != "" && m.opts.SaveAPIKey != nil {
		if err := m.opts.SaveAPIKey(msg.APIKey); err != nil {
			m.opts.Logger.Warn("saving api key", zap.Error(err))
		}
	}
	m.currentView = ViewInbox
	return m, m.connect(m.cfg, msg.APIKey)
}

func (m Model) startSession(b Backend) (tea.Model, tea.Cmd) {
	m.backend = b
	m.connected = true
	m.errMessage = ""

	h := m.layout.ContentHeight()
	m.inbox = inbox.New(b, m.keys, m.cfg.Member.ID, m.cfg.Display.PageSize, m.layout.Width, h)
	m.poller = appsync.New(b, appsync.Options{
		MemberID: m.cfg.Member.ID,
		PageSize: m.cfg.Display.PageSize,
		Interval: secondsOrDefault(m.cfg.Display.PollIntervalSec),
		Logger:   m.opts.Logger,
	})

	return m, tea.Batch(m.inbox.Init(), m.poller.Start())
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.poller != nil {
		m.poller.Stop()
	}
	return m, tea.Quit
}

// Close releases the backend. Call it after the program exits.
func (m Model) Close() error {
	if m.backend == nil {
		return nil
	}
	return m.backend.Close()
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewOnboarding:
		m.onboarding, cmd = m.onboarding.Update(msg)
	case ViewInbox:
		if m.connected {
			m.inbox, cmd = m.inbox.Update(msg)
		}
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Notifications", m.unread, m.syncStatus())
	statusBar := m.layout.RenderStatusBar(m.keyHints())
	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewOnboarding:
		return m.onboarding.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		if !m.connected {
			return ""
		}
		return m.inbox.View()
	}
}

// syncStatus returns a short string describing the poller state.
func (m Model) syncStatus() string {
	switch {
	case !m.connected:
		return "offline"
	case m.poller.Status().State == appsync.SyncRunning:
		return "syncing"
	case m.lastSync != "":
		return "updated " + m.lastSync
	default:
		return "idle"
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.errMessage != "" {
		return m.errMessage
	}

	switch m.currentView {
	case ViewOnboarding:
		return "enter next | shift+tab back | ctrl+c quit"
	case ViewHelp:
		return "? close help | esc back"
	default:
		if s := m.inbox.Status(); s != "" && m.connected {
			return s
		}
		return "enter/m read | M read all | tab category | r refresh | ? help | q quit"
	}
}
