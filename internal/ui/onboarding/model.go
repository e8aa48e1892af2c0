// Package onboarding collects the settings needed before the first run.
package onboarding

import (
	"fmt"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notification-center/internal/model"
)

// DoneMsg is sent when the form completes. APIKey is empty in local mode.
type DoneMsg struct {
	Config model.AppConfig
	APIKey string
}

// CancelMsg is sent when the user aborts the form.
type CancelMsg struct{}

// Model wraps the onboarding form.
type Model struct {
	form *huh.Form
	base model.AppConfig

	// values is shared by copies of the model so the form's bound
	// pointers stay valid across Update calls.
	values *formValues

	width  int
	height int
}

type formValues struct {
	mode      string
	baseURL   string
	memberID  string
	apiKey    string
	localPath string
}

// New prepares an onboarding form prefilled from cfg.
func New(cfg model.AppConfig, width, height int) Model {
	v := &formValues{
		mode:      cfg.Backend.Mode,
		baseURL:   cfg.Backend.BaseURL,
		memberID:  cfg.Member.ID,
		localPath: cfg.Backend.LocalPath,
	}
	if v.mode == "" {
		v.mode = model.BackendRemote
	}
	return Model{base: cfg, values: v, width: width, height: height}
}

// Init builds the form and returns its init command.
func (m *Model) Init() tea.Cmd {
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	v := m.values
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Notification center setup").
				Description("Tell us where your notifications live."),
			huh.NewSelect[string]().
				Title("Backend").
				Options(
					huh.NewOption("Hosted backend (REST)", model.BackendRemote),
					huh.NewOption("Local SQLite file", model.BackendLocal),
				).
				Value(&v.mode),
			huh.NewInput().
				Title("Member ID").
				Description("The member whose notifications are shown").
				Value(&v.memberID).
				Validate(validateRequired("Member ID")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Placeholder("https://project.example.co").
				Value(&v.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("API key").
				Description("Stored in the system keyring").
				EchoMode(huh.EchoModePassword).
				Value(&v.apiKey).
				Validate(validateRequired("API key")),
		).WithHideFunc(func() bool { return v.mode != model.BackendRemote }),
		huh.NewGroup(
			huh.NewInput().
				Title("Database file").
				Placeholder(model.DefaultConfigDir()+"/notifications.db").
				Value(&v.localPath).
				Validate(validateRequired("Database file")),
		).WithHideFunc(func() bool { return v.mode != model.BackendLocal }),
	).WithWidth(m.formWidth())
}

// Update forwards msg to the form and reports completion.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		done := m.result()
		return m, func() tea.Msg { return done }
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// result applies the form values to the base configuration.
func (m Model) result() DoneMsg {
	v := m.values
	cfg := m.base
	cfg.Backend.Mode = v.mode
	cfg.Member.ID = strings.TrimSpace(v.memberID)

	out := DoneMsg{}
	if v.mode == model.BackendRemote {
		cfg.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(v.baseURL), "/")
		out.APIKey = strings.TrimSpace(v.apiKey)
	} else {
		cfg.Backend.LocalPath = strings.TrimSpace(v.localPath)
	}
	out.Config = cfg
	return out
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(m.form.View())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://example.com)")
	}
	return nil
}
