// Package config implements the interactive configuration editor opened by
// "amrex config" on a terminal.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/nicholasbl/amrex/internal/config"
	"github.com/nicholasbl/amrex/internal/tui/styles"
)

// fieldKind selects how a field is edited.
type fieldKind int

const (
	kindBool   fieldKind = iota // toggled in place
	kindInt                     // typed into the text input
	kindText                    // typed into the text input
	kindChoice                  // picked from options
)

// field is one editable configuration key.
type field struct {
	section string
	key     string
	label   string
	help    string
	kind    fieldKind
	options []string

	// def extracts the field's default from config.Default().
	def func(*config.Config) any
}

// fields lists every editable key in display order. Fields of one section
// are adjacent.
func fields() []field {
	return []field{
		{
			section: "Logging",
			key:     "logging.enabled",
			label:   "Job Log",
			help:    "Write the shared job log from every rank",
			kind:    kindBool,
			def:     func(c *config.Config) any { return c.Logging.Enabled },
		},
		{
			section: "Logging",
			key:     "logging.level",
			label:   "Log Level",
			help:    "Minimum level recorded in the job log",
			kind:    kindChoice,
			options: config.ValidLogLevels(),
			def:     func(c *config.Config) any { return c.Logging.Level },
		},
		{
			section: "Output",
			key:     "output.precision",
			label:   "Precision",
			help:    fmt.Sprintf("Significant digits of floating-point output (%d-%d)", config.MinPrecision, config.MaxPrecision),
			kind:    kindInt,
			def:     func(c *config.Config) any { return c.Output.Precision },
		},
		{
			section: "Launch",
			key:     "launch.nprocs",
			label:   "Ranks",
			help:    fmt.Sprintf("Default number of ranks for 'amrex launch' (1-%d)", config.MaxNProcs),
			kind:    kindInt,
			def:     func(c *config.Config) any { return c.Launch.NProcs },
		},
		{
			section: "Launch",
			key:     "launch.timeout_seconds",
			label:   "Timeout (s)",
			help:    "Terminate launched jobs after this many seconds (0 = no limit)",
			kind:    kindInt,
			def:     func(c *config.Config) any { return c.Launch.TimeoutSeconds },
		},
		{
			section: "Paths",
			key:     "paths.job_dir",
			label:   "Job Directory",
			help:    "Directory holding the job log (empty = .amrex)",
			kind:    kindText,
			def:     func(c *config.Config) any { return c.Paths.JobDir },
		},
	}
}

// Model is the bubbletea model of the editor.
type Model struct {
	fields []field
	cursor int

	width, height int

	editing  bool
	input    textinput.Model
	choice   int
	errorMsg string
	infoMsg  string
	quitting bool

	// save persists viper's settings; replaced in tests.
	save func() error
}

// New returns an editor over the current viper settings.
func New() Model {
	input := textinput.New()
	input.CharLimit = 256
	input.Width = 40

	return Model{
		fields: fields(),
		input:  input,
		save:   writeConfig,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		m.errorMsg, m.infoMsg = "", ""
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(m.fields)
	case "up", "k":
		m.cursor = (m.cursor + len(m.fields) - 1) % len(m.fields)
	case "tab":
		m.cursor = m.nextSection(1)
	case "shift+tab":
		m.cursor = m.nextSection(-1)
	case "enter", " ":
		m.beginEdit()
	case "r":
		f := m.current()
		if m.commit(f.key, f.def(config.Default())) {
			m.infoMsg = fmt.Sprintf("Reset %s to default", f.label)
		}
	}
	return m, nil
}

// nextSection returns the index of the first field of the section dir
// steps away from the current one, wrapping at either end.
func (m Model) nextSection(dir int) int {
	var starts []int
	for i, f := range m.fields {
		if i == 0 || f.section != m.fields[i-1].section {
			starts = append(starts, i)
		}
	}
	here := 0
	for i, start := range starts {
		if start <= m.cursor {
			here = i
		}
	}
	next := (here + dir + len(starts)) % len(starts)
	return starts[next]
}

func (m *Model) beginEdit() {
	f := m.current()
	switch f.kind {
	case kindBool:
		m.commit(f.key, !viper.GetBool(f.key))
	case kindChoice:
		m.editing = true
		m.choice = max(slices.Index(f.options, viper.GetString(f.key)), 0)
	default:
		m.editing = true
		m.input.SetValue(m.display(f))
		m.input.CursorEnd()
		m.input.Focus()
	}
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.current()

	switch msg.String() {
	case "esc":
		m.stopEdit()
		return m, nil
	case "enter":
		value, err := m.parse(f)
		if err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		if m.commit(f.key, value) {
			m.stopEdit()
		}
		return m, nil
	}

	if f.kind == kindChoice {
		switch msg.String() {
		case "down", "j":
			m.choice = (m.choice + 1) % len(f.options)
		case "up", "k":
			m.choice = (m.choice + len(f.options) - 1) % len(f.options)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) stopEdit() {
	m.editing = false
	m.input.Blur()
	m.input.SetValue("")
}

// parse converts the pending edit to the field's type.
func (m Model) parse(f field) (any, error) {
	switch f.kind {
	case kindChoice:
		return f.options[m.choice], nil
	case kindInt:
		n, err := cast.ToIntE(strings.TrimSpace(m.input.Value()))
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer", f.label)
		}
		return n, nil
	default:
		return m.input.Value(), nil
	}
}

// commit sets key to value if the resulting configuration validates, and
// saves it. A rejected value leaves viper unchanged and reports the
// validation error.
func (m *Model) commit(key string, value any) bool {
	previous := viper.Get(key)
	viper.Set(key, value)
	if _, err := config.Load(); err != nil {
		viper.Set(key, previous)
		m.errorMsg = err.Error()
		return false
	}
	if err := m.save(); err != nil {
		m.errorMsg = err.Error()
		return false
	}
	m.infoMsg = "Saved!"
	return true
}

func (m Model) current() field {
	return m.fields[m.cursor]
}

func (m Model) display(f field) string {
	if f.kind == kindBool {
		return cast.ToString(viper.GetBool(f.key))
	}
	return viper.GetString(f.key)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	path := viper.ConfigFileUsed()
	if path == "" {
		path = config.ConfigFile() + " (not created)"
	}
	parts := []string{
		styles.Header.Width(m.width - 4).Render("amrex Configuration"),
		styles.Muted.Render("Config file: " + path),
		"",
	}

	for i, f := range m.fields {
		if i == 0 || f.section != m.fields[i-1].section {
			if i > 0 {
				parts = append(parts, "")
			}
			heading := styles.Muted
			if f.section == m.current().section {
				heading = styles.Primary
			}
			parts = append(parts, heading.Bold(true).Render("[ "+f.section+" ]"))
		}
		parts = append(parts, m.renderField(f, i == m.cursor))
	}
	parts = append(parts, "")

	if m.editing {
		parts = append(parts, m.renderEditor())
	} else {
		parts = append(parts, styles.Muted.Render(m.current().help))
	}
	if m.errorMsg != "" {
		parts = append(parts, styles.ErrorMsg.Render("Error: "+m.errorMsg))
	}
	if m.infoMsg != "" {
		parts = append(parts, styles.SuccessMsg.Render(m.infoMsg))
	}
	parts = append(parts, m.renderHelp())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderField(f field, selected bool) string {
	label := fmt.Sprintf("%-24s", f.label)
	if selected {
		return "  " + styles.Secondary.Render(">") + " " +
			styles.Text.Bold(true).Render(label) + styles.Primary.Render(m.display(f))
	}
	return "    " + styles.Muted.Render(label) + styles.Text.Render(m.display(f))
}

func (m Model) renderEditor() string {
	f := m.current()
	var body []string
	if f.kind == kindChoice {
		body = append(body, "Select "+f.label+":", "")
		for i, opt := range f.options {
			if i == m.choice {
				body = append(body, styles.DropdownItemSelected.Render("> "+opt))
			} else {
				body = append(body, styles.DropdownItem.Render("  "+opt))
			}
		}
	} else {
		body = append(body, "Edit "+f.label+":", "", m.input.View())
	}
	return styles.EditBox.Render(lipgloss.JoinVertical(lipgloss.Left, body...))
}

func (m Model) renderHelp() string {
	keys := [][2]string{{"j/k", "navigate"}, {"tab", "next section"}, {"enter", "edit"}, {"r", "reset"}, {"q", "quit"}}
	if m.editing {
		keys = [][2]string{{"enter", "save"}, {"esc", "cancel"}}
	}
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(styles.HelpKey.Render(k[0]) + " " + k[1])
	}
	return styles.HelpBar.Render(b.String())
}

// writeConfig writes viper's settings to the user's config file.
func writeConfig() error {
	if err := os.MkdirAll(config.ConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(config.ConfigFile()); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Run starts the editor on the terminal.
func Run() error {
	_, err := tea.NewProgram(New(), tea.WithAltScreen()).Run()
	return err
}
