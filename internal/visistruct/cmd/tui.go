package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/danofsteel32/visistruct"
	"github.com/danofsteel32/visistruct/internal/ui/render"
)

type viewMode int

const (
	viewTree viewMode = iota
	viewHex
)

// annotatedMsg carries the finished annotation into the TUI.
type annotatedMsg struct {
	root *visistruct.FieldAnnotation
	raw  []byte
	err  error
}

type model struct {
	treeView    viewport.Model
	hexView     viewport.Model
	spinner     spinner.Model
	mode        viewMode
	profilePath string
	filePath    string
	hexWidth    int
	root        *visistruct.FieldAnnotation
	raw         []byte
	loading     bool
	err         error
	width       int
	height      int
}

func NewModel(profilePath, filePath string, hexWidth int) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	hv := viewport.New()
	hv.SetWidth(80)
	hv.SetHeight(24)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	return model{
		treeView:    vp,
		hexView:     hv,
		spinner:     s,
		mode:        viewTree,
		profilePath: profilePath,
		filePath:    filePath,
		hexWidth:    hexWidth,
		loading:     true,
		width:       80,
		height:      24,
	}
}

func annotateCmd(profilePath, filePath string) tea.Cmd {
	return func() tea.Msg {
		root, raw, err := loadAndAnnotate(profilePath, filePath)
		return annotatedMsg{root: root, raw: raw, err: err}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		annotateCmd(m.profilePath, m.filePath),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case annotatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.root = msg.root
		m.raw = msg.raw
		m.refreshContent()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.treeView.SetWidth(msg.Width)
			m.treeView.SetHeight(msg.Height - 2)
			m.hexView.SetWidth(msg.Width)
			m.hexView.SetHeight(msg.Height - 2)
			m.refreshContent()
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "t":
			m.mode = viewTree
			return m, nil
		case "x":
			m.mode = viewHex
			return m, nil
		case "tab":
			if m.mode == viewTree {
				m.mode = viewHex
			} else {
				m.mode = viewTree
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.mode {
	case viewHex:
		m.hexView, cmd = m.hexView.Update(msg)
	default:
		m.treeView, cmd = m.treeView.Update(msg)
	}
	return m, cmd
}

func (m *model) refreshContent() {
	if m.root == nil {
		return
	}
	width := m.hexWidth
	if width <= 0 {
		// Each byte renders as a 4-char cell.
		width = (m.width - 2) / 4
		if width < 4 {
			width = render.DefaultHexWidth
		}
	}
	m.treeView.SetContent(render.Tree(m.root))
	m.hexView.SetContent(render.HexDump(m.root, m.raw, width))
}

func (m model) View() string {
	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
		return errStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n\n Q: quit \n"
	}
	if m.loading {
		return fmt.Sprintf("\n %s Annotating %s...\n", m.spinner.View(), m.filePath)
	}

	var content string
	switch m.mode {
	case viewHex:
		content = m.hexView.View()
	default:
		content = m.treeView.View()
	}

	var menu string
	switch m.mode {
	case viewHex:
		menu = " T: tree • Tab: cycle • Q: quit "
	default:
		menu = " X: hex • Tab: cycle • Q: quit "
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}
