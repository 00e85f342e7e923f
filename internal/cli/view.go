package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orbit/pkg/datasource"
	"github.com/matzehuels/orbit/pkg/diagram"
	"github.com/matzehuels/orbit/pkg/hierarchy"
	"github.com/matzehuels/orbit/pkg/scene"
)

// frameInterval drives the animation clock; ~30fps is plenty for a
// terminal surface.
const frameInterval = 33 * time.Millisecond

// Terminal cells are roughly half as wide as they are tall; the factors
// map cell counts onto the virtual pixel space the layout works in.
const (
	cellWidthPx  = 8.0
	cellHeightPx = 16.0
)

// Node styles by scene class.
var (
	viewActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewSiblingStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	viewFadedStyle    = lipgloss.NewStyle().Foreground(colorDim)
	viewCursorStyle   = lipgloss.NewStyle().Foreground(colorYellow)
	viewStatusStyle   = lipgloss.NewStyle().Foreground(colorGray)
	viewEnteringStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Messages
// =============================================================================

type frameMsg time.Time

// treeMsg delivers a live snapshot from the stream source.
type treeMsg struct{ tree *hierarchy.Tree }

// diagramErrMsg surfaces recoverable diagram failures in the status bar.
type diagramErrMsg struct{ err error }

// =============================================================================
// ViewModel - Interactive radial view
// =============================================================================

// ViewModel is the bubbletea model driving an interactive diagram.
type ViewModel struct {
	diagram *diagram.Diagram
	surface *scene.MemorySurface

	order  []string // depth-first node order, rebuilt on data change
	cursor int

	width  int
	height int
	status string
}

// NewViewModel builds the model around an existing diagram instance.
func NewViewModel(d *diagram.Diagram, surface *scene.MemorySurface) ViewModel {
	m := ViewModel{diagram: d, surface: surface}
	m.rebuildOrder()
	return m
}

func (m *ViewModel) rebuildOrder() {
	m.order = m.order[:0]
	t := m.diagram.Store().Data()
	if t == nil {
		return
	}
	var walk func(id string)
	walk = func(id string) {
		m.order = append(m.order, id)
		for _, cid := range t.Children(id) {
			walk(cid)
		}
	}
	if root := t.Root(); root != nil {
		walk(root.ID)
	}
	if m.cursor >= len(m.order) {
		m.cursor = 0
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m ViewModel) Init() tea.Cmd {
	return frameTick()
}

func (m ViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.diagram.Coordinator().Step(time.Time(msg))
		return m, frameTick()

	case treeMsg:
		if err := m.diagram.SetData(msg.tree); err != nil {
			m.status = err.Error()
		} else {
			m.rebuildOrder()
			m.status = "snapshot updated"
		}
		return m, nil

	case diagramErrMsg:
		m.status = msg.err.Error()
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.diagram.Resize(float64(msg.Width)*cellWidthPx, float64(msg.Height)*cellHeightPx)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m ViewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.order)-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.cursor < len(m.order) {
			if err := m.diagram.Select(m.order[m.cursor]); err != nil {
				m.status = err.Error()
			} else {
				m.status = ""
			}
		}
	case "esc":
		if err := m.diagram.Select(""); err != nil {
			m.status = err.Error()
		}
	case "+", "=":
		m.zoomBy(1.25)
	case "-", "_":
		m.zoomBy(0.8)
	case "f":
		if err := m.diagram.ZoomToFit(); err != nil {
			m.status = err.Error()
		}
	case "z":
		if m.cursor < len(m.order) {
			if err := m.diagram.ZoomToNode(m.order[m.cursor]); err != nil {
				m.status = err.Error()
			}
		}
	}
	return m, nil
}

func (m *ViewModel) zoomBy(factor float64) {
	level := m.diagram.Viewport().Transform().Scale * factor
	if err := m.diagram.Zoom(level); err != nil {
		m.status = err.Error()
	}
}

func (m ViewModel) View() string {
	var b strings.Builder
	st := m.diagram.Store().State()

	title := StyleTitle.Render("orbit")
	zoom := viewStatusStyle.Render(fmt.Sprintf("zoom %.2fx", st.ZoomLevel))
	b.WriteString(title + "  " + zoom)
	if st.Transitioning {
		b.WriteString("  " + StyleWarning.Render("transitioning"))
	}
	b.WriteString("\n\n")

	t := m.diagram.Store().Data()
	if t == nil {
		b.WriteString(StyleDim.Render("  no data loaded\n"))
		return b.String()
	}

	for i, id := range m.order {
		n, ok := t.Node(id)
		if !ok {
			continue
		}
		cursor := "  "
		if i == m.cursor {
			cursor = viewCursorStyle.Render("› ")
		}
		b.WriteString(cursor + strings.Repeat("  ", n.Depth) + m.renderNode(n, st.SelectedID))
		b.WriteString("\n")
	}

	b.WriteString("\n" + m.statusLine())
	return b.String()
}

// renderNode styles a node line from its live scene element, so class
// changes and opacity fades show up as the animation steps.
func (m ViewModel) renderNode(n *hierarchy.Node, selected string) string {
	name := n.DisplayName()
	if n.ID == selected {
		name = "● " + name
	}

	el, ok := m.surface.Get("node:" + n.ID)
	if !ok {
		return viewEnteringStyle.Render(name)
	}
	style := viewSiblingStyle
	switch el.Class {
	case scene.ClassActive:
		style = viewActiveStyle
	case scene.ClassFaded:
		style = viewFadedStyle
	}
	// Mid-fade elements drop to the dim style until they settle.
	if el.Opacity < 0.5 {
		style = viewFadedStyle
	}
	return style.Render(name)
}

func (m ViewModel) statusLine() string {
	help := StyleDim.Render("↑/↓ move · enter select · esc clear · +/- zoom · z zoom node · f fit · q quit")
	if m.status == "" {
		return help
	}
	return StyleWarning.Render(m.status) + "\n" + help
}

// =============================================================================
// Command
// =============================================================================

// viewCommand creates the interactive terminal view command.
func (c *CLI) viewCommand() *cobra.Command {
	var flags sourceFlags
	var streamURL string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "View a radial diagram interactively in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if streamURL != "" {
				cfg.StreamURL = streamURL
			}

			tree, provider, err := c.loadTree(ctx, flags, cfg)
			if err != nil {
				return err
			}

			var program *tea.Program
			surface := scene.NewMemorySurface()
			opts := diagram.Options{
				Config:  cfg,
				Logger:  c.Logger,
				Surface: surface,
				Data:    tree,
				Host: diagram.Host{
					OnError: func(err error) {
						if program != nil {
							program.Send(diagramErrMsg{err: err})
						}
					},
				},
			}
			if provider != nil {
				opts.Provider = provider
			}
			d, err := diagram.New(opts)
			if err != nil {
				return err
			}
			defer d.Destroy()
			d.WithContext(ctx)

			program = tea.NewProgram(NewViewModel(d, surface), tea.WithContext(ctx))

			if cfg.StreamURL != "" {
				stream, err := datasource.NewStreamSource(datasource.StreamOptions{
					URL:    cfg.StreamURL,
					Logger: c.Logger,
				})
				if err != nil {
					return err
				}
				go func() {
					_ = stream.Run(ctx, func(t *hierarchy.Tree) {
						program.Send(treeMsg{tree: t})
					})
				}()
			}

			_, err = program.Run()
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&streamURL, "stream-url", "", "Websocket URL for live snapshot updates")
	return cmd
}
