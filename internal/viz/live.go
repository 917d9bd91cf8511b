package viz

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/parallaxfield/internal/config"
	"github.com/san-kum/parallaxfield/internal/export"
	"github.com/san-kum/parallaxfield/internal/field"
	"github.com/san-kum/parallaxfield/internal/host"
	"github.com/san-kum/parallaxfield/internal/input"
	"github.com/san-kum/parallaxfield/internal/logging"
	"github.com/san-kum/parallaxfield/internal/render"
	"github.com/san-kum/parallaxfield/internal/renderer"
)

const (
	panelWidth      = 34
	historyCapacity = 240
	tiltStep        = 5.0
	minCols         = 10
	minRows         = 4
)

type TickMsg time.Time

// Options configures a live Model.
type Options struct {
	Config *config.Config
	// Cols and Rows are the terminal size in cells.
	Cols, Rows  int
	SnapshotDir string
}

// Model drives a renderer on a manual host, one host tick per TickMsg.
type Model struct {
	cfg         *config.Config
	host        *host.Manual
	canvas      *render.Braille
	r           *renderer.Renderer
	mountErr    error
	theme       Theme
	styles      styles
	cols, rows  int
	interval    time.Duration
	gamma, beta float64
	tilted      bool
	dragging    bool
	tiltHist    []float64
	visibleHist []float64
	showHelp    bool
	status      string
	snapshotDir string
}

// NewModel mounts the renderer on a braille canvas sized to the terminal.
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	theme := GetTheme(cfg.Theme)

	cols, rows := canvasSize(opts.Cols, opts.Rows)
	canvas := render.NewBraille(cols, rows)
	canvas.LayerOpacity = cfg.Render.LayerOpacity
	canvas.Gain = cfg.Terminal.Gain
	canvas.Cutoff = cfg.Terminal.Cutoff
	canvas.Background = theme.Backdrop

	h := host.NewManual(canvas.Size(),
		host.WithPolicy(cfg.Policy()),
		host.WithSurface(func(vp field.Viewport) (render.Surface, error) {
			if err := canvas.Resize(vp.Width, vp.Height); err != nil {
				return nil, err
			}
			return canvas, nil
		}),
	)

	fps := cfg.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}

	m := Model{
		cfg:         cfg,
		host:        h,
		canvas:      canvas,
		theme:       theme,
		styles:      newStyles(theme),
		cols:        opts.Cols,
		rows:        opts.Rows,
		interval:    time.Second / time.Duration(fps),
		beta:        cfg.Input.BetaBaseline,
		tiltHist:    make([]float64, 0, historyCapacity),
		visibleHist: make([]float64, 0, historyCapacity),
		snapshotDir: opts.SnapshotDir,
	}
	m.r, m.mountErr = renderer.Mount(h, cfg.Renderer(), renderer.WithSeed(cfg.Seed))
	if m.mountErr != nil {
		logging.L().Warn("background disabled", "err", m.mountErr)
	}
	return m
}

// canvasSize leaves room for the stats panel and status line.
func canvasSize(termCols, termRows int) (int, int) {
	return max(termCols-panelWidth, minCols), max(termRows-1, minRows)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update routes terminal input to host events and advances frames.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.teardown()
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = newStyles(m.theme)
			m.canvas.Background = m.theme.Backdrop
		case "left", "h":
			m.tilt(-tiltStep, 0)
		case "right", "l":
			m.tilt(tiltStep, 0)
		case "up", "k":
			m.tilt(0, -tiltStep)
		case "down", "j":
			m.tilt(0, tiltStep)
		case "0":
			m.gamma, m.beta = 0, m.cfg.Input.BetaBaseline
			m.tilt(0, 0)
		case " ", "enter":
			// Keyboard activation counts as a user gesture.
			m.host.Dispatch(host.Click{})
		case "s":
			m.snapshot()
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		cols, rows := canvasSize(msg.Width, msg.Height)
		m.host.SetViewport(field.Viewport{Width: cols * 2, Height: rows * 4})
	case TickMsg:
		if m.host.Tick() > 0 && m.mountErr == nil {
			last := m.r.Last()
			m.tiltHist = push(m.tiltHist, last.TiltX)
			m.visibleHist = push(m.visibleHist, float64(last.Visible))
		}
		return m, m.tick()
	}
	return m, nil
}

// tilt nudges the simulated device orientation in degrees.
func (m *Model) tilt(dGamma, dBeta float64) {
	m.gamma = clampDeg(m.gamma+dGamma, 90)
	m.beta = clampDeg(m.beta+dBeta, 180)
	m.tilted = true
	m.host.Dispatch(host.Tilt(m.gamma, m.beta))
}

// mouse maps cell coordinates to canvas sub-pixels.
func (m *Model) mouse(msg tea.MouseMsg) {
	x, y := float64(msg.X*2+1), float64(msg.Y*4+2)
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.dragging = true
		m.host.Dispatch(host.Click{X: x, Y: y})
		m.host.Dispatch(host.TouchStart{X: x, Y: y})
	case msg.Action == tea.MouseActionRelease:
		if m.dragging {
			m.dragging = false
			m.host.Dispatch(host.TouchEnd{})
		}
	case msg.Action == tea.MouseActionMotion && m.dragging:
		m.host.Dispatch(host.TouchMove{X: x, Y: y})
	case msg.Action == tea.MouseActionMotion:
		m.host.Dispatch(host.PointerMove{X: x, Y: y})
	}
}

// snapshot writes the current frame as PNG and SVG.
func (m *Model) snapshot() {
	if m.mountErr != nil {
		m.status = "nothing to capture"
		return
	}
	dir := m.snapshotDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		m.status = "snapshot failed: " + err.Error()
		return
	}
	base := filepath.Join(dir, fmt.Sprintf("parallax_%d", m.r.Last().Frame))

	if err := m.savePNG(base + ".png"); err != nil {
		m.status = "snapshot failed: " + err.Error()
		logging.L().Error("snapshot", "err", err)
		return
	}
	if err := os.WriteFile(base+".svg", []byte(export.BrailleToSVG(m.canvas, 4)), 0644); err != nil {
		m.status = "snapshot failed: " + err.Error()
		return
	}
	m.status = "saved " + base + ".png"
	logging.L().Info("snapshot saved", "path", base)
}

func (m *Model) savePNG(path string) error {
	vp := m.canvas.Size()
	bg := m.theme.Backdrop
	ras, err := render.NewRaster(vp.Width, vp.Height, m.cfg.Render.LayerOpacity, &bg)
	if err != nil {
		return err
	}
	defer ras.Close()

	tx, ty := m.r.Tilt()
	pr := render.NewProjector(m.cfg.RenderParams())
	if _, err := pr.Draw(m.r.Scene(), tx, ty, ras); err != nil {
		return err
	}
	return ras.SavePNG(path)
}

func (m *Model) teardown() {
	m.r.Teardown()
}

// View renders the braille field next to the stats panel.
func (m Model) View() string {
	canvasView := m.canvas.Render()
	st := m.styles

	var s strings.Builder
	s.WriteString(st.header.Render("PARALLAX FIELD") + "\n")
	s.WriteString(m.statusLine() + "\n\n")

	if len(m.tiltHist) > 1 {
		chart := asciigraph.Plot(m.tiltHist, asciigraph.Height(4), asciigraph.Width(panelWidth-10), asciigraph.Caption("tilt x"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}
	s.WriteString(st.label.Render("Visible") + st.value.Render(SparklineChart(m.visibleHist, panelWidth-14)) + "\n\n")

	if m.mountErr == nil {
		last := m.r.Last()
		sc := m.r.Scene()
		s.WriteString(st.label.Render("Frame") + st.value.Render(fmt.Sprintf("%d", last.Frame)) + "\n")
		s.WriteString(st.label.Render("Class") + st.value.Render(sc.Class.String()) + "\n")
		s.WriteString(st.label.Render("Stars") + st.value.Render(fmt.Sprintf("%d / %d", last.Visible, len(sc.Stars))) + "\n")
		s.WriteString(st.label.Render("Gems") + st.value.Render(fmt.Sprintf("%d", len(sc.Shapes))) + "\n")
		s.WriteString(st.label.Render("Tilt X") + st.value.Render(TiltBar(last.TiltX, 15)) + "\n")
		s.WriteString(st.label.Render("Tilt Y") + st.value.Render(TiltBar(last.TiltY, 15)) + "\n")
		s.WriteString(st.label.Render("Gyro") + m.gyroState() + "\n")
	}
	if m.tilted {
		s.WriteString(st.label.Render("Device") + st.value.Render(fmt.Sprintf("γ %+.0f° β %+.0f°", m.gamma, m.beta)) + "\n")
	}
	s.WriteString(st.label.Render("Theme") + st.value.Render(m.theme.Name) + "\n")

	s.WriteString(st.help.Render("─────────────────────\nQ:Quit T:Theme S:Snap\n←↑↓→:Tilt 0:Level ?:Help"))
	statsView := st.panel.Render(s.String())

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.status != "" {
		mainView += "\n" + st.help.UnsetMarginTop().Render(m.status)
	}
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Mouse    - Steer with the pointer   ║
║  Drag     - Swipe like a touch       ║
║  Arrows   - Tilt the device (5°)     ║
║  H/J/K/L  - Tilt the device (5°)     ║
║  0        - Level the device         ║
║  Space    - Gesture (grant gyro)     ║
║  S        - Save PNG + SVG snapshot  ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m Model) statusLine() string {
	switch {
	case m.mountErr != nil:
		return m.styles.warning.Render("BACKGROUND DISABLED")
	case m.r.State() == renderer.Running:
		return m.styles.active.Render("RUNNING")
	default:
		return m.styles.warning.Render("STOPPED")
	}
}

func (m Model) gyroState() string {
	g := m.r.Gate()
	switch {
	case m.r.Last().Orientation:
		return m.styles.active.Render("attached")
	case g.State() == input.GatePending:
		return m.styles.value.Render("waiting")
	case g.Err() != nil:
		return m.styles.warning.Render(g.State().String())
	default:
		return m.styles.value.Render(g.State().String())
	}
}

func push(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

func clampDeg(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
