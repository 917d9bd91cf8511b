package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/san-kum/parallaxfield/internal/config"
	"github.com/san-kum/parallaxfield/internal/export"
	"github.com/san-kum/parallaxfield/internal/field"
	"github.com/san-kum/parallaxfield/internal/host"
	"github.com/san-kum/parallaxfield/internal/logging"
	"github.com/san-kum/parallaxfield/internal/render"
	"github.com/san-kum/parallaxfield/internal/script"
	"github.com/san-kum/parallaxfield/internal/storage"
	"github.com/san-kum/parallaxfield/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	frameRate  int
	theme      string
	permission string
	logFile    string
	logLevel   string
	// Offline renders
	width   int
	height  int
	frames  int
	outPath string
	// Pointer position for offline renders, in [-1, 1]
	aimX float64
	aimY float64
	// Live view
	snapshotDir string
	// Ensemble replays
	runs int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "parallax",
		Short: "parallax starfield with wireframe gems",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
		RunE: runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".parallax", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml); its preset key selects the base")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 1, "random seed")
	rootCmd.PersistentFlags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", config.DefaultTheme, "color theme")
	rootCmd.PersistentFlags().StringVar(&permission, "permission", config.DefaultPermission, "orientation permission policy (none, granted, denied, gesture, unsupported)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&snapshotDir, "snapshots", ".", "directory for S-key snapshots")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the field in the terminal",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&snapshotDir, "snapshots", ".", "directory for S-key snapshots")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render frames offline to PNG",
		RunE:  runSnapshot,
	}
	svgCmd := &cobra.Command{
		Use:   "svg",
		Short: "render frames offline to SVG",
		RunE:  runSVG,
	}
	for _, c := range []*cobra.Command{snapshotCmd, svgCmd} {
		c.Flags().IntVar(&width, "width", 1280, "viewport width")
		c.Flags().IntVar(&height, "height", 800, "viewport height")
		c.Flags().IntVar(&frames, "frames", 120, "frames to advance before capture")
		c.Flags().StringVarP(&outPath, "out", "o", "", "output file")
		c.Flags().Float64Var(&aimX, "aim-x", 0, "pointer x in [-1, 1]")
		c.Flags().Float64Var(&aimY, "aim-y", 0, "pointer y in [-1, 1]")
	}

	recordCmd := &cobra.Command{
		Use:   "record [scenario.yaml]",
		Short: "replay a scripted input scenario and store the session",
		Args:  cobra.ExactArgs(1),
		RunE:  recordScenario,
	}
	recordCmd.Flags().IntVar(&runs, "runs", 1, "replay under this many consecutive seeds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list sessions",
		RunE:  listSessions,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [session_id]",
		Short: "plot session tilt and visibility",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSession,
	}

	traceCmd := &cobra.Command{
		Use:   "trace [session_id]",
		Short: "export the session tilt path to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  traceSession,
	}
	traceCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [session_id]",
		Short: "export session data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the resolved config as yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	})

	rootCmd.AddCommand(liveCmd, snapshotCmd, svgCmd, recordCmd, listCmd, plotCmd, traceCmd, exportJSONCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command) error {
	if logFile == "" {
		// The live view owns the terminal.
		if cmd.Name() == "live" || cmd.Name() == "parallax" {
			return nil
		}
		logging.Setup(logging.ParseLevel(logLevel), os.Stderr)
		return nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logging.Setup(logging.ParseLevel(logLevel), f)
	return nil
}

// loadConfig resolves defaults, then the preset, then the config file,
// then any flags set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if configFile != "" && cmd.Flags().Changed("preset") {
		return nil, errors.New("--preset and --config are exclusive; set preset in the config file instead")
	}
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("fps") {
		cfg.FPS = frameRate
	}
	if cmd.Flags().Changed("theme") {
		cfg.Theme = theme
	}
	if cmd.Flags().Changed("permission") {
		cfg.Permission = permission
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("live view needs a terminal; try snapshot or svg")
	}
	if !cmd.Flags().Changed("preset") && configFile == "" {
		preset = "terminal"
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		cols, rows = 80, 24
	}

	m := viz.NewModel(viz.Options{Config: cfg, Cols: cols, Rows: rows, SnapshotDir: snapshotDir})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// renderOffline advances the field on a manual host drawing to surf.
func renderOffline(cmd *cobra.Command, surf render.Surface) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	vp := field.Viewport{Width: width, Height: height}
	if vp.Width <= 0 || vp.Height <= 0 {
		return fmt.Errorf("viewport %dx%d: %w", width, height, field.ErrInvalidViewport)
	}

	var actions []script.Action
	if aimX != 0 || aimY != 0 {
		actions = append(actions, script.Action{
			Type: "pointer",
			X:    (aimX + 1) / 2 * float64(width),
			Y:    (aimY + 1) / 2 * float64(height),
		})
	}
	sc := &script.Scenario{
		Name:       "offline",
		Seed:       cfg.Seed,
		Width:      width,
		Height:     height,
		Frames:     max(frames, 1),
		Permission: cfg.Permission,
		Events:     actions,
	}
	res, err := script.Run(cmd.Context(), sc, cfg.Renderer(), host.WithSurface(func(field.Viewport) (render.Surface, error) {
		return surf, nil
	}))
	if err != nil {
		return err
	}
	last := res.Frames[len(res.Frames)-1]
	fmt.Printf("rendered %d frames (%s, %d/%d stars visible, %d gems)\n",
		len(res.Frames), res.Class, last.Visible, last.Stars, last.Shapes)
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	opacity, bg, err := offlineLook(cmd)
	if err != nil {
		return err
	}
	ras, err := render.NewRaster(width, height, opacity, bg)
	if err != nil {
		return err
	}
	defer ras.Close()

	if err := renderOffline(cmd, ras); err != nil {
		return err
	}
	path := outPath
	if path == "" {
		path = "parallax.png"
	}
	if err := ras.SavePNG(path); err != nil {
		return err
	}
	fmt.Printf("saved %s\n", path)
	return nil
}

func runSVG(cmd *cobra.Command, args []string) error {
	opacity, bg, err := offlineLook(cmd)
	if err != nil {
		return err
	}
	svg := export.NewSVG(width, height, opacity, bg)
	if err := renderOffline(cmd, svg); err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if _, err := svg.WriteTo(w); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Printf("saved %s (%d elements)\n", outPath, svg.Elements())
	}
	return nil
}

// offlineLook returns the layer opacity and page color for offline surfaces.
func offlineLook(cmd *cobra.Command) (float64, *field.Color, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return 0, nil, err
	}
	bg := viz.GetTheme(cfg.Theme).Backdrop
	return cfg.Render.LayerOpacity, &bg, nil
}

func recordScenario(cmd *cobra.Command, args []string) error {
	sc, err := script.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if sc.Preset != "" && !cmd.Flags().Changed("preset") {
		preset = sc.Preset
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		sc.Seed = seed
	}
	if sc.Permission == "" {
		sc.Permission = cfg.Permission
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if runs < 1 {
		return fmt.Errorf("runs must be at least 1")
	}
	fmt.Printf("replaying %s...\n", sc.Name)
	results, err := script.NewEnsemble(sc, runs, sc.Seed).Run(cmd.Context(), cfg.Renderer())
	if err != nil {
		return err
	}

	for i, res := range results {
		runSeed := sc.Seed + int64(i)
		meta, rows := res.Session(runSeed, cfg.Preset, sc.Permission)
		id, err := st.Save(meta, rows)
		if err != nil {
			return err
		}

		fmt.Printf("\nsession id: %s (seed %d)\n", id, runSeed)
		fmt.Printf("frames: %d\n", len(rows))
		fmt.Println("metrics:")
		for name, val := range meta.Metrics {
			fmt.Printf("  %s: %.4f\n", name, val)
		}
	}
	return nil
}

func listSessions(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	sessions, err := st.List()
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("no sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSIZE\tCLASS\tFRAMES\tPERMISSION")

	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%s\t%d\t%s\n",
			s.ID,
			s.Name,
			s.Timestamp.Format("2006-01-02 15:04:05"),
			s.Width, s.Height,
			s.Class,
			s.Frames,
			s.Permission,
		)
	}

	return w.Flush()
}

func plotSession(cmd *cobra.Command, args []string) error {
	id := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	rows, err := st.LoadFrames(id)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("session: %s\n", meta.ID)
	fmt.Printf("viewport: %dx%d (%s)\n", meta.Width, meta.Height, meta.Class)
	fmt.Printf("frames: %d\n\n", len(rows))

	series := []struct {
		caption string
		value   func(storage.Frame) float64
	}{
		{"tilt x (smoothed)", func(f storage.Frame) float64 { return f.TiltX }},
		{"tilt y (smoothed)", func(f storage.Frame) float64 { return f.TiltY }},
		{"visible stars", func(f storage.Frame) float64 { return float64(f.Visible) }},
	}
	for _, s := range series {
		data := make([]float64, len(rows))
		for i, f := range rows {
			data[i] = s.value(f)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func traceSession(cmd *cobra.Command, args []string) error {
	id := args[0]

	st := storage.New(dataDir)
	rows, err := st.LoadFrames(id)
	if err != nil {
		return err
	}

	points := make([]export.Point, len(rows))
	for i, f := range rows {
		points[i] = export.Point{X: f.TiltX, Y: f.TiltY}
	}
	svg := export.TiltToSVG(points, 400, "#38bdf8")
	if svg == "" {
		return fmt.Errorf("session %s has fewer than two frames", id)
	}

	path := outPath
	if path == "" {
		path = filepath.Join(dataDir, id, "tilt.svg")
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("saved %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	id := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	rows, err := st.LoadFrames(id)
	if err != nil {
		return err
	}
	return export.SessionJSON(os.Stdout, *meta, rows)
}
