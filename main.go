package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/neonbeat/neonbeat/internal/catalog"
	"github.com/neonbeat/neonbeat/internal/collection"
	"github.com/neonbeat/neonbeat/internal/config"
	"github.com/neonbeat/neonbeat/internal/engine"
	"github.com/neonbeat/neonbeat/internal/session"
	"github.com/neonbeat/neonbeat/internal/store"
)

var (
	playerBarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type tickMsg time.Time

type startedMsg struct{}

type model struct {
	ctl    *session.Controller
	col    *collection.Store
	cursor int
	width  int
	height int
	ready  bool
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			m.ctl.Start(context.Background())
			return startedMsg{}
		},
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case startedMsg:
		m.ready = true

	case tickMsg:
		return m, tickCmd()

	case tea.KeyMsg:
		tracks := m.ctl.Tracks()
		switch msg.String() {
		case "q", "ctrl+c":
			m.ctl.EnterBackground(ctx)
			m.ctl.Close()
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(tracks)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(tracks) {
				m.ctl.PlayTrack(ctx, tracks[m.cursor].ID, nil)
			}
		case " ":
			m.ctl.TogglePlay(ctx)
		case "n":
			m.ctl.PlayNext(ctx)
		case "p":
			m.ctl.PlayPrevious(ctx)
		case "s":
			m.ctl.ToggleShuffle()
		case "f":
			if m.cursor < len(tracks) {
				m.col.ToggleFavorite(ctx, tracks[m.cursor].ID)
			}
		case "L":
			m.ctl.PlayFromCollection(ctx, m.col.Tracks(collection.LikedSongs), 0)
		case "r":
			return m, func() tea.Msg {
				m.ctl.Refresh(context.Background())
				return startedMsg{}
			}
		}
	}

	return m, nil
}

func (m model) View() string {
	st := m.ctl.State()
	tracks := m.ctl.Tracks()

	if !m.ready {
		return "\n  Scanning library...\n"
	}
	if st.Err != "" && len(tracks) == 0 {
		return "\n  " + st.Err + "\n"
	}
	if len(tracks) == 0 {
		return "\n  No tracks found. Add library_sources to your config.\n"
	}

	listHeight := m.height - 4
	if listHeight < 1 {
		listHeight = 1
	}
	start := 0
	if m.cursor >= listHeight {
		start = m.cursor - listHeight + 1
	}

	view := ""
	for i := start; i < len(tracks) && i < start+listHeight; i++ {
		t := tracks[i]
		marker := "  "
		if t.ID == st.CurrentTrackID {
			marker = "> "
		}
		fav := "  "
		if m.col.IsFavorite(t.ID) {
			fav = " *"
		}
		line := fmt.Sprintf("%s%s - %s%s", marker, t.Title, t.Artist, fav)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		view += line + "\n"
	}

	view += m.playerBar(st)
	return view
}

func (m model) playerBar(st session.State) string {
	track := m.ctl.CurrentTrack()
	if track == nil {
		return dimStyle.Render("  nothing playing - enter to play, q to quit")
	}

	status := "|>"
	if !st.Playing {
		status = "||"
	}
	shuffle := ""
	if st.Shuffle {
		shuffle = " [shuffle]"
	}

	left := fmt.Sprintf(" %s  %s - %s%s", status, track.Title, track.Artist, shuffle)
	right := fmt.Sprintf("%s / %s ", formatDuration(st.Position), formatDuration(st.Duration))

	innerWidth := m.width - 2
	if innerWidth < 0 {
		innerWidth = 0
	}
	padding := innerWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	content := left + strings.Repeat(" ", padding) + right
	return playerBarStyle.Width(innerWidth).Render(content)
}

func formatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

func setupLogger(logFile, logLevel string) zerolog.Logger {
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// The terminal belongs to the UI; default to discarding unless a log
	// file is configured.
	var output io.Writer = io.Discard
	if logFile != "" {
		if f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			output = f
		}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogFile, cfg.LogLevel)

	kv, err := store.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening state store: %v\n", err)
		os.Exit(1)
	}
	defer kv.Close()

	gw := store.NewGateway(kv, logger)

	col := collection.New(gw, logger)
	col.Load(context.Background())

	scanner := catalog.NewScanner(cfg.LibrarySources, logger)
	ctl := session.New(engine.NewBeep(), scanner, gw, logger)
	ctl.SetResumePaused(cfg.ResumePaused)
	ctl.SetSnapshotInterval(cfg.SnapshotInterval())

	m := model{ctl: ctl, col: col}
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
