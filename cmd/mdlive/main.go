// Command mdlive edits a markdown document with live decorations, kept in
// sync with a file on disk or with a JSON-RPC peer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	editor "github.com/ionut-t/mdlive/adapter-bubbletea"
	"github.com/ionut-t/mdlive/bridge"
	"github.com/ionut-t/mdlive/config"
	"github.com/ionut-t/mdlive/decoration"
)

const messageDuration = 3 * time.Second

var version = "dev"

var errHostDisconnected = errors.New("host disconnected")

type options struct {
	configPath string
	connect    string
	debug      bool
	file       string
}

type hostDisconnectedMsg struct{}

type Model struct {
	editor editor.Model
}

func (m Model) Init() tea.Cmd {
	return m.editor.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		msg.Width -= 4
		msg.Height -= 2
		return m.forward(msg)

	case editor.PasteMsg:
		return m, m.editor.DispatchMessage(fmt.Sprintf("%d bytes pasted", len(msg.Content)), messageDuration)

	case hostDisconnectedMsg:
		return m, m.editor.DispatchError(errHostDisconnected, messageDuration)
	}

	return m.forward(msg)
}

func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	editorModel, cmd := m.editor.Update(msg)
	m.editor = editorModel.(editor.Model)
	return m, cmd
}

func (m Model) View() string {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(m.editor.View())
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.debug {
		cfg.Log.Level = "debug"
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logFile, err := tea.LogToFile(cfg.Log.File, "mdlive")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log file: %v\n", err)
		return 1
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Hosts may push text before the program exists.
	updates := make(chan string, 16)
	onUpdate := func(text string) {
		select {
		case updates <- text:
		case <-ctx.Done():
		}
	}

	var (
		host         decoration.Host
		content      string
		disconnected <-chan struct{}
	)

	switch {
	case opts.connect != "":
		conn, err := net.Dial(network(opts.connect), opts.connect)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to connect to %s: %v\n", opts.connect, err)
			return 1
		}
		rpcHost := bridge.NewRPCHost(ctx, conn, onUpdate, logger)
		defer rpcHost.Close()
		host = rpcHost
		disconnected = rpcHost.Done()

		if opts.file != "" {
			if data, err := os.ReadFile(opts.file); err == nil {
				content = string(data)
			}
		}

	case opts.file != "":
		fileHost, err := bridge.NewFileHost(opts.file, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer fileHost.Close()
		host = fileHost

		content, err = fileHost.Read()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read %s: %v\n", opts.file, err)
			return 1
		}
		go func() {
			if err := fileHost.Watch(ctx, onUpdate); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("file watcher stopped", "error", err)
			}
		}()
	}

	textEditor := editor.New(80, 20, host,
		editor.WithConfig(cfg),
		editor.WithLogger(logger),
		editor.WithFileName(opts.file),
	)
	textEditor.SetPlaceholder("Start writing markdown…")
	textEditor.SetContent(content)
	textEditor.Coordinator().Info(fmt.Sprintf("mdlive %s attached", version))

	logger.Info("starting mdlive", "file", opts.file, "connect", opts.connect, "editor", textEditor.Coordinator().ID())

	p := tea.NewProgram(Model{editor: textEditor},
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	go func() {
		for {
			select {
			case text := <-updates:
				p.Send(editor.RemoteUpdateMsg{Text: text})
			case <-disconnected:
				p.Send(hostDisconnectedMsg{})
				disconnected = nil
			case <-ctx.Done():
				return
			}
		}
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running mdlive: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.configPath, "config", "mdlive.toml", "Path to configuration file")
	flag.StringVar(&opts.connect, "connect", "", "Address of a JSON-RPC host (host:port or a unix socket path)")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "mdlive - live markdown editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: mdlive [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  mdlive notes.md                    Edit a file, reloading external changes\n")
		fmt.Fprintf(os.Stderr, "  mdlive -connect /tmp/host.sock     Attach to a host over a unix socket\n")
	}

	flag.Parse()
	opts.file = flag.Arg(0)

	return opts
}

// network guesses the dial network from an address.
func network(addr string) string {
	if strings.ContainsRune(addr, '/') {
		return "unix"
	}
	return "tcp"
}
