package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"workdeck/engine"
	"workdeck/logutils"
	"workdeck/ui"
	"workdeck/workspace"
)

const version = "1.0.0"

func main() {
	var workspacePath string
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v":
			fmt.Printf("workdeck v%s\n", version)
			return
		case "--help", "-h":
			printHelp()
			return
		default:
			workspacePath = os.Args[1]
		}
	}

	mgr := workspace.NewManager()
	defer mgr.Close()

	if workspacePath != "" {
		if _, err := mgr.OpenOrCreate(workspacePath); err != nil {
			logutils.Log.WithError(err).Fatal("open workspace")
		}
	}

	eng := engine.New(mgr)
	watcher := engine.NewWatcher(eng)
	defer watcher.StopAll()

	m, err := ui.NewModel(mgr, eng, watcher)
	if err != nil {
		logutils.Log.WithError(err).Fatal("create UI model")
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logutils.Log.WithError(err).Fatal("run program")
	}
}

func printHelp() {
	fmt.Printf(`workdeck v%s - Workspace & Project Manager

USAGE:
    workdeck [workspace-path]

ARGUMENTS:
    workspace-path  Open this workspace root directly, skipping the picker.

FLAGS:
    --help, -h      Show this help message
    --version, -v   Show version information

KEYBOARD SHORTCUTS:
    enter           Open workspace / view project repositories
    s               Check repository status (network)
    p               Pull (fetch) from origin
    w               Toggle background status polling
    r               Refresh the current list
    esc             Back
    q, ctrl+c       Quit

Each workspace keeps its own SQLite database under <root>/.app/app.db.
Recently used workspaces are remembered in your user config directory.
`, version)
}
