package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"workdeck/engine"
	"workdeck/models"
	"workdeck/workspace"
)

// Custom message types for asynchronous registry and git operations

// WorkspaceOpenedMsg is sent when opening a workspace completes.
type WorkspaceOpenedMsg struct {
	info *models.WorkspaceInfo
	err  error
}

// ProjectsLoadedMsg carries a refreshed project listing.
type ProjectsLoadedMsg struct {
	projects []models.Project
	err      error
}

// ReposLoadedMsg carries a refreshed repository listing for one project.
type ReposLoadedMsg struct {
	repos []models.GitRepository
	err   error
}

// StatusCheckedMsg is sent when a git status check completes.
type StatusCheckedMsg struct {
	repoID string
	status models.GitRepoStatus
	err    error
}

// PullDoneMsg is sent when a pull completes.
type PullDoneMsg struct {
	repoID string
	result models.GitPullResult
	err    error
}

// workspaceItem wraps a recent-workspace entry and implements list.Item.
type workspaceItem struct {
	info models.WorkspaceInfo
}

func (i workspaceItem) FilterValue() string { return i.info.Path }

func (i workspaceItem) Title() string {
	if i.info.Alias != "" {
		return i.info.Alias
	}
	return i.info.Path
}

func (i workspaceItem) Description() string {
	return "last opened " + i.info.LastOpenedAt.Format("2006-01-02 15:04")
}

// projectItem wraps a Project and implements list.Item.
type projectItem struct {
	project models.Project
}

func (i projectItem) FilterValue() string { return i.project.Name }
func (i projectItem) Title() string       { return i.project.Name }

func (i projectItem) Description() string {
	if i.project.Description != "" {
		return i.project.ProjectPath + " • " + i.project.Description
	}
	return i.project.ProjectPath
}

// repoItem wraps a GitRepository plus its freshest known status.
type repoItem struct {
	repo      models.GitRepository
	status    *models.GitRepoStatus
	isLoading bool
}

func (i repoItem) FilterValue() string { return i.repo.Name }

func (i repoItem) Title() string {
	title := i.repo.Name
	if i.repo.RemoteURL != "" {
		title = "🔗 " + title
	}
	if i.isLoading {
		return title + " [Checking...]"
	}
	return title
}

func (i repoItem) Description() string {
	st := i.status
	if st == nil {
		st = i.repo.LastStatus()
	}
	if st == nil {
		return i.repo.Path
	}
	desc := "clean"
	if st.Dirty {
		desc = "dirty"
	}
	if st.Branch != "" {
		desc = st.Branch + " • " + desc
	}
	if st.Ahead > 0 || st.Behind > 0 {
		desc += fmt.Sprintf(" • ↑%d ↓%d", st.Ahead, st.Behind)
	}
	if st.Network != models.NetworkUnknown {
		desc += " • " + string(st.Network)
	}
	return desc
}

var docStyle = lipgloss.NewStyle().Margin(1, 2)

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FF0000")).
	Bold(true)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#00FFFF")).
	Bold(true)

var subtitleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#888888"))

// screenState represents the current screen being displayed
type screenState int

const (
	screenWorkspace screenState = iota
	screenProjects
	screenRepos
)

// Model is the Bubble Tea application model.
type Model struct {
	ws      *workspace.Manager
	eng     *engine.Engine
	watcher *engine.Watcher

	screen        screenState
	pathInput     textinput.Model
	recentList    list.Model
	projectList   list.Model
	repoList      list.Model
	activeProject *models.Project
	watching      bool
	errorMessage  string
	statusMessage string
	width         int
	height        int
}

// NewModel builds the UI over an already-constructed manager and engine. When
// the manager has an open workspace the project screen is shown directly.
func NewModel(ws *workspace.Manager, eng *engine.Engine, watcher *engine.Watcher) (Model, error) {
	input := textinput.New()
	input.Placeholder = "/path/to/workspace"
	input.Focus()

	m := Model{
		ws:          ws,
		eng:         eng,
		watcher:     watcher,
		screen:      screenWorkspace,
		pathInput:   input,
		recentList:  newList("Recent Workspaces"),
		projectList: newList("Projects"),
		repoList:    newList("Repositories"),
	}

	recent, err := ws.ListRecent()
	if err != nil {
		return Model{}, err
	}
	items := make([]list.Item, 0, len(recent))
	for _, info := range recent {
		items = append(items, workspaceItem{info: info})
	}
	m.recentList.SetItems(items)

	if _, err := ws.Path(); err == nil {
		m.screen = screenProjects
		m.reloadProjects()
	}
	return m, nil
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		listWidth := size.Width - 4
		listHeight := size.Height - 8
		if listHeight < 10 {
			listHeight = 10
		}
		m.recentList.SetSize(listWidth, listHeight)
		m.projectList.SetSize(listWidth, listHeight)
		m.repoList.SetSize(listWidth, listHeight)
	}

	switch msg := msg.(type) {
	case WorkspaceOpenedMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			return m, nil
		}
		m.errorMessage = ""
		m.statusMessage = "Opened " + msg.info.Path
		m.screen = screenProjects
		return m, m.loadProjects()

	case ProjectsLoadedMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.projects))
		for _, p := range msg.projects {
			items = append(items, projectItem{project: p})
		}
		m.projectList.SetItems(items)
		return m, nil

	case ReposLoadedMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.repos))
		for _, r := range msg.repos {
			items = append(items, repoItem{repo: r})
		}
		m.repoList.SetItems(items)
		return m, nil

	case StatusCheckedMsg:
		m.setRepoLoading(msg.repoID, false)
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			return m, nil
		}
		m.errorMessage = ""
		m.applyStatus(msg.repoID, msg.status)
		return m, nil

	case PullDoneMsg:
		m.setRepoLoading(msg.repoID, false)
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			return m, nil
		}
		if msg.result.OK {
			m.statusMessage = "Pulled: " + msg.result.Message
		} else {
			m.statusMessage = "Pull failed: " + msg.result.Message
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateLists(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.watcher.StopAll()
		return m, tea.Quit
	case "q":
		// The workspace screen has a text input; q only quits elsewhere.
		if m.screen != screenWorkspace {
			m.watcher.StopAll()
			return m, tea.Quit
		}
	case "esc":
		switch m.screen {
		case screenRepos:
			m.screen = screenProjects
		case screenProjects:
			m.screen = screenWorkspace
		}
		return m, nil
	}

	switch m.screen {
	case screenWorkspace:
		return m.handleWorkspaceKey(msg)
	case screenProjects:
		return m.handleProjectKey(msg)
	case screenRepos:
		return m.handleRepoKey(msg)
	}
	return m, nil
}

func (m Model) handleWorkspaceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		path := m.pathInput.Value()
		if path == "" {
			if item, ok := m.recentList.SelectedItem().(workspaceItem); ok {
				path = item.info.Path
			}
		}
		if path == "" {
			m.errorMessage = "Enter a workspace path or pick a recent one"
			return m, nil
		}
		return m, m.openWorkspace(path)
	}

	var inputCmd, listCmd tea.Cmd
	m.pathInput, inputCmd = m.pathInput.Update(msg)
	m.recentList, listCmd = m.recentList.Update(msg)
	return m, tea.Batch(inputCmd, listCmd)
}

func (m Model) handleProjectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if item, ok := m.projectList.SelectedItem().(projectItem); ok {
			project := item.project
			m.activeProject = &project
			m.screen = screenRepos
			return m, m.loadRepos(project.ID)
		}
	case "r":
		return m, m.loadProjects()
	}
	var cmd tea.Cmd
	m.projectList, cmd = m.projectList.Update(msg)
	return m, cmd
}

func (m Model) handleRepoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		if item, ok := m.repoList.SelectedItem().(repoItem); ok {
			m.setRepoLoading(item.repo.ID, true)
			return m, m.checkStatus(item.repo.ID)
		}
	case "p":
		if item, ok := m.repoList.SelectedItem().(repoItem); ok {
			m.setRepoLoading(item.repo.ID, true)
			return m, m.pull(item.repo.ID)
		}
	case "w":
		if m.watching {
			m.watcher.Stop("")
			m.watching = false
			m.statusMessage = "Background polling stopped"
		} else {
			m.watcher.Start("")
			m.watching = true
			m.statusMessage = "Background polling started"
		}
		return m, nil
	case "r":
		if m.activeProject != nil {
			return m, m.loadRepos(m.activeProject.ID)
		}
	}
	var cmd tea.Cmd
	m.repoList, cmd = m.repoList.Update(msg)
	return m, cmd
}

func (m Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case screenWorkspace:
		m.recentList, cmd = m.recentList.Update(msg)
	case screenProjects:
		m.projectList, cmd = m.projectList.Update(msg)
	case screenRepos:
		m.repoList, cmd = m.repoList.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var body string
	switch m.screen {
	case screenWorkspace:
		body = titleStyle.Render("Open a workspace") + "\n\n" +
			m.pathInput.View() + "\n\n" +
			m.recentList.View() + "\n" +
			subtitleStyle.Render("enter: open • q: quit")
	case screenProjects:
		body = m.projectList.View() + "\n" +
			subtitleStyle.Render("enter: repositories • r: refresh • esc: workspaces • ctrl+c: quit")
	case screenRepos:
		title := "Repositories"
		if m.activeProject != nil {
			title = m.activeProject.Name
		}
		body = titleStyle.Render(title) + "\n" +
			m.repoList.View() + "\n" +
			subtitleStyle.Render("s: check status • p: pull • w: toggle polling • r: refresh • esc: back")
	}

	if m.errorMessage != "" {
		body += "\n" + errorStyle.Render(m.errorMessage)
	} else if m.statusMessage != "" {
		body += "\n" + subtitleStyle.Render(m.statusMessage)
	}
	return docStyle.Render(body)
}

func (m Model) openWorkspace(path string) tea.Cmd {
	return func() tea.Msg {
		info, err := m.ws.OpenOrCreate(path)
		return WorkspaceOpenedMsg{info: info, err: err}
	}
}

func (m Model) loadProjects() tea.Cmd {
	return func() tea.Msg {
		projects, err := m.ws.ListProjects()
		return ProjectsLoadedMsg{projects: projects, err: err}
	}
}

func (m *Model) reloadProjects() {
	projects, err := m.ws.ListProjects()
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	items := make([]list.Item, 0, len(projects))
	for _, p := range projects {
		items = append(items, projectItem{project: p})
	}
	m.projectList.SetItems(items)
}

func (m Model) loadRepos(projectID string) tea.Cmd {
	return func() tea.Msg {
		repos, err := m.eng.List(projectID)
		return ReposLoadedMsg{repos: repos, err: err}
	}
}

func (m Model) checkStatus(repoID string) tea.Cmd {
	return func() tea.Msg {
		status, err := m.eng.Status(context.Background(), repoID, true)
		return StatusCheckedMsg{repoID: repoID, status: status, err: err}
	}
}

func (m Model) pull(repoID string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.eng.Pull(context.Background(), repoID)
		return PullDoneMsg{repoID: repoID, result: result, err: err}
	}
}

func (m *Model) setRepoLoading(repoID string, loading bool) {
	for idx, it := range m.repoList.Items() {
		if item, ok := it.(repoItem); ok && item.repo.ID == repoID {
			item.isLoading = loading
			m.repoList.SetItem(idx, item)
			return
		}
	}
}

func (m *Model) applyStatus(repoID string, status models.GitRepoStatus) {
	for idx, it := range m.repoList.Items() {
		if item, ok := it.(repoItem); ok && item.repo.ID == repoID {
			st := status
			item.status = &st
			m.repoList.SetItem(idx, item)
			return
		}
	}
}
