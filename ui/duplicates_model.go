package ui

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DuplicateGroup represents a group of visually identical images
type DuplicateGroup struct {
	Hash     string
	Files    []string
	Details  []string // per-file "WxH, size" summary shown next to the name
	Selected []bool   // which files are selected for deletion
}

// DuplicatesModel is the TUI model for reviewing and deleting duplicates
type DuplicatesModel struct {
	groups       []DuplicateGroup
	currentGroup int
	currentFile  int

	width  int
	height int

	confirmingDeletion bool
	pendingDeletion    []string
	showHelp           bool

	quitting bool
}

// NewDuplicatesModel creates a new duplicates TUI model. Groups are sorted
// by hash so navigation order is stable between runs.
func NewDuplicatesModel(duplicates map[string][]string) DuplicatesModel {
	hashes := make([]string, 0, len(duplicates))
	for hash := range duplicates {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	var groups []DuplicateGroup
	for _, hash := range hashes {
		files := duplicates[hash]
		group := DuplicateGroup{
			Hash:     hash,
			Files:    files,
			Details:  make([]string, len(files)),
			Selected: make([]bool, len(files)),
		}
		for i, file := range files {
			group.Details[i] = describeImage(file)
		}
		groups = append(groups, group)
	}

	return DuplicatesModel{
		groups:   groups,
		showHelp: true,
	}
}

// describeImage summarizes an image file as "WxH, N KB" for display
func describeImage(path string) string {
	var parts []string

	if f, err := os.Open(path); err == nil {
		if cfg, _, err := image.DecodeConfig(f); err == nil {
			parts = append(parts, fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))
		}
		_ = f.Close()
	}

	if fi, err := os.Stat(path); err == nil {
		parts = append(parts, fmt.Sprintf("%.1f KB", float64(fi.Size())/1024))
	}

	if len(parts) == 0 {
		return "unreadable"
	}
	return strings.Join(parts, ", ")
}

// Init implements tea.Model
func (m DuplicatesModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m DuplicatesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmingDeletion {
			return m.handleConfirmationInput(msg)
		}
		return m.handleNormalInput(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case DeletionCompleteMsg:
		m.handleDeletionComplete(msg)
	}

	return m, nil
}

func (m DuplicatesModel) handleNormalInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.groups) == 0 {
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "h", "?":
		m.showHelp = !m.showHelp

	case "up", "k":
		if m.currentFile > 0 {
			m.currentFile--
		}

	case "down", "j":
		if m.currentFile < len(m.groups[m.currentGroup].Files)-1 {
			m.currentFile++
		}

	case "left", "p":
		if m.currentGroup > 0 {
			m.currentGroup--
			m.currentFile = 0
		}

	case "right", "n":
		if m.currentGroup < len(m.groups)-1 {
			m.currentGroup++
			m.currentFile = 0
		}

	case " ": // spacebar to toggle selection
		group := &m.groups[m.currentGroup]
		group.Selected[m.currentFile] = !group.Selected[m.currentFile]

	case "a": // select all files in current group
		group := &m.groups[m.currentGroup]
		for i := range group.Selected {
			group.Selected[i] = true
		}

	case "c": // clear all selections in current group
		group := &m.groups[m.currentGroup]
		for i := range group.Selected {
			group.Selected[i] = false
		}

	case "s": // skip current group
		if m.currentGroup < len(m.groups)-1 {
			m.currentGroup++
			m.currentFile = 0
		} else {
			m.quitting = true
			return m, tea.Quit
		}

	case "enter":
		return m.handleDeleteCommand()
	}

	return m, nil
}

func (m DuplicatesModel) handleConfirmationInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirmingDeletion = false
		return m, m.executeDeleteCommand()

	case "n", "N", "ctrl+c", "esc":
		m.confirmingDeletion = false
		m.pendingDeletion = nil
	}

	return m, nil
}

func (m DuplicatesModel) handleDeleteCommand() (tea.Model, tea.Cmd) {
	var selectedFiles []string

	// Collect selected files from all groups, not just the current one
	for _, group := range m.groups {
		for i, selected := range group.Selected {
			if selected {
				selectedFiles = append(selectedFiles, group.Files[i])
			}
		}
	}

	if len(selectedFiles) == 0 {
		return m, nil
	}

	m.pendingDeletion = selectedFiles
	m.confirmingDeletion = true
	return m, nil
}

func (m DuplicatesModel) executeDeleteCommand() tea.Cmd {
	return func() tea.Msg {
		for _, filePath := range m.pendingDeletion {
			if err := os.Remove(filePath); err != nil {
				return DeletionCompleteMsg{
					FilePath: filePath,
					Success:  false,
					Error:    err,
				}
			}
		}
		return DeletionCompleteMsg{Success: true}
	}
}

func (m *DuplicatesModel) handleDeletionComplete(msg DeletionCompleteMsg) {
	if msg.Success && msg.FilePath == "" {
		deleted := make(map[string]bool, len(m.pendingDeletion))
		for _, file := range m.pendingDeletion {
			deleted[file] = true
		}

		// Drop deleted files from every group, then drop groups that no
		// longer hold a duplicate pair.
		var remainingGroups []DuplicateGroup
		for _, group := range m.groups {
			var files, details []string
			var selected []bool
			for i, file := range group.Files {
				if deleted[file] {
					continue
				}
				files = append(files, file)
				details = append(details, group.Details[i])
				selected = append(selected, group.Selected[i])
			}
			if len(files) > 1 {
				group.Files = files
				group.Details = details
				group.Selected = selected
				remainingGroups = append(remainingGroups, group)
			}
		}
		m.groups = remainingGroups

		if len(m.groups) == 0 {
			m.quitting = true
		} else {
			if m.currentGroup >= len(m.groups) {
				m.currentGroup = len(m.groups) - 1
			}
			if m.currentFile >= len(m.groups[m.currentGroup].Files) {
				m.currentFile = len(m.groups[m.currentGroup].Files) - 1
			}
			if m.currentFile < 0 {
				m.currentFile = 0
			}
		}
	}

	m.pendingDeletion = nil
}

// View implements tea.Model
func (m DuplicatesModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if len(m.groups) == 0 {
		return m.renderNoGroups()
	}

	if m.confirmingDeletion {
		return m.renderConfirmationDialog()
	}

	return m.renderMainView()
}

func (m DuplicatesModel) renderNoGroups() string {
	style := SuccessStyle.MarginTop(2).MarginLeft(2)
	return style.Render("✅ All duplicates have been processed!\n\nPress 'q' to quit.")
}

func (m DuplicatesModel) renderConfirmationDialog() string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render("⚠️  Confirm Deletion"))
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("Are you sure you want to delete %d file(s)?\n\n", len(m.pendingDeletion)))

	for _, file := range m.pendingDeletion {
		content.WriteString(fmt.Sprintf("  • %s\n", file))
	}

	content.WriteString("\n")
	content.WriteString(ErrorStyle.Render("This action cannot be undone!"))
	content.WriteString("\n\n")
	content.WriteString("Press 'y' to confirm, 'n' to cancel")

	return content.String()
}

func (m DuplicatesModel) renderMainView() string {
	var content strings.Builder

	header := fmt.Sprintf("Clearcut - Duplicate Image Manager (Group %d of %d)",
		m.currentGroup+1, len(m.groups))
	content.WriteString(HeaderStyle.Render(header))
	content.WriteString("\n\n")

	group := m.groups[m.currentGroup]
	groupInfo := fmt.Sprintf("Hash: %s (%d files)", group.Hash, len(group.Files))
	content.WriteString(InfoStyle.Render(groupInfo))
	content.WriteString("\n\n")

	content.WriteString(m.renderFileList(group))
	content.WriteString("\n")

	if m.showHelp {
		content.WriteString(m.renderHelp())
	} else {
		content.WriteString("Press 'h' for help")
	}

	return content.String()
}

func (m DuplicatesModel) renderFileList(group DuplicateGroup) string {
	var content strings.Builder

	for i, file := range group.Files {
		var line strings.Builder

		if group.Selected[i] {
			line.WriteString("[✓] ")
		} else {
			line.WriteString("[ ] ")
		}

		fileName := filepath.Base(file)
		if i == m.currentFile {
			if group.Selected[i] {
				line.WriteString(SuccessStyle.Reverse(true).Render(fileName))
			} else {
				line.WriteString(lipgloss.NewStyle().Reverse(true).Render(fileName))
			}
		} else {
			if group.Selected[i] {
				line.WriteString(SuccessStyle.Render(fileName))
			} else {
				line.WriteString(fileName)
			}
		}

		line.WriteString(fmt.Sprintf(" (%s)", group.Details[i]))
		content.WriteString(line.String())
		content.WriteString("\n")
	}

	return content.String()
}

func (m DuplicatesModel) renderHelp() string {
	help := []string{
		"",
		"Navigation:",
		"  ↑/↓ or j/k   Navigate files in current group",
		"  ←/→ or p/n   Previous/Next duplicate group",
		"",
		"Selection:",
		"  Space        Toggle file selection",
		"  a            Select all files in group",
		"  c            Clear all selections in group",
		"",
		"Actions:",
		"  Enter        Delete all selected files from all groups (with confirmation)",
		"  s            Skip current group",
		"  h/?          Toggle this help",
		"  q            Quit",
		"",
	}

	return strings.Join(help, "\n")
}
