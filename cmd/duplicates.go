package cmd

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"

	"github.com/lepinkainen/clearcut/imaging"
	"github.com/lepinkainen/clearcut/types"
	"github.com/lepinkainen/clearcut/ui"
)

type DuplicatesCmd struct {
	Directory string `arg:"" name:"directory" help:"Directory to scan for duplicates" type:"existingdir" default:"."`
	NoTUI     bool   `name:"no-tui" help:"Disable interactive TUI and just list duplicates"`
}

func (cmd *DuplicatesCmd) Run(appCtx *types.AppContext) error {
	version := types.DefaultVersion
	if appCtx != nil {
		version = appCtx.Version
	}
	fmt.Println(ui.HeaderStyle.Render(fmt.Sprintf("Clearcut %s", version)))
	fmt.Printf("Scanning %s for visually identical images...\n", cmd.Directory)

	files, err := imaging.ListImages(cmd.Directory)
	if err != nil {
		return fmt.Errorf("failed to scan directory: %w", err)
	}
	if len(files) == 0 {
		fmt.Printf("%s\n", ui.WarnStyle.Render("⚠️  No images found"))
		return nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("🔍 Hashing images"),
		progressbar.OptionClearOnFinish(),
	)

	duplicates, err := imaging.FindDuplicatesByHash(cmd.Directory, func() { _ = bar.Add(1) })
	if err != nil {
		return fmt.Errorf("failed to find duplicates: %w", err)
	}
	_ = bar.Finish()

	if len(duplicates) == 0 {
		fmt.Printf("%s\n", ui.SuccessStyle.Render("✅ No duplicates found"))
		return nil
	}

	// If no-tui flag is set, just list the duplicates
	if cmd.NoTUI {
		fmt.Printf("\n%s\n", ui.InfoStyle.Render(fmt.Sprintf("Found %d group(s) of duplicates:", len(duplicates))))
		for hash, files := range duplicates {
			fmt.Printf("\n🔸 Hash %s (%d files):\n", hash, len(files))
			for _, file := range files {
				fmt.Printf("  %s\n", filepath.Base(file))
			}
		}
		return nil
	}

	// Launch TUI for interactive duplicate management
	model := ui.NewDuplicatesModel(duplicates)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
