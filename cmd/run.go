package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/lepinkainen/clearcut/batch"
	"github.com/lepinkainen/clearcut/imaging"
	"github.com/lepinkainen/clearcut/rembg"
	"github.com/lepinkainen/clearcut/types"
	"github.com/lepinkainen/clearcut/ui"
	"github.com/lepinkainen/clearcut/utils"
)

// DefaultOutputDirName is used when no output directory is given; it is
// created inside the input directory. The scanner is non-recursive, so the
// output folder is never picked up as input on a re-run.
const DefaultOutputDirName = "no-background"

type RunCmd struct {
	Input        string        `arg:"" name:"input" help:"Directory containing images to process" type:"path"`
	Output       string        `help:"Output directory (default: <input>/no-background)" type:"path"`
	Workers      int           `help:"Number of parallel workers (default: number of CPUs)" default:"0"`
	Timeout      time.Duration `help:"Per-image timeout, e.g. 2m (0 disables)" default:"0"`
	SkipExisting bool          `help:"Skip images whose output file already exists"`
	MaxDimension int           `help:"Downscale outputs so the longest side is at most N pixels (0 keeps size)" default:"0"`
	Backend      string        `help:"Background removal backend" default:"command" enum:"command,server"`
	Endpoint     string        `help:"rembg server URL for --backend=server" default:"http://localhost:7000"`
	Model        string        `help:"rembg model to use" default:"u2net"`
}

func (cmd *RunCmd) Run(appCtx *types.AppContext) error {
	version := types.DefaultVersion
	if appCtx != nil {
		version = appCtx.Version
	}

	fmt.Println(ui.HeaderStyle.Render(fmt.Sprintf("Clearcut %s", version)))

	outputDir := cmd.Output
	if outputDir == "" {
		outputDir = filepath.Join(cmd.Input, DefaultOutputDirName)
	}

	// Scan before touching the output directory, so a missing input
	// directory aborts without creating anything.
	tasks, err := imaging.ScanDirectory(cmd.Input, outputDir)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Printf("%s\n", ui.WarnStyle.Render(fmt.Sprintf("⚠️  No images found in %s", cmd.Input)))
		fmt.Printf("Supported extensions: %s\n", strings.Join(imaging.SupportedExtensions(), ", "))
		return nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	remover, err := cmd.buildRemover()
	if err != nil {
		return err
	}

	workers := defaultWorkers(cmd.Input, cmd.Workers)
	if workers == 1 && cmd.Workers <= 0 {
		fmt.Printf("⚠️  Network drive detected, using 1 worker for optimal performance\n")
	}

	fmt.Println(ui.ProcessingStyle.Render(
		fmt.Sprintf("🖼️  Removing backgrounds from %d images with %d workers:", len(tasks), workers)))

	processor := &imaging.Processor{
		Remover:      remover,
		MaxDimension: cmd.MaxDimension,
		SkipExisting: cmd.SkipExisting,
		Timeout:      cmd.Timeout,
	}

	tracker := imaging.NewTracker(len(tasks))
	tracker.Start()

	completed := 0
	runner := batch.NewRunner(workers, processor.Process)
	runner.OnResult = func(res imaging.Result) {
		completed++
		tracker.Increment()
		name := filepath.Base(res.Task.InputPath)
		switch {
		case res.Err == nil:
			fmt.Printf("\r[%d/%d] %s\n", completed, len(tasks),
				ui.SuccessStyle.Render(fmt.Sprintf("✅ %s → %s", name, filepath.Base(res.Task.OutputPath))))
		case errors.Is(res.Err, imaging.ErrOutputExists):
			fmt.Printf("\r[%d/%d] %s\n", completed, len(tasks),
				ui.WarnStyle.Render(fmt.Sprintf("⏭️  %s (output exists)", name)))
		default:
			fmt.Printf("\r[%d/%d] %s\n", completed, len(tasks),
				ui.ErrorStyle.Render(fmt.Sprintf("❌ %s: %v", name, res.Err)))
		}
	}

	summary := runner.Run(context.Background(), tasks)
	tracker.Finish()

	printSummary(summary, outputDir)

	// Per-task failures are reported in the summary, not via the exit
	// code. Only job-level failures reach the caller.
	return nil
}

// buildRemover selects the background-removal backend. The command backend
// needs the rembg CLI on PATH; fail early with install hints if it is not.
func (cmd *RunCmd) buildRemover() (rembg.Remover, error) {
	switch cmd.Backend {
	case "server":
		return rembg.NewServerRemover(cmd.Endpoint), nil
	default:
		if err := utils.ValidateRembgDependency(); err != nil {
			return nil, err
		}
		return rembg.NewCommandRemover(cmd.Model), nil
	}
}

// defaultWorkers resolves the worker count: explicit value wins, network
// drives get a single worker, local drives get one per CPU
func defaultWorkers(input string, requested int) int {
	if requested > 0 {
		return requested
	}
	if utils.IsNetworkDrive(input) {
		return 1
	}
	return runtime.NumCPU()
}

// printSummary displays final statistics
func printSummary(summary batch.Summary, outputDir string) {
	fmt.Printf("\n%s\n", ui.HeaderStyle.Render("📊 Run Summary"))
	if summary.Mode == batch.ModeSequential {
		fmt.Printf("   %s\n", ui.WarnStyle.Render("⚠️  Worker pool unavailable, run completed sequentially"))
	}
	fmt.Printf("   Succeeded: %d\n", summary.Succeeded)
	if summary.Skipped > 0 {
		fmt.Printf("   Skipped: %d\n", summary.Skipped)
	}
	fmt.Printf("   Failed: %d\n", summary.Failed)
	fmt.Printf("   Output directory: %s\n", outputDir)

	if len(summary.Failures) > 0 {
		fmt.Printf("\n%s\n", ui.ErrorStyle.Render("Failed files:"))
		for _, res := range summary.Failures {
			fmt.Printf("   %s: %v\n", filepath.Base(res.Task.InputPath), res.Err)
		}
	}

	if summary.Succeeded > 0 {
		fmt.Printf("\n%s\n", ui.SuccessStyle.Render("🎉 Processing complete!"))
	}
}
