package utils

import (
	"fmt"
	"os/exec"
	"runtime"
)

// ValidateRembgDependency checks if the rembg CLI is available in PATH
func ValidateRembgDependency() error {
	if _, err := exec.LookPath("rembg"); err != nil {
		return fmt.Errorf("rembg not found in PATH. %s", getInstallationInstructions())
	}
	return nil
}

// getInstallationInstructions returns platform-specific installation instructions
func getInstallationInstructions() string {
	switch runtime.GOOS {
	case "darwin", "linux":
		return `Install with: pipx install "rembg[cli]" (or pip install "rembg[cli]")`
	case "windows":
		return `Install with: pip install "rembg[cli]" and make sure the Python Scripts directory is on PATH`
	default:
		return "See https://github.com/danielgatis/rembg for installation instructions"
	}
}
