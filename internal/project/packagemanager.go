package project

import (
	"os"
	"path/filepath"
	"strings"
)

// InitScript is the package binary that wires licensing into a project.
const InitScript = "code-checkout-init"

// SDKPackage is the runtime package the init script installs.
const SDKPackage = "@riff-tech/code-checkout-vscode"

// PackageManager describes how to install packages and run the init script
// for one JavaScript package manager.
type PackageManager struct {
	// Name is "npm", "yarn", "pnpm", or empty when no lock file was found.
	Name string
	// Install adds the SDK package to the project.
	Install []string
	// RunScript runs the init script.
	RunScript []string
}

// Detected reports whether a lock file identified the package manager.
func (pm PackageManager) Detected() bool {
	return pm.Name != ""
}

// InstallCommand returns the install command as a shell string.
func (pm PackageManager) InstallCommand() string {
	return strings.Join(pm.Install, " ")
}

// RunScriptCommand returns the init script command as a shell string.
func (pm PackageManager) RunScriptCommand() string {
	return strings.Join(pm.RunScript, " ")
}

var lockFiles = []struct {
	file string
	pm   PackageManager
}{
	{
		file: "package-lock.json",
		pm: PackageManager{
			Name:      "npm",
			Install:   []string{"npm", "install", SDKPackage},
			RunScript: []string{"npx", InitScript},
		},
	},
	{
		file: "yarn.lock",
		pm: PackageManager{
			Name:      "yarn",
			Install:   []string{"yarn", "add", SDKPackage},
			RunScript: []string{"yarn", "run", InitScript},
		},
	},
	{
		file: "pnpm-lock.yaml",
		pm: PackageManager{
			Name:      "pnpm",
			Install:   []string{"pnpm", "add", SDKPackage},
			RunScript: []string{"pnpm", "dlx", InitScript},
		},
	},
}

// genericPackageManager is used when no lock file is present.
var genericPackageManager = PackageManager{
	Install:   []string{"npm", "install", SDKPackage},
	RunScript: []string{"npx", InitScript},
}

// DetectPackageManager picks the package manager from the first lock file
// found in dir, checking npm, yarn and pnpm in that order.
func DetectPackageManager(dir string) PackageManager {
	for _, lf := range lockFiles {
		if _, err := os.Stat(filepath.Join(dir, lf.file)); err == nil {
			return lf.pm
		}
	}
	return genericPackageManager
}
