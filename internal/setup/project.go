package setup

import (
	"context"

	"github.com/riff-tech/code-checkout-cli/internal/project"
)

// ProjectInitializer runs the licensing init script in the project.
type ProjectInitializer struct {
	deps Deps
}

// NewProjectInitializer creates a ProjectInitializer.
func NewProjectInitializer(deps Deps) *ProjectInitializer {
	return &ProjectInitializer{deps: deps}
}

// Initialize runs the init script with the project's package manager.
func (i *ProjectInitializer) Initialize(ctx context.Context) error {
	out := i.deps.Printer

	pm := project.DetectPackageManager(i.deps.Dir)
	if pm.Detected() {
		out.Line("Detected %s. Running initialization script...", pm.Name)
	} else {
		out.Line("Running initialization script...")
	}

	if err := i.deps.Runner.RunInitScript(ctx, i.deps.Dir); err != nil {
		out.Line("Make sure %s is installed: %s", project.SDKPackage, pm.InstallCommand())
		out.Line("Then run the script manually: %s", pm.RunScriptCommand())
		return err
	}
	out.Success("Initialization complete!")
	return nil
}
