package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/sparkles/sandbox"
	"github.com/pthm-cable/sparkles/statefile"
)

// SaveState writes the current state to the state path.
func (g *Game) SaveState() error {
	if g.statePath == "" {
		return fmt.Errorf("no state path configured")
	}
	if err := statefile.Save(g.statePath, &g.sb.State); err != nil {
		return err
	}
	slog.Info("state saved", "path", g.statePath, "frame", g.frame)
	return nil
}

// LoadState replaces the current state with the state file. A bad file
// leaves the running state untouched.
func (g *Game) LoadState() error {
	if g.statePath == "" {
		return fmt.Errorf("no state path configured")
	}
	st, err := statefile.Load(g.statePath, g.sb.Limits)
	if err != nil {
		return err
	}
	return g.swapState(st)
}

// ResetState restarts from the preset.
func (g *Game) ResetState() error {
	st, err := g.presetState()
	if err != nil {
		return err
	}
	return g.swapState(st)
}

func (g *Game) swapState(st sandbox.State) error {
	if err := g.sb.LoadState(st); err != nil {
		return err
	}
	g.camera.SetSpace(st.SpaceWidth, st.SpaceHeight)
	if g.ui != nil {
		g.ui.editor.Clamp(&g.sb.State)
	}
	return nil
}
