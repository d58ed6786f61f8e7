package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// ErrConfirmationRequired is returned when a destructive command runs
// without a terminal and without --yes.
var ErrConfirmationRequired = errors.New("confirmation required, re-run with --yes")

// Confirm asks a yes/no question. Non-interactive sessions never guess:
// they get ErrConfirmationRequired unless assumeYes is set.
func (c *Context) Confirm(title, description string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !c.Interactive {
		return false, ErrConfirmationRequired
	}

	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeDracula()).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return ok, nil
}
