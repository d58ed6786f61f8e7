package system

import (
	"fmt"

	"github.com/julianstephens/peakstate/internal/cli"
	"github.com/julianstephens/peakstate/internal/validation"
)

type ValidateCmd struct {
	Fix bool `help:"Recompute derived time fields of session entries where they disagree with the session bounds."`
	Yes bool `short:"y" help:"Do not ask for confirmation before fixing."`
}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	svc := ctx.Entries()
	entries, err := svc.Entries()
	if err != nil {
		return err
	}

	result := validation.New().ValidateEntries(entries)
	if !result.HasConflicts() {
		ctx.Println(cli.Check(true, fmt.Sprintf("%d entries validated, no problems found.", len(entries))))
		return nil
	}

	ctx.Print(result.FormatReport())
	if !c.Fix {
		ctx.Println()
		ctx.Println(cli.LabelStyle.Render("Run with --fix to repair session time fields."))
		return fmt.Errorf("validation found %d problem(s)", len(result.Conflicts))
	}

	fixed, actions := validation.AutoFixSessionFields(result.Conflicts, entries, ctx.Loc())
	if len(actions) == 0 {
		ctx.Println()
		ctx.Println("None of the problems can be fixed automatically.")
		return fmt.Errorf("validation found %d problem(s)", len(result.Conflicts))
	}

	ok, err := ctx.Confirm(fmt.Sprintf("Apply %d fix(es)?", len(actions)), "A backup is taken first.", c.Yes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Fix cancelled.")
		return nil
	}

	err = ctx.WithWriteLock(func() error {
		ctx.PerformAutomaticBackup()
		_, err := svc.Replace(fixed)
		return err
	})
	if err != nil {
		return err
	}

	ctx.Println()
	for _, a := range actions {
		ctx.Println(cli.Check(true, a.Action))
	}

	remaining := validation.New().ValidateEntries(fixed)
	if remaining.HasConflicts() {
		return fmt.Errorf("%d problem(s) remain after fixing", len(remaining.Conflicts))
	}
	return nil
}
