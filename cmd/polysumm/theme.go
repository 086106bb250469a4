package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/csheth/polysumm/internal/session"
)

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark]",
	Short:     "Show or set the UI theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(session.ThemeLight), string(session.ThemeDark)},
	RunE:      runTheme,
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

func runTheme(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		if err := a.sessions.SetTheme(session.Theme(args[0])); err != nil {
			return fmt.Errorf("set theme %q: %w", args[0], err)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.sessions.Get().Theme)
	return nil
}
