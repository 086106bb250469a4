package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/csheth/polysumm/internal/chat"
	"github.com/csheth/polysumm/internal/session"
)

var recoverCmd = &cobra.Command{
	Use:   "recover DOCUMENT_ID",
	Short: "Make an earlier document current again and regenerate its summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecover,
}

func init() {
	rootCmd.AddCommand(recoverCmd)
}

func runRecover(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.uploads.Resume(cmd.Context(), args[0])
	if errors.Is(err, session.ErrNotFound) {
		return err
	}
	if err != nil {
		return errors.New(chat.Explain(err))
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Resumed %s (%s)\n\n%s\n", result.DocumentID, result.Option.Title(), result.Summary)
	return nil
}
