package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csheth/polysumm/internal/chat"
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION...",
	Short: "Ask a question about the current document",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var askSuggest bool

func init() {
	askCmd.Flags().BoolVar(&askSuggest, "suggest", false, "print follow-up questions after the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	if _, err := a.requireDocument(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	printed := 0
	onUpdate := func(msg chat.Message) {
		if msg.IsLoading || msg.IsError {
			return
		}
		runes := []rune(msg.Content)
		if len(runes) > printed {
			fmt.Fprint(out, string(runes[printed:]))
			printed = len(runes)
		}
	}
	question := strings.Join(args, " ")
	if err := a.engine.Send(ctx, question, onUpdate); err != nil {
		if printed > 0 {
			fmt.Fprintln(out)
		}
		return errors.New(chat.Explain(err))
	}
	fmt.Fprintln(out)

	if !askSuggest {
		return nil
	}
	req, ok := a.engine.RequestSuggestions()
	if !ok {
		return nil
	}
	a.engine.ApplySuggestions(a.engine.FetchSuggestions(ctx, req))
	suggestions := a.engine.Suggestions()
	if len(suggestions) == 0 {
		return nil
	}
	fmt.Fprintln(out, "\nSuggested questions:")
	for i, q := range suggestions {
		fmt.Fprintf(out, "  %d. %s\n", i+1, q)
	}
	return nil
}
