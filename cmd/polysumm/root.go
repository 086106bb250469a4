package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/polysumm/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "polysumm",
	Short: "Summarize research papers and chat about them",
	Long: `polysumm uploads a PDF to the summarization service, shows the summary and
lets you ask follow-up questions answered from the paper. Run it without a
subcommand for the interactive UI.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

var (
	flagEnvFile     string
	flagAPIURL      string
	flagStore       string
	flagStateDir    string
	flagDebug       bool
	flagNoTyping    bool
	flagNoAltScreen bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagEnvFile, "env-file", ".env", "optional dotenv file read before the environment")
	flags.StringVar(&flagAPIURL, "api-url", "", "base URL of the summarization service")
	flags.StringVar(&flagStore, "store", "", "durable session backend (file or redis)")
	flags.StringVar(&flagStateDir, "state-dir", "", "directory for session state and logs")
	flags.BoolVar(&flagDebug, "debug", false, "log at debug level")
	flags.BoolVar(&flagNoTyping, "no-typing", false, "show answers whole instead of typing them out")
	rootCmd.Flags().BoolVar(&flagNoAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := []tea.ProgramOption{}
	if !flagNoAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(tui.New(tui.Config{
		Engine:      a.engine,
		Sessions:    a.sessions,
		Uploads:     a.uploads,
		Logger:      a.logger,
		AutoSuggest: a.cfg.AutoSuggest,
	}), opts...)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
