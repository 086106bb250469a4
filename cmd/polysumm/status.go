package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/csheth/polysumm/internal/chat"
	"github.com/csheth/polysumm/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the session state as YAML",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var (
	statusHistory bool
	statusCheck   bool
)

func init() {
	statusCmd.Flags().BoolVar(&statusHistory, "history", false, "include archived conversations")
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "make one request to the API and report whether it answered")
	rootCmd.AddCommand(statusCmd)
}

type statusReport struct {
	Session session.Session      `yaml:"session"`
	History []session.Transcript `yaml:"chatHistory,omitempty"`
	API     *apiStatus           `yaml:"api,omitempty"`
}

type apiStatus struct {
	URL       string `yaml:"url"`
	Connected bool   `yaml:"connected"`
	Error     string `yaml:"error,omitempty"`
}

const checkQuery = "What is this paper about?"

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	report := statusReport{Session: a.sessions.Get()}
	if statusHistory {
		history, err := a.sessions.History()
		if err != nil {
			return err
		}
		report.History = history
	}
	if statusCheck {
		report.API = a.checkAPI(cmd)
	}
	out, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// checkAPI reports connected only when the follow-up endpoint answered.
func (a *app) checkAPI(cmd *cobra.Command) *apiStatus {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	status := &apiStatus{URL: a.client.BaseURL()}
	if _, err := a.client.FollowUp(ctx, checkQuery, a.sessions.Get().DocumentID); err != nil {
		status.Error = chat.Explain(err)
		return status
	}
	status.Connected = true
	return status
}
