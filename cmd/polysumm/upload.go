package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/csheth/polysumm/internal/chat"
	"github.com/csheth/polysumm/internal/upload"
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Ingest and summarize a PDF, making it the current document",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var (
	uploadOption string
	uploadLength int
)

func init() {
	uploadCmd.Flags().StringVar(&uploadOption, "option", string(upload.OptionCustomModels), "processing option (custom-models or external-api-full)")
	uploadCmd.Flags().IntVar(&uploadLength, "length", 0, "summary length in words (50-500, default 250)")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.uploads.Process(cmd.Context(), upload.Request{
		Filename:      filepath.Base(path),
		Data:          data,
		Option:        upload.Option(uploadOption),
		SummaryLength: uploadLength,
	})
	if err != nil {
		return errors.New(chat.Explain(err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Document: %s (%s, %d pages, %d chunks)\n", result.DocumentID, result.Filename, result.Pages, result.Chunks)
	fmt.Fprintf(out, "Option:   %s\n", result.Option.Title())
	if result.Topic != "" {
		fmt.Fprintf(out, "Topic:    %s\n", result.Topic)
	}
	fmt.Fprintf(out, "\n%s\n", result.Summary)
	return nil
}
