package main

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/csheth/polysumm/internal/tuitest"
)

func TestTUIStartsOnUploadForm(t *testing.T) {
	if testing.Short() {
		t.Skip("pty test skipped in short mode")
	}
	server, _ := newFakeService(t)
	stateDir := setupEnv(t, server.URL)
	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "--no-alt-screen"},
		Dir:     cmdDir,
		Env:     stateEnv(stateDir, server.URL),
		Width:   100,
		Height:  32,
		Steps: []tuitest.Step{
			{WaitFor: "Summarization option"},
			tuitest.Press(tuitest.KeyCtrlC),
		},
		Timeout:        10 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}
	frame, ok := rec.FinalFrame()
	if !ok {
		t.Fatalf("no frames captured")
	}
	for _, want := range []string{"PolySumm", "AI-Powered Summary", "Expert Analysis"} {
		if !rec.Contains(want) {
			t.Fatalf("expected %q on screen, final frame:\n%s", want, frame.Plain)
		}
	}
}

func TestTUIAnswersQuestionForLoadedDocument(t *testing.T) {
	if testing.Short() {
		t.Skip("pty test skipped in short mode")
	}
	server, fake := newFakeService(t)
	stateDir := setupEnv(t, server.URL)
	mustRun(t, "upload", filepath.Join("testdata", "paper.pdf"))

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "--no-alt-screen"},
		Dir:     cmdDir,
		Env:     stateEnv(stateDir, server.URL),
		Width:   100,
		Height:  40,
		Steps: []tuitest.Step{
			tuitest.Type("doc doc-42", "What is new?"),
			tuitest.Press(tuitest.KeyEnter),
			{WaitFor: "sparse pattern"},
			tuitest.Press(tuitest.KeyCtrlC),
		},
		Timeout:        15 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}
	if !rec.Contains("Summary") {
		t.Fatal("summary banner never rendered")
	}
	if got := len(fake.asked()); got != 1 {
		t.Fatalf("expected one ask call, got %d", got)
	}
}

func stateEnv(stateDir, apiURL string) []string {
	return []string{
		"POLYSUMM_STATE_DIR=" + stateDir,
		"POLYSUMM_LOG_FILE=" + filepath.Join(stateDir, "polysumm.log"),
		"POLYSUMM_API_URL=" + apiURL,
		"POLYSUMM_STORE=file",
		"POLYSUMM_TYPING=false",
		"POLYSUMM_AUTO_SUGGEST=false",
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	name := "polysumm-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
