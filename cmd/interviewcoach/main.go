// Command interviewcoach runs scripted mock-interview scenarios from the
// terminal and writes the resulting transcript document to disk.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"interviewcoach"
	"interviewcoach/collab"
	"interviewcoach/core"
	"interviewcoach/engine"
	"interviewcoach/logging"
	"interviewcoach/transcript"
)

// scenario is the scripted input file: an intake profile plus the
// candidate's pre-written answers, played back in order.
type scenario struct {
	Intake           core.IntakeProfile `json:"intake"`
	ScriptedMessages []string           `json:"scripted_user_messages"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "interviewcoach",
		Short:         "Turn-based mock interview orchestrator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		outDir   string
		maxTurns int
		verbose  bool
	)
	cmd := &cobra.Command{
		Use:   "run <scenario.json>",
		Short: "Run a scripted interview scenario and save its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Missing .env is fine; real env vars still apply.
			_ = godotenv.Load()
			return runScenario(cmd, args[0], outDir, maxTurns, verbose)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "runs", "directory for transcript output")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 30, "turn limit before the session is stopped")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func runScenario(cmd *cobra.Command, path, outDir string, maxTurns int, verbose bool) error {
	sc, err := loadScenario(path)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewJSONLogger(os.Stderr, level)

	coach, err := interviewcoach.New(func(o *interviewcoach.Options) {
		o.Collab = collab.ConfigFromEnv()
		o.Engine = engine.Config{MaxTurns: maxTurns, Logger: logger}
		o.Logger = logger
	})
	if err != nil {
		return err
	}
	defer coach.Close()

	sessionID, err := coach.StartSession(sc.Intake)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	result, err := coach.Step(ctx, sessionID, "")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Q:", result.Question)

	for _, message := range sc.ScriptedMessages {
		if result.Done {
			break
		}
		fmt.Fprintln(cmd.OutOrStdout(), "A:", message)
		result, err = coach.Step(ctx, sessionID, message)
		if err != nil {
			return err
		}
		if result.Done {
			break
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Q:", result.Question)
	}

	// Script exhausted without a natural ending: force finalization so the
	// run always produces feedback.
	if !result.Done {
		result, err = coach.Step(ctx, sessionID, "stop")
		if err != nil {
			return err
		}
	}
	if result.Feedback != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Final:", result.Feedback.Summary())
	}

	doc, err := coach.Transcript(sessionID)
	if err != nil {
		return err
	}
	outPath := filepath.Join(outDir, fmt.Sprintf("interview_%s.json", time.Now().Format("20060102_150405")))
	if err := transcript.Save(doc, outPath); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Transcript saved to", outPath)
	return nil
}

func loadScenario(path string) (scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	var sc scenario
	if err := json.Unmarshal(raw, &sc); err != nil {
		return scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	return sc, nil
}
