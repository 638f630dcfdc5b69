package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/guardline/incident-agent/internal/ai"
	"github.com/guardline/incident-agent/internal/alert"
	"github.com/guardline/incident-agent/internal/config"
	"github.com/guardline/incident-agent/internal/pipeline"
	"github.com/guardline/incident-agent/internal/store"
	"github.com/guardline/incident-agent/internal/worker"
)

var (
	runThreshold     float64
	runMaxIterations int
	runDBPath        string
)

var runCmd = &cobra.Command{
	Use:   "run [text]",
	Short: "Process one incident report",
	Long: `Process a single incident report through the full pipeline.

The report text is taken from the argument, or from stdin when no argument
is given:

  incident-agent run 'זריקת אבנים על אוטובוס ליד חברון'
  cat report.txt | incident-agent run`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("threshold") {
			cfg.Threshold = runThreshold
		}
		if cmd.Flags().Changed("max-iterations") {
			cfg.MaxIterations = runMaxIterations
		}
		if runDBPath != "" {
			cfg.DBPath = runDBPath
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		text, err := reportText(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := runPipeline(ctx, cfg, text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printRunResult(st)
		if st.Phase == pipeline.PhaseAbort {
			os.Exit(1)
		}
	},
}

func reportText(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("no report text given (argument or stdin)")
	}
	return text, nil
}

func runPipeline(ctx context.Context, cfg config.Config, text string) (*pipeline.State, error) {
	client, err := ai.NewClient(ai.Config{APIKey: cfg.APIKey, Model: cfg.Model})
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	mailer := alert.NewSMTPMailer(alert.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})
	sender := alert.NewSender(mailer, alert.Config{
		Sender:    cfg.AlertSender,
		Recipient: cfg.AlertRecipient,
	})

	w := worker.New(sender, store.NewUpserter(db))
	controller := pipeline.NewController(client, w,
		pipeline.WithThreshold(cfg.Threshold),
		pipeline.WithMaxIterations(cfg.MaxIterations))

	fmt.Printf("Processing report (%d chars)...\n", len(text))
	return controller.Run(ctx, text)
}

func printRunResult(st *pipeline.State) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Println()
	switch st.Phase {
	case pipeline.PhaseDone:
		fmt.Printf("%s Run %s complete\n", green("✓"), cyan(st.RunID))
	case pipeline.PhaseSkip:
		fmt.Printf("%s Run %s skipped\n", yellow("→"), cyan(st.RunID))
	case pipeline.PhaseAbort:
		fmt.Printf("%s Run %s aborted\n", red("✗"), cyan(st.RunID))
	}

	fmt.Printf("  Iterations: %d (score %.2f, threshold %.2f)\n",
		st.Iteration, st.Score, st.Threshold)
	if st.TranslatedText != "" {
		fmt.Printf("  Translation: %s\n", st.TranslatedText)
	}
	if st.ErrorMessage != "" {
		fmt.Printf("  %s %s\n", yellow("!"), st.ErrorMessage)
	}
	if c := st.Classification; c != nil && c.Relevant {
		fmt.Printf("  Incident: %s at %s", cyan(c.Crime.Label()), cyan(c.Location))
		if c.RequiresPriorityAlert {
			fmt.Printf(" %s", red("[priority alert]"))
		}
		fmt.Println()
	}
	if st.WorkerResult != nil {
		fmt.Printf("  Actions: %s\n", st.WorkerResult.Summary)
		if a := st.WorkerResult.Alert; a != nil && a.Err != nil {
			fmt.Printf("  %s alert delivery failed: %v\n", yellow("!"), a.Err)
		}
		if u := st.WorkerResult.Upsert; u != nil {
			if u.Duplicate {
				fmt.Printf("  Stored: duplicate of %s in %s\n", u.IncidentID[:12], u.YearMonth)
			} else {
				fmt.Printf("  Stored: %s in %s\n", u.IncidentID[:12], u.YearMonth)
			}
		}
	}
}

func init() {
	runCmd.Flags().Float64Var(&runThreshold, "threshold", pipeline.DefaultThreshold,
		"Quality threshold for accepting a translation (0-1)")
	runCmd.Flags().IntVar(&runMaxIterations, "max-iterations", pipeline.DefaultMaxIterations,
		"Maximum translation attempts before aborting")
	runCmd.Flags().StringVar(&runDBPath, "db", "",
		"Path to the incident database (default from config)")
	rootCmd.AddCommand(runCmd)
}
