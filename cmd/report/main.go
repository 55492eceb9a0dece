package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"example.com/fitsummary/internal/api"
	"example.com/fitsummary/internal/client"
	"example.com/fitsummary/internal/report"
	"example.com/fitsummary/internal/training"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "report",
		Short:         "Summarize workout sensor packages offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.AddCommand(newRunCmd())
	root.AddCommand(newCodesCmd())
	root.AddCommand(newSubmitCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "run [batch.yaml]",
		Short: "Print a summary for every package in a batch file, or the built-in sample",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := loadBatch(args)
			if err != nil {
				return err
			}

			switch format {
			case "text":
				return report.Run(cmd.Context(), batch, report.NewWriterSink(cmd.OutOrStdout()))
			case "yaml":
				sink := report.NewYAMLSink(cmd.OutOrStdout())
				if err := report.Run(cmd.Context(), batch, sink); err != nil {
					return err
				}
				return sink.Close()
			default:
				return fmt.Errorf("unsupported format %q", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or yaml")
	return cmd
}

func newCodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "List supported workout codes and their readings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, a := range training.Activities {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%-11s\t%d\t%s\n", a, a.Label(), a.Arity(), strings.Join(a.Fields(), ",")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newSubmitCmd() *cobra.Command {
	var apiURL, token, userID, keyPrefix string

	cmd := &cobra.Command{
		Use:   "submit [batch.yaml]",
		Short: "Send every package in a batch file, or the built-in sample, to the workout API",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			batch, err := loadBatch(args)
			if err != nil {
				return err
			}

			c := client.New(apiURL, token)
			for i, pkg := range batch.Packages {
				key := ""
				if keyPrefix != "" {
					key = fmt.Sprintf("%s-%d", keyPrefix, i+1)
				}
				resp, err := c.RecordWorkout(cmd.Context(), api.RecordWorkoutRequest{
					UserID:      userID,
					WorkoutType: pkg.WorkoutType,
					Data:        pkg.Data,
					Source:      "report-cli",
				}, key)
				if err != nil {
					return fmt.Errorf("package %d: %w", i+1, err)
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), resp.Message); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", envOr("WORKOUT_API_URL", "http://localhost:8080"), "workout API base URL")
	cmd.Flags().StringVar(&token, "token", os.Getenv("WORKOUT_API_TOKEN"), "bearer token with workouts:write scope")
	cmd.Flags().StringVar(&userID, "user", "", "user id the packages belong to")
	cmd.Flags().StringVar(&keyPrefix, "key-prefix", "", "derive an Idempotency-Key per package from this prefix")
	return cmd
}

func loadBatch(args []string) (report.Batch, error) {
	if len(args) == 0 {
		return report.SampleBatch(), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return report.Batch{}, err
	}
	defer f.Close()
	return report.LoadBatch(f)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
