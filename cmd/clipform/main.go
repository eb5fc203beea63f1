package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/clipform/clipform/internal/config"
	"github.com/clipform/clipform/internal/logging"
	"github.com/clipform/clipform/internal/pipeline"
)

var (
	cfgFile string
	verbose bool
	logDir  string
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clipform",
	Short: "clipform - fill-in-the-blanks edit template extractor",
	Long:  "Turns short vertical videos or plain item lists into reusable edit templates with clips, location groups, and styled text overlays.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Local .env files are optional.
		_ = godotenv.Load()

		if logDir != "" {
			if _, err := logging.InitWithFile(verbose, logDir); err != nil {
				return err
			}
		} else {
			logging.Init(verbose)
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./clipform.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "mirror logs into a timestamped file under this directory")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(allocateCmd)
	rootCmd.AddCommand(templatesCmd)
}

var (
	analyzeItems    int
	analyzeLabels   []string
	analyzeName     string
	analyzeSave     bool
	analyzeBudget   time.Duration
	analyzeDuration float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [input video...]",
	Short: "Detect scenes in videos and build edit templates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := pipeline.New(log.Logger, cfg)
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(max(cfg.Concurrency, 1))

		for _, input := range args {
			input := input
			g.Go(func() error {
				opts := pipeline.AnalyzeOptions{
					Labels:   analyzeLabels,
					Items:    analyzeItems,
					Duration: analyzeDuration,
					Budget:   analyzeBudget,
					Name:     analyzeName,
					Save:     analyzeSave,
					Progress: func(fraction float64) {
						log.Debug().
							Str("input", input).
							Float64("progress", fraction).
							Msg("detecting scenes")
					},
				}

				tpl, err := pipe.Analyze(ctx, input, opts)
				if err != nil {
					return fmt.Errorf("analyze %s: %w", input, err)
				}

				log.Info().
					Str("input", input).
					Str("id", tpl.ID).
					Str("source", tpl.Source).
					Int("clips", len(tpl.Timeline.Clips)).
					Msg("template ready")
				return nil
			})
		}

		return g.Wait()
	},
}

var (
	allocateItems    int
	allocateLabels   []string
	allocateName     string
	allocateSave     bool
	allocateDuration float64
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Build a template from a duration and item count, no video needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := pipeline.New(log.Logger, cfg)
		if err != nil {
			return err
		}

		items := allocateItems
		if items == 0 {
			items = len(allocateLabels)
		}

		tpl, err := pipe.Allocate(allocateDuration, items, allocateLabels, allocateName, allocateSave)
		if err != nil {
			return err
		}

		log.Info().
			Str("id", tpl.ID).
			Float64("duration", tpl.Duration).
			Int("clips", len(tpl.Timeline.Clips)).
			Msg("template ready")

		return printJSON(cmd, tpl)
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage stored templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, err := pipeline.New(log.Logger, config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}

		list, err := pipe.Store().List()
		if err != nil {
			return err
		}

		for _, t := range list {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %6.1fs  %s\n",
				t.ID, t.Source, t.Duration, t.Name)
		}
		return nil
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a stored template as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, err := pipeline.New(log.Logger, config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}

		tpl, err := pipe.Store().Get(args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, tpl)
	},
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a stored template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, err := pipeline.New(log.Logger, config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}
		return pipe.Store().Delete(args[0])
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeItems, "items", 0, "number of list items (default: label count)")
	analyzeCmd.Flags().StringSliceVar(&analyzeLabels, "labels", nil, "comma-separated item labels")
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "template name")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "persist the template to the store")
	analyzeCmd.Flags().DurationVar(&analyzeBudget, "budget", 0, "detection time budget (default: from config)")
	analyzeCmd.Flags().Float64Var(&analyzeDuration, "duration", 0, "override video duration in seconds")

	allocateCmd.Flags().IntVar(&allocateItems, "items", 0, "number of list items (default: label count)")
	allocateCmd.Flags().StringSliceVar(&allocateLabels, "labels", nil, "comma-separated item labels")
	allocateCmd.Flags().StringVar(&allocateName, "name", "", "template name")
	allocateCmd.Flags().BoolVar(&allocateSave, "save", false, "persist the template to the store")
	allocateCmd.Flags().Float64Var(&allocateDuration, "duration", 0, "total timeline duration in seconds (required)")
	_ = allocateCmd.MarkFlagRequired("duration")

	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesDeleteCmd)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
