package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-analyzer/internal/app"
	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
)

var (
	flagResume          string
	flagJobDescription  string
	flagJobFile         string
	flagExperienceLevel string
	flagSkills          []string
	flagCompact         bool
)

var rootCmd = &cobra.Command{
	Use:          "analyze",
	Short:        "Analyze a PDF resume against a job description",
	SilenceUsage: true,
	Long: `analyze extracts text and skills from a PDF resume, scores it against a job
description and prints the analysis report as JSON on stdout.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.Flags().StringVar(&flagResume, "resume", "", "Path to the resume PDF (required)")
	rootCmd.Flags().StringVar(&flagJobDescription, "job-description", "", "Job description text")
	rootCmd.Flags().StringVar(&flagJobFile, "job-file", "", "Read the job description from a text file")
	rootCmd.Flags().StringVar(&flagExperienceLevel, "experience-level", models.DefaultExperienceLevel, "Candidate experience level (e.g. junior, mid, senior)")
	rootCmd.Flags().StringArrayVar(&flagSkills, "skill", nil, "Required skill; repeat for several")
	rootCmd.Flags().BoolVar(&flagCompact, "compact", false, "Print the report without indentation")
	_ = rootCmd.MarkFlagRequired("resume")
	rootCmd.MarkFlagsMutuallyExclusive("job-description", "job-file")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	logger.InitWithWriter(cfg.Log, os.Stderr)

	jobDescription, err := readJobDescription()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pipeline, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	doc, err := pipeline.Loader.FromPath(flagResume)
	if err != nil {
		return fmt.Errorf("cannot load resume: %w", err)
	}

	report, err := pipeline.Analyzer.Analyze(ctx, &models.AnalyzeRequest{
		Document:        doc,
		JobDescription:  jobDescription,
		ExperienceLevel: flagExperienceLevel,
		RequiredSkills:  flagSkills,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if !flagCompact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}

func readJobDescription() (string, error) {
	if flagJobFile == "" {
		return flagJobDescription, nil
	}
	data, err := os.ReadFile(flagJobFile)
	if err != nil {
		return "", fmt.Errorf("cannot read job description: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		if errors.Is(err, context.DeadlineExceeded) {
			os.Exit(124)
		}
		os.Exit(1)
	}
}
