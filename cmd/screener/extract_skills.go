package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-screener/internal/config"
	"github.com/jonathan/candidate-screener/internal/ingestion"
)

var (
	extractSkillsInput  string
	extractSkillsOutput string
	extractSkillsVocab  string
	extractSkillsMode   string
)

var extractSkillsCmd = &cobra.Command{
	Use:   "extract-skills",
	Short: "List the vocabulary skills mentioned in a document",
	Long:  "Reads a job description or résumé (text, HTML, PDF or Word) and prints the canonical skills it mentions, one per line, or writes them as JSON with --out.",
	RunE:  runExtractSkills,
}

func init() {
	extractSkillsCmd.Flags().StringVarP(&extractSkillsInput, "in", "i", "", "Path to the input document (required)")
	extractSkillsCmd.Flags().StringVarP(&extractSkillsOutput, "out", "o", "", "Write {\"skills\": [...]} JSON to this path")
	extractSkillsCmd.Flags().StringVar(&extractSkillsVocab, "vocab", "", "Path to a vocabulary JSON file (default built-in)")
	extractSkillsCmd.Flags().StringVar(&extractSkillsMode, "mode", "", "Match mode: substring or word (default substring)")

	if err := extractSkillsCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(extractSkillsCmd)
}

func runExtractSkills(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(config.Config{VocabularyFile: extractSkillsVocab, MatchMode: extractSkillsMode})
	if err != nil {
		return err
	}
	extractor, err := cfg.Extractor()
	if err != nil {
		return err
	}

	f, err := os.Open(extractSkillsInput)
	if err != nil {
		return fmt.Errorf("failed to open input file %s: %w", extractSkillsInput, err)
	}
	defer f.Close()

	text, err := ingestion.NewFileExtractor(cfg.MaxUploadBytes).Extract(cmd.Context(), filepath.Base(extractSkillsInput), f)
	if err != nil {
		return err
	}
	found := extractor.Extract(text).Sorted()

	if extractSkillsOutput == "" {
		for _, name := range found {
			_, _ = fmt.Fprintln(os.Stdout, name)
		}
		return nil
	}

	out, err := json.MarshalIndent(map[string][]string{"skills": found}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}
	if err := writeOutput(extractSkillsOutput, out); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Wrote %d skills to %s\n", len(found), extractSkillsOutput)
	return nil
}

// writeOutput writes data to path, creating parent directories as needed.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
