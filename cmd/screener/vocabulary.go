package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-screener/internal/config"
)

var (
	vocabularyFile string
	vocabularyJSON bool
)

var vocabularyCmd = &cobra.Command{
	Use:   "vocabulary",
	Short: "Print the skill vocabulary",
	Long:  "Prints the canonical skill terms (and their aliases) that job descriptions and résumés are matched against.",
	RunE:  runVocabulary,
}

func init() {
	vocabularyCmd.Flags().StringVar(&vocabularyFile, "vocab", "", "Path to a vocabulary JSON file (default built-in)")
	vocabularyCmd.Flags().BoolVar(&vocabularyJSON, "json", false, "Print the vocabulary as JSON")
	rootCmd.AddCommand(vocabularyCmd)
}

func runVocabulary(_ *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(config.Config{VocabularyFile: vocabularyFile})
	if err != nil {
		return err
	}
	extractor, err := cfg.Extractor()
	if err != nil {
		return err
	}
	terms := extractor.Vocabulary().Terms()

	if vocabularyJSON {
		out, err := json.MarshalIndent(map[string]any{"terms": terms}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal vocabulary: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stdout, string(out))
		return nil
	}

	for _, t := range terms {
		if len(t.Aliases) == 0 {
			_, _ = fmt.Fprintln(os.Stdout, t.Name)
			continue
		}
		_, _ = fmt.Fprintf(os.Stdout, "%s (%s)\n", t.Name, strings.Join(t.Aliases, ", "))
	}
	return nil
}
