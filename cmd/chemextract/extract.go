// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/chemextract/internal/extract"
	"github.com/pdiddy/chemextract/internal/parsers"
	"github.com/pdiddy/chemextract/internal/tokenize"
	"github.com/pdiddy/chemextract/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [papers...]",
	Short: "Extract property records from Markdown papers",
	Long: `Extract tokenizes Markdown papers and runs the registered models over
every sentence, producing compound and temperature-property records.

Without arguments it processes every paper in --papers-dir, writing one
record file per paper to --knowledge-dir/extracted/ and skipping papers
whose output is up to date. With file arguments it extracts those papers
and prints their records to stdout.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := extractionConfig(cmd)

	tok, err := newTokenizer(cfg)
	if err != nil {
		return err
	}

	var opts []parsers.Option
	if cfg.StrictUnits {
		opts = append(opts, parsers.WithStrictUnits(true))
	}
	models := parsers.DefaultModels(opts...)

	if len(args) == 0 {
		summary, err := extract.ExtractAll(cfg, tok, models, os.Stdout)
		if err != nil {
			return err
		}
		fmt.Printf("\nextracted: %d, skipped: %d, failed: %d\n",
			summary.Extracted, summary.Skipped, summary.Failed)
		if summary.HasFailures() {
			return fmt.Errorf("%d paper(s) failed extraction", summary.Failed)
		}
		return nil
	}

	for _, path := range args {
		result, err := extract.ExtractPaper(path, tok, models, cfg.BacktrackBudget)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshaling records for %s: %w", path, err)
		}
		os.Stdout.Write(data)
	}
	return nil
}

func extractionConfig(cmd *cobra.Command) types.ExtractionConfig {
	papersDir, _ := cmd.Flags().GetString("papers-dir")
	knowledgeDir, _ := cmd.Flags().GetString("knowledge-dir")
	lexicon, _ := cmd.Flags().GetString("lexicon")
	strict, _ := cmd.Flags().GetBool("strict-units")
	budget, _ := cmd.Flags().GetInt("budget")

	return types.ExtractionConfig{
		PapersDir:       papersDir,
		KnowledgeDir:    knowledgeDir,
		LexiconPath:     lexicon,
		StrictUnits:     strict,
		BacktrackBudget: budget,
	}
}

func newTokenizer(cfg types.ExtractionConfig) (*tokenize.Tokenizer, error) {
	if cfg.LexiconPath == "" {
		return tokenize.New(), nil
	}
	tagger, err := tokenize.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		return nil, err
	}
	return tokenize.NewWithTagger(tagger), nil
}

func init() {
	extractCmd.Flags().String("papers-dir", "papers", "directory of Markdown papers")
	extractCmd.Flags().String("knowledge-dir", "knowledge", "base directory for record output (contains extracted/)")
	extractCmd.Flags().String("lexicon", "", "YAML lexicon of compound names for entity tagging")
	extractCmd.Flags().Bool("strict-units", false, "drop matches whose units are missing or unrecognized")
	extractCmd.Flags().Int("budget", 0, "backtracking step budget per match attempt (0 = default)")

	rootCmd.AddCommand(extractCmd)
}
