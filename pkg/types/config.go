// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExtractionConfig holds settings for the extraction stage.
type ExtractionConfig struct {
	// PapersDir is the base directory containing source markdown documents.
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`

	// KnowledgeDir is the base directory for knowledge output (contains extracted/).
	KnowledgeDir string `json:"knowledge_dir" yaml:"knowledge_dir"`

	// LexiconPath is an optional YAML file listing chemical names for the
	// dictionary entity tagger. Empty disables dictionary tagging.
	LexiconPath string `json:"lexicon_path,omitempty" yaml:"lexicon_path,omitempty"`

	// StrictUnits drops records whose captured unit text is unrecognized.
	// When false such records are kept without a canonical unit.
	StrictUnits bool `json:"strict_units" yaml:"strict_units"`

	// BacktrackBudget bounds the matching steps per pattern attempt.
	// Exceeding it counts as no-match. Zero uses the default budget.
	BacktrackBudget int `json:"backtrack_budget" yaml:"backtrack_budget"`
}

// KnowledgeBaseConfig holds settings for the record index stage.
type KnowledgeBaseConfig struct {
	// KnowledgeDir is the base directory for knowledge (contains extracted/, index/).
	KnowledgeDir string `json:"knowledge_dir" yaml:"knowledge_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Extraction    ExtractionConfig    `json:"extraction" yaml:"extraction"`
	KnowledgeBase KnowledgeBaseConfig `json:"knowledge_base" yaml:"knowledge_base"`
}
