package models

// DefaultSuiteName is used when a suite file does not name itself
const DefaultSuiteName = "default_suite"

// Suite is a named list of cases loaded from a suite file
type Suite struct {
	SuiteName   string     `json:"suite_name" yaml:"suite_name"`
	OutputDir   string     `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Concurrency int        `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Cases       []CaseSpec `json:"cases" yaml:"cases"`
}
