package model

import (
	"time"
)

type ProblemDifficulty string

const (
	DifficultyEasy   ProblemDifficulty = "easy"
	DifficultyMedium ProblemDifficulty = "medium"
	DifficultyHard   ProblemDifficulty = "hard"
)

func (d ProblemDifficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Problem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Difficulty  ProblemDifficulty `json:"difficulty"`
	Tag         string            `json:"tag"`
	CreatedByID *string           `json:"created_by_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	// Example cases shown to users and exercised by the run path.
	VisibleTestCases []TestCase `json:"visible_test_cases,omitempty"`
	// Grading cases, never exposed to readers.
	HiddenTestCases []TestCase `json:"hidden_test_cases,omitempty"`

	StartCode         []CodeSnippet `json:"start_code,omitempty"`
	ReferenceSolution []CodeSnippet `json:"reference_solution,omitempty"` // Admin only view
}

type TestCase struct {
	ID          string  `json:"id"`
	ProblemID   string  `json:"problem_id"`
	Input       string  `json:"input"`
	Output      string  `json:"output"`
	Explanation *string `json:"explanation,omitempty"`
	IsHidden    bool    `json:"-"`
	SortOrder   int     `json:"sort_order"`
}

// CodeSnippet is a per-language piece of code attached to a problem, either
// the starter skeleton handed to users or the complete reference solution.
type CodeSnippet struct {
	Language Language `json:"language"`
	Code     string   `json:"code"`
}

type SnippetKind string

const (
	SnippetStarter  SnippetKind = "starter"
	SnippetSolution SnippetKind = "solution"
)

// ProblemSummary is the listing projection: no test cases, no code.
type ProblemSummary struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Difficulty ProblemDifficulty `json:"difficulty"`
	Tag        string            `json:"tag"`
}
