package service

import (
	"context"

	"algoforge/internal/common"
	"algoforge/internal/domain/model"
	"algoforge/internal/domain/repository"
	"algoforge/internal/judge"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// JudgeClient is the outbound judge contract: submit a batch, poll the
// returned tokens until every execution is terminal.
type JudgeClient interface {
	SubmitBatch(ctx context.Context, items []judge.BatchItem) ([]string, error)
	PollBatch(ctx context.Context, tokens []string) ([]judge.Result, error)
}

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	problemRepo    repository.ProblemRepository
	judge          JudgeClient
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	probRepo repository.ProblemRepository,
	judgeClient JudgeClient,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		problemRepo:    probRepo,
		judge:          judgeClient,
	}
}

type SubmitRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type SubmitResult struct {
	Accepted        bool    `json:"accepted"`
	TotalTestCases  int     `json:"totalTestCases"`
	PassedTestCases int     `json:"passedTestCases"`
	Runtime         float64 `json:"runtime"`
	Memory          int     `json:"memory"`
}

// Submit grades the code against the problem's hidden test cases. The
// submission record is persisted pending before the judge is called, so a
// crash mid-judging leaves a recoverable record instead of nothing.
func (s *SubmissionService) Submit(ctx context.Context, userID, problemID string, req SubmitRequest) (*SubmitResult, error) {
	lang, err := s.validateRequest(userID, problemID, req.Code, req.Language)
	if err != nil {
		return nil, err
	}

	if _, err := s.problemRepo.FindProblemByID(ctx, problemID); err != nil {
		return nil, err
	}
	hiddenCases, err := s.problemRepo.GetTestCases(ctx, problemID, true)
	if err != nil {
		return nil, err
	}
	if len(hiddenCases) == 0 {
		return nil, common.Errorf("problem %s has no hidden test cases", problemID)
	}

	submission := &model.Submission{
		ID:             uuid.NewString(),
		UserID:         userID,
		ProblemID:      problemID,
		Code:           req.Code,
		Language:       lang,
		Status:         model.StatusPending,
		TestCasesTotal: len(hiddenCases),
	}
	if err := s.submissionRepo.CreateSubmission(ctx, nil, submission); err != nil {
		return nil, err
	}

	outcome, _, err := s.runBatch(ctx, req.Code, lang, hiddenCases)
	if err != nil {
		// The record stays pending; there is no compensating sweep.
		log.Error().Err(err).Str("submission_id", submission.ID).Msg("judging failed, submission left pending")
		return nil, err
	}

	submission.Status = outcome.Status
	submission.TestCasesPassed = outcome.TestCasesPassed
	submission.Runtime = outcome.Runtime
	submission.Memory = outcome.Memory
	submission.ErrorMessage = outcome.ErrorMessage
	if err := s.submissionRepo.FinalizeSubmission(ctx, nil, submission); err != nil {
		return nil, err
	}

	if outcome.Status == model.StatusAccepted {
		solved, err := s.submissionRepo.IsProblemSolved(ctx, userID, problemID)
		if err != nil {
			return nil, err
		}
		if !solved {
			if err := s.submissionRepo.MarkProblemSolved(ctx, nil, userID, problemID); err != nil {
				return nil, err
			}
		}
	}

	log.Info().Str("submission_id", submission.ID).Str("status", string(outcome.Status)).
		Int("passed", outcome.TestCasesPassed).Int("total", submission.TestCasesTotal).
		Msg("submission judged")

	return &SubmitResult{
		Accepted:        outcome.Status == model.StatusAccepted,
		TotalTestCases:  submission.TestCasesTotal,
		PassedTestCases: outcome.TestCasesPassed,
		Runtime:         outcome.Runtime,
		Memory:          outcome.Memory,
	}, nil
}

type RunTestCase struct {
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expectedOutput"`
	ActualOutput   string  `json:"actualOutput"`
	StatusID       int     `json:"statusId"`
	Passed         bool    `json:"passed"`
	Time           float64 `json:"time"`
	Memory         int     `json:"memory"`
}

type RunResult struct {
	Success      bool          `json:"success"`
	TestCases    []RunTestCase `json:"testCases"`
	Runtime      float64       `json:"runtime"`
	Memory       int           `json:"memory"`
	ErrorMessage *string       `json:"errorMessage,omitempty"`
}

// Run executes the code against the problem's visible test cases for quick
// feedback. Nothing is persisted and the solved set is never touched. Every
// case's detail is returned so the caller can render a diff.
func (s *SubmissionService) Run(ctx context.Context, userID, problemID string, req SubmitRequest) (*RunResult, error) {
	lang, err := s.validateRequest(userID, problemID, req.Code, req.Language)
	if err != nil {
		return nil, err
	}

	if _, err := s.problemRepo.FindProblemByID(ctx, problemID); err != nil {
		return nil, err
	}
	visibleCases, err := s.problemRepo.GetTestCases(ctx, problemID, false)
	if err != nil {
		return nil, err
	}
	if len(visibleCases) == 0 {
		return nil, common.Errorf("problem %s has no visible test cases", problemID)
	}

	outcome, results, err := s.runBatch(ctx, req.Code, lang, visibleCases)
	if err != nil {
		return nil, err
	}

	detail := make([]RunTestCase, len(results))
	for i, r := range results {
		detail[i] = RunTestCase{
			Input:          visibleCases[i].Input,
			ExpectedOutput: visibleCases[i].Output,
			ActualOutput:   r.Stdout,
			StatusID:       r.StatusID,
			Passed:         r.StatusID == judge.StatusAccepted,
			Time:           r.Time,
			Memory:         r.Memory,
		}
	}

	return &RunResult{
		Success:      outcome.Status == model.StatusAccepted,
		TestCases:    detail,
		Runtime:      outcome.Runtime,
		Memory:       outcome.Memory,
		ErrorMessage: outcome.ErrorMessage,
	}, nil
}

// ListForProblem returns the caller's past submissions for one problem.
func (s *SubmissionService) ListForProblem(ctx context.Context, userID, problemID string) ([]model.Submission, error) {
	return s.submissionRepo.GetSubmissionsForUserProblem(ctx, userID, problemID)
}

// ListSolvedProblems returns the caller's solved set as listing summaries.
func (s *SubmissionService) ListSolvedProblems(ctx context.Context, userID string) ([]model.ProblemSummary, error) {
	return s.submissionRepo.ListSolvedProblems(ctx, userID)
}

func (s *SubmissionService) validateRequest(userID, problemID, code, language string) (model.Language, error) {
	if userID == "" || problemID == "" || code == "" || language == "" {
		return "", common.Errorf("some field missing: %w", common.ErrBadRequest)
	}
	lang, ok := model.ParseLanguage(language)
	if !ok {
		return "", common.Errorf("unsupported language %q: %w", language, common.ErrBadRequest)
	}
	return lang, nil
}

// runBatch drives one submit -> poll -> aggregate round against the judge,
// preserving test-case order end to end.
func (s *SubmissionService) runBatch(ctx context.Context, code string, lang model.Language, cases []model.TestCase) (judge.Outcome, []judge.Result, error) {
	langID, ok := judge.LanguageID(lang)
	if !ok {
		return judge.Outcome{}, nil, common.Errorf("no judge id for language %q: %w", lang, common.ErrBadRequest)
	}

	items := make([]judge.BatchItem, len(cases))
	for i, tc := range cases {
		items[i] = judge.BatchItem{
			SourceCode:     code,
			LanguageID:     langID,
			Stdin:          tc.Input,
			ExpectedOutput: tc.Output,
		}
	}

	tokens, err := s.judge.SubmitBatch(ctx, items)
	if err != nil {
		return judge.Outcome{}, nil, err
	}
	results, err := s.judge.PollBatch(ctx, tokens)
	if err != nil {
		return judge.Outcome{}, nil, err
	}
	return judge.Aggregate(results), results, nil
}
