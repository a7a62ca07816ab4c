package service

import (
	"context"
	"database/sql"

	"algoforge/internal/common"
	"algoforge/internal/domain/model"
	"algoforge/internal/domain/repository"
	"algoforge/internal/judge"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
)

type ProblemService struct {
	problemRepo repository.ProblemRepository
	judge       JudgeClient
	db          *sql.DB // For transactions
}

func NewProblemService(problemRepo repository.ProblemRepository, judgeClient JudgeClient, db *sql.DB) *ProblemService {
	return &ProblemService{
		problemRepo: problemRepo,
		judge:       judgeClient,
		db:          db,
	}
}

type TestCaseInput struct {
	Input       string  `json:"input"`
	Output      string  `json:"output"`
	Explanation *string `json:"explanation,omitempty"`
}

type CodeSnippetInput struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

type ProblemRequest struct {
	Title             string                  `json:"title"`
	Description       string                  `json:"description"`
	Difficulty        model.ProblemDifficulty `json:"difficulty"`
	Tag               string                  `json:"tag"`
	VisibleTestCases  []TestCaseInput         `json:"visible_test_cases"`
	HiddenTestCases   []TestCaseInput         `json:"hidden_test_cases"`
	StartCode         []CodeSnippetInput      `json:"start_code"`
	ReferenceSolution []CodeSnippetInput      `json:"reference_solution"`
}

// CreateProblem validates the request, proves every reference solution
// against the visible test cases through the judge, and only then persists
// the problem. A failing reference solution persists nothing.
func (s *ProblemService) CreateProblem(ctx context.Context, userID string, req ProblemRequest) (*model.Problem, error) {
	startCode, refSolutions, err := s.validateProblemRequest(&req)
	if err != nil {
		return nil, err
	}

	if err := s.proveReferenceSolutions(ctx, req.VisibleTestCases, refSolutions); err != nil {
		return nil, err
	}

	problem := &model.Problem{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Tag:         req.Tag,
		CreatedByID: &userID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.problemRepo.CreateProblem(ctx, tx, problem); err != nil {
		return nil, err
	}
	if err := s.persistProblemDetails(ctx, tx, problem.ID, &req, startCode, refSolutions); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().Str("problem_id", problem.ID).Str("slug", problem.Slug).Msg("problem created")
	return problem, nil
}

// UpdateProblem re-validates and re-proves the edited problem the same way
// creation does, then swaps test cases and code snippets wholesale.
func (s *ProblemService) UpdateProblem(ctx context.Context, problemID string, req ProblemRequest) (*model.Problem, error) {
	existing, err := s.problemRepo.FindProblemByID(ctx, problemID)
	if err != nil {
		return nil, err
	}

	startCode, refSolutions, err := s.validateProblemRequest(&req)
	if err != nil {
		return nil, err
	}
	if err := s.proveReferenceSolutions(ctx, req.VisibleTestCases, refSolutions); err != nil {
		return nil, err
	}

	existing.Title = req.Title
	existing.Slug = slug.Make(req.Title)
	existing.Description = req.Description
	existing.Difficulty = req.Difficulty
	existing.Tag = req.Tag

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.problemRepo.UpdateProblem(ctx, tx, existing); err != nil {
		return nil, err
	}
	if err := s.problemRepo.DeleteTestCases(ctx, tx, problemID); err != nil {
		return nil, err
	}
	if err := s.problemRepo.DeleteCodeSnippets(ctx, tx, problemID); err != nil {
		return nil, err
	}
	if err := s.persistProblemDetails(ctx, tx, problemID, &req, startCode, refSolutions); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().Str("problem_id", problemID).Msg("problem updated")
	return existing, nil
}

func (s *ProblemService) DeleteProblem(ctx context.Context, problemID string) error {
	if problemID == "" {
		return common.ErrBadRequest
	}
	return s.problemRepo.DeleteProblem(ctx, problemID)
}

// GetProblemDetails loads a problem for display. Hidden test cases and
// reference solutions are only attached for admins.
func (s *ProblemService) GetProblemDetails(ctx context.Context, problemID, userRole string) (*model.Problem, error) {
	problem, err := s.problemRepo.FindProblemByID(ctx, problemID)
	if err != nil {
		return nil, err
	}

	visible, err := s.problemRepo.GetTestCases(ctx, problemID, false)
	if err != nil {
		return nil, err
	}
	problem.VisibleTestCases = visible

	startCode, err := s.problemRepo.GetCodeSnippets(ctx, problemID, model.SnippetStarter)
	if err != nil {
		return nil, err
	}
	problem.StartCode = startCode

	if userRole == model.RoleAdmin {
		hidden, err := s.problemRepo.GetTestCases(ctx, problemID, true)
		if err != nil {
			return nil, err
		}
		problem.HiddenTestCases = hidden

		solutions, err := s.problemRepo.GetCodeSnippets(ctx, problemID, model.SnippetSolution)
		if err != nil {
			return nil, err
		}
		problem.ReferenceSolution = solutions
	}

	return problem, nil
}

func (s *ProblemService) ListProblems(ctx context.Context) ([]model.ProblemSummary, error) {
	return s.problemRepo.ListProblems(ctx)
}

func (s *ProblemService) validateProblemRequest(req *ProblemRequest) ([]model.CodeSnippet, []model.CodeSnippet, error) {
	if req.Title == "" || req.Description == "" || req.Tag == "" {
		return nil, nil, common.Errorf("missing required problem fields: %w", common.ErrBadRequest)
	}
	if !req.Difficulty.Valid() {
		return nil, nil, common.Errorf("unknown difficulty %q: %w", req.Difficulty, common.ErrBadRequest)
	}
	if len(req.VisibleTestCases) == 0 || len(req.HiddenTestCases) == 0 {
		return nil, nil, common.Errorf("problems need at least one visible and one hidden test case: %w", common.ErrBadRequest)
	}
	if len(req.ReferenceSolution) == 0 {
		return nil, nil, common.Errorf("a reference solution is required: %w", common.ErrBadRequest)
	}

	startCode, err := parseSnippets(req.StartCode)
	if err != nil {
		return nil, nil, err
	}
	refSolutions, err := parseSnippets(req.ReferenceSolution)
	if err != nil {
		return nil, nil, err
	}
	return startCode, refSolutions, nil
}

func parseSnippets(inputs []CodeSnippetInput) ([]model.CodeSnippet, error) {
	snippets := make([]model.CodeSnippet, len(inputs))
	for i, in := range inputs {
		lang, ok := model.ParseLanguage(in.Language)
		if !ok {
			return nil, common.Errorf("unsupported language %q: %w", in.Language, common.ErrBadRequest)
		}
		if in.Code == "" {
			return nil, common.Errorf("empty code snippet for %s: %w", lang, common.ErrBadRequest)
		}
		snippets[i] = model.CodeSnippet{Language: lang, Code: in.Code}
	}
	return snippets, nil
}

// proveReferenceSolutions runs every reference solution against the visible
// test cases through the judge and rejects the problem unless each case
// comes back accepted.
func (s *ProblemService) proveReferenceSolutions(ctx context.Context, visible []TestCaseInput, solutions []model.CodeSnippet) error {
	for _, sol := range solutions {
		langID, ok := judge.LanguageID(sol.Language)
		if !ok {
			return common.Errorf("no judge id for language %q: %w", sol.Language, common.ErrBadRequest)
		}

		items := make([]judge.BatchItem, len(visible))
		for i, tc := range visible {
			items[i] = judge.BatchItem{
				SourceCode:     sol.Code,
				LanguageID:     langID,
				Stdin:          tc.Input,
				ExpectedOutput: tc.Output,
			}
		}

		tokens, err := s.judge.SubmitBatch(ctx, items)
		if err != nil {
			return err
		}
		results, err := s.judge.PollBatch(ctx, tokens)
		if err != nil {
			return err
		}

		for i, r := range results {
			if r.StatusID != judge.StatusAccepted {
				return common.Errorf("reference solution for %s failed visible case %d (status %d): %w",
					sol.Language, i+1, r.StatusID, common.ErrValidation)
			}
		}
	}
	return nil
}

func (s *ProblemService) persistProblemDetails(ctx context.Context, tx *sql.Tx, problemID string, req *ProblemRequest, startCode, refSolutions []model.CodeSnippet) error {
	cases := make([]model.TestCase, 0, len(req.VisibleTestCases)+len(req.HiddenTestCases))
	for _, tc := range req.VisibleTestCases {
		cases = append(cases, model.TestCase{
			ID:          uuid.NewString(),
			Input:       tc.Input,
			Output:      tc.Output,
			Explanation: tc.Explanation,
			IsHidden:    false,
		})
	}
	for _, tc := range req.HiddenTestCases {
		cases = append(cases, model.TestCase{
			ID:       uuid.NewString(),
			Input:    tc.Input,
			Output:   tc.Output,
			IsHidden: true,
		})
	}

	if err := s.problemRepo.AddTestCases(ctx, tx, problemID, cases); err != nil {
		return err
	}
	if err := s.problemRepo.AddCodeSnippets(ctx, tx, problemID, model.SnippetStarter, startCode); err != nil {
		return err
	}
	return s.problemRepo.AddCodeSnippets(ctx, tx, problemID, model.SnippetSolution, refSolutions)
}
