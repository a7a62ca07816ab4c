package service

import (
	"context"
	"testing"

	"algoforge/internal/common"
	"algoforge/internal/domain/model"
	"algoforge/internal/judge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProblemRequest() ProblemRequest {
	return ProblemRequest{
		Title:       "Two Sum",
		Description: "Add two numbers.",
		Difficulty:  model.DifficultyEasy,
		Tag:         "math",
		VisibleTestCases: []TestCaseInput{
			{Input: "1 2", Output: "3"},
		},
		HiddenTestCases: []TestCaseInput{
			{Input: "10 20", Output: "30"},
		},
		StartCode: []CodeSnippetInput{
			{Language: "c++", Code: "int main(){}"},
		},
		ReferenceSolution: []CodeSnippetInput{
			{Language: "cpp", Code: "int main(){ /* solves it */ }"},
		},
	}
}

func TestCreateProblemRejectsFailingReferenceSolution(t *testing.T) {
	jc := &fakeJudge{results: []judge.Result{
		{StatusID: judge.StatusWrongAnswer, Stderr: "off by one"},
	}}
	svc := NewProblemService(&memProblemRepo{}, jc, nil)

	_, err := svc.CreateProblem(context.Background(), "admin-1", validProblemRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)

	// The proof ran the solution against the visible cases only.
	require.Len(t, jc.submitted, 1)
	require.Len(t, jc.submitted[0], 1)
	assert.Equal(t, "1 2", jc.submitted[0][0].Stdin)
	assert.Equal(t, 54, jc.submitted[0][0].LanguageID)
}

func TestCreateProblemRejectsWhenJudgeDown(t *testing.T) {
	jc := &fakeJudge{submitErr: common.ErrJudgeUnavailable}
	svc := NewProblemService(&memProblemRepo{}, jc, nil)

	_, err := svc.CreateProblem(context.Background(), "admin-1", validProblemRequest())
	assert.ErrorIs(t, err, common.ErrJudgeUnavailable)
}

func TestValidateProblemRequest(t *testing.T) {
	svc := NewProblemService(&memProblemRepo{}, &fakeJudge{}, nil)

	tests := []struct {
		name   string
		mutate func(*ProblemRequest)
	}{
		{"missing title", func(r *ProblemRequest) { r.Title = "" }},
		{"unknown difficulty", func(r *ProblemRequest) { r.Difficulty = "impossible" }},
		{"no visible cases", func(r *ProblemRequest) { r.VisibleTestCases = nil }},
		{"no hidden cases", func(r *ProblemRequest) { r.HiddenTestCases = nil }},
		{"no reference solution", func(r *ProblemRequest) { r.ReferenceSolution = nil }},
		{"unsupported snippet language", func(r *ProblemRequest) {
			r.ReferenceSolution = []CodeSnippetInput{{Language: "cobol", Code: "x"}}
		}},
		{"empty snippet code", func(r *ProblemRequest) {
			r.StartCode = []CodeSnippetInput{{Language: "java", Code: ""}}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validProblemRequest()
			tc.mutate(&req)
			_, _, err := svc.validateProblemRequest(&req)
			assert.ErrorIs(t, err, common.ErrBadRequest)
		})
	}
}

func TestValidateProblemRequestNormalizesCppAlias(t *testing.T) {
	svc := NewProblemService(&memProblemRepo{}, &fakeJudge{}, nil)

	req := validProblemRequest()
	_, refSolutions, err := svc.validateProblemRequest(&req)
	require.NoError(t, err)
	require.Len(t, refSolutions, 1)
	assert.Equal(t, model.LangCPP, refSolutions[0].Language)
}

func TestGetProblemDetailsRoleGating(t *testing.T) {
	repo := testProblemRepo()
	svc := NewProblemService(repo, &fakeJudge{}, nil)

	asUser, err := svc.GetProblemDetails(context.Background(), "prob-1", model.RoleUser)
	require.NoError(t, err)
	assert.Len(t, asUser.VisibleTestCases, 2)
	assert.Empty(t, asUser.HiddenTestCases)
	assert.Empty(t, asUser.ReferenceSolution)

	asAdmin, err := svc.GetProblemDetails(context.Background(), "prob-1", model.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, asAdmin.HiddenTestCases, 3)
}
