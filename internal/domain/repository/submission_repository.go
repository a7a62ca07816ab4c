package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"algoforge/internal/common"
	"algoforge/internal/domain/model"
)

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error)
	// FinalizeSubmission writes the terminal fields of a pending submission.
	// A record that already reached a terminal state is left untouched.
	FinalizeSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	GetSubmissionsForUserProblem(ctx context.Context, userID, problemID string) ([]model.Submission, error)

	// Solved-set: a problem id is recorded at most once per user.
	MarkProblemSolved(ctx context.Context, tx *sql.Tx, userID, problemID string) error
	IsProblemSolved(ctx context.Context, userID, problemID string) (bool, error)
	ListSolvedProblems(ctx context.Context, userID string) ([]model.ProblemSummary, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, user_id, problem_id, code, language, status, test_cases_passed, test_cases_total, runtime, memory, error_message)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, sub.ID, sub.UserID, sub.ProblemID, sub.Code, sub.Language, sub.Status,
			sub.TestCasesPassed, sub.TestCasesTotal, sub.Runtime, sub.Memory, sub.ErrorMessage)
	} else {
		_, err = r.db.ExecContext(ctx, query, sub.ID, sub.UserID, sub.ProblemID, sub.Code, sub.Language, sub.Status,
			sub.TestCasesPassed, sub.TestCasesTotal, sub.Runtime, sub.Memory, sub.ErrorMessage)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `SELECT id, user_id, problem_id, code, language, status, test_cases_passed, test_cases_total, runtime, memory, error_message, created_at
	          FROM submissions WHERE id = $1`

	sub := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID, &sub.UserID, &sub.ProblemID, &sub.Code, &sub.Language, &sub.Status,
		&sub.TestCasesPassed, &sub.TestCasesTotal, &sub.Runtime, &sub.Memory, &sub.ErrorMessage, &sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionByID: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepository) FinalizeSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	// The status guard keeps the pending -> terminal transition one-way.
	query := `UPDATE submissions SET
	            status = $1, test_cases_passed = $2, runtime = $3, memory = $4, error_message = $5
	          WHERE id = $6 AND status = 'pending'`

	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, sub.Status, sub.TestCasesPassed, sub.Runtime, sub.Memory, sub.ErrorMessage, sub.ID)
	} else {
		res, err = r.db.ExecContext(ctx, query, sub.Status, sub.TestCasesPassed, sub.Runtime, sub.Memory, sub.ErrorMessage, sub.ID)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.FinalizeSubmission: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("submission %s is not pending: %w", sub.ID, common.ErrConflict)
	}
	return nil
}

func (r *pgSubmissionRepository) GetSubmissionsForUserProblem(ctx context.Context, userID, problemID string) ([]model.Submission, error) {
	query := `SELECT id, user_id, problem_id, code, language, status, test_cases_passed, test_cases_total, runtime, memory, error_message, created_at
	          FROM submissions WHERE user_id = $1 AND problem_id = $2 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionsForUserProblem: %w", err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var sub model.Submission
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.ProblemID, &sub.Code, &sub.Language, &sub.Status,
			&sub.TestCasesPassed, &sub.TestCasesTotal, &sub.Runtime, &sub.Memory, &sub.ErrorMessage, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionsForUserProblem scan: %w", err)
		}
		subs = append(subs, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionsForUserProblem rows.Err: %w", err)
	}
	return subs, nil
}

func (r *pgSubmissionRepository) MarkProblemSolved(ctx context.Context, tx *sql.Tx, userID, problemID string) error {
	// ON CONFLICT keeps concurrent accepted submissions idempotent.
	query := `INSERT INTO user_solved_problems (user_id, problem_id)
	          VALUES ($1, $2) ON CONFLICT (user_id, problem_id) DO NOTHING`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, userID, problemID)
	} else {
		_, err = r.db.ExecContext(ctx, query, userID, problemID)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.MarkProblemSolved: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) IsProblemSolved(ctx context.Context, userID, problemID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_solved_problems WHERE user_id = $1 AND problem_id = $2)`
	var solved bool
	if err := r.db.QueryRowContext(ctx, query, userID, problemID).Scan(&solved); err != nil {
		return false, fmt.Errorf("pgSubmissionRepository.IsProblemSolved: %w", err)
	}
	return solved, nil
}

func (r *pgSubmissionRepository) ListSolvedProblems(ctx context.Context, userID string) ([]model.ProblemSummary, error) {
	query := `SELECT p.id, p.title, p.difficulty, p.tag
	          FROM user_solved_problems usp
	          JOIN problems p ON usp.problem_id = p.id
	          WHERE usp.user_id = $1
	          ORDER BY usp.solved_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListSolvedProblems: %w", err)
	}
	defer rows.Close()

	summaries := []model.ProblemSummary{}
	for rows.Next() {
		var s model.ProblemSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Difficulty, &s.Tag); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListSolvedProblems scan: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListSolvedProblems rows.Err: %w", err)
	}
	return summaries, nil
}
