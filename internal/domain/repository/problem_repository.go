package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"algoforge/internal/common"
	"algoforge/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProblemRepository interface {
	CreateProblem(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	UpdateProblem(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	DeleteProblem(ctx context.Context, id string) error
	FindProblemByID(ctx context.Context, id string) (*model.Problem, error)
	ListProblems(ctx context.Context) ([]model.ProblemSummary, error)

	AddTestCases(ctx context.Context, tx *sql.Tx, problemID string, testCases []model.TestCase) error
	GetTestCases(ctx context.Context, problemID string, hidden bool) ([]model.TestCase, error)
	DeleteTestCases(ctx context.Context, tx *sql.Tx, problemID string) error

	AddCodeSnippets(ctx context.Context, tx *sql.Tx, problemID string, kind model.SnippetKind, snippets []model.CodeSnippet) error
	GetCodeSnippets(ctx context.Context, problemID string, kind model.SnippetKind) ([]model.CodeSnippet, error)
	DeleteCodeSnippets(ctx context.Context, tx *sql.Tx, problemID string) error
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

func (r *pgProblemRepository) CreateProblem(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	query := `INSERT INTO problems (id, title, slug, description, difficulty, tag, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.Difficulty, p.Tag, p.CreatedByID)
	} else {
		_, err = r.db.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.Difficulty, p.Tag, p.CreatedByID)
	}

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("problem with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.CreateProblem: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) UpdateProblem(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	query := `UPDATE problems SET
	            title = $1, slug = $2, description = $3, difficulty = $4, tag = $5,
	            updated_at = CURRENT_TIMESTAMP
	          WHERE id = $6`

	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, p.Title, p.Slug, p.Description, p.Difficulty, p.Tag, p.ID)
	} else {
		res, err = r.db.ExecContext(ctx, query, p.Title, p.Slug, p.Description, p.Difficulty, p.Tag, p.ID)
	}
	if err != nil {
		return fmt.Errorf("pgProblemRepository.UpdateProblem: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProblemRepository) DeleteProblem(ctx context.Context, id string) error {
	// Test cases and snippets are removed by FK cascade.
	res, err := r.db.ExecContext(ctx, `DELETE FROM problems WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.DeleteProblem: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProblemRepository) FindProblemByID(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT id, title, slug, description, difficulty, tag, created_by, created_at, updated_at
	          FROM problems WHERE id = $1`

	problem := &model.Problem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&problem.ID, &problem.Title, &problem.Slug, &problem.Description, &problem.Difficulty,
		&problem.Tag, &problem.CreatedByID, &problem.CreatedAt, &problem.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindProblemByID: %w", err)
	}
	return problem, nil
}

func (r *pgProblemRepository) ListProblems(ctx context.Context) ([]model.ProblemSummary, error) {
	query := `SELECT id, title, difficulty, tag FROM problems ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListProblems: %w", err)
	}
	defer rows.Close()

	summaries := []model.ProblemSummary{}
	for rows.Next() {
		var s model.ProblemSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Difficulty, &s.Tag); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.ListProblems scan: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListProblems rows.Err: %w", err)
	}
	return summaries, nil
}

func (r *pgProblemRepository) AddTestCases(ctx context.Context, tx *sql.Tx, problemID string, testCases []model.TestCase) error {
	if len(testCases) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO test_cases (id, problem_id, input, output, explanation, is_hidden, sort_order)
	                                     VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.AddTestCases prepare: %w", err)
	}
	defer stmt.Close()

	for i, tc := range testCases {
		tc.SortOrder = i + 1
		_, err := stmt.ExecContext(ctx, tc.ID, problemID, tc.Input, tc.Output, tc.Explanation, tc.IsHidden, tc.SortOrder)
		if err != nil {
			return fmt.Errorf("pgProblemRepository.AddTestCases exec for case %s: %w", tc.ID, err)
		}
	}
	return nil
}

func (r *pgProblemRepository) GetTestCases(ctx context.Context, problemID string, hidden bool) ([]model.TestCase, error) {
	query := `SELECT id, problem_id, input, output, explanation, is_hidden, sort_order
	          FROM test_cases WHERE problem_id = $1 AND is_hidden = $2 ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, problemID, hidden)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetTestCases: %w", err)
	}
	defer rows.Close()

	var cases []model.TestCase
	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.ID, &tc.ProblemID, &tc.Input, &tc.Output, &tc.Explanation, &tc.IsHidden, &tc.SortOrder); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.GetTestCases scan: %w", err)
		}
		cases = append(cases, tc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetTestCases rows.Err: %w", err)
	}
	return cases, nil
}

func (r *pgProblemRepository) DeleteTestCases(ctx context.Context, tx *sql.Tx, problemID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM test_cases WHERE problem_id = $1`, problemID); err != nil {
		return fmt.Errorf("pgProblemRepository.DeleteTestCases: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) AddCodeSnippets(ctx context.Context, tx *sql.Tx, problemID string, kind model.SnippetKind, snippets []model.CodeSnippet) error {
	if len(snippets) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO problem_code (problem_id, kind, language, code)
	                                     VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.AddCodeSnippets prepare: %w", err)
	}
	defer stmt.Close()

	for _, sn := range snippets {
		if _, err := stmt.ExecContext(ctx, problemID, kind, sn.Language, sn.Code); err != nil {
			return fmt.Errorf("pgProblemRepository.AddCodeSnippets exec for %s: %w", sn.Language, err)
		}
	}
	return nil
}

func (r *pgProblemRepository) GetCodeSnippets(ctx context.Context, problemID string, kind model.SnippetKind) ([]model.CodeSnippet, error) {
	query := `SELECT language, code FROM problem_code WHERE problem_id = $1 AND kind = $2 ORDER BY language ASC`
	rows, err := r.db.QueryContext(ctx, query, problemID, kind)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetCodeSnippets: %w", err)
	}
	defer rows.Close()

	var snippets []model.CodeSnippet
	for rows.Next() {
		var sn model.CodeSnippet
		if err := rows.Scan(&sn.Language, &sn.Code); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.GetCodeSnippets scan: %w", err)
		}
		snippets = append(snippets, sn)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetCodeSnippets rows.Err: %w", err)
	}
	return snippets, nil
}

func (r *pgProblemRepository) DeleteCodeSnippets(ctx context.Context, tx *sql.Tx, problemID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM problem_code WHERE problem_id = $1`, problemID); err != nil {
		return fmt.Errorf("pgProblemRepository.DeleteCodeSnippets: %w", err)
	}
	return nil
}
