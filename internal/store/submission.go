package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicateSubmission is returned when the child already has a
// submission for the homework.
var ErrDuplicateSubmission = errors.New("submission already exists for this homework and child")

const submissionsTable = "submissions"

// insertColumns leaves out sequence, which SQLite assigns on insert.
var insertColumns = []string{
	"id", "homework_id", "child_id", "score", "percentage",
	"total_questions", "answers_data", "submission_type", "submitted_at",
}

var submissionColumns = append([]string{"sequence"}, insertColumns...)

// Submission is a stored homework result.
type Submission struct {
	ID             string
	Sequence       int64 // arrival order
	HomeworkID     string
	ChildID        string
	Score          int
	Percentage     int
	TotalQuestions int
	AnswersData    string // JSON object keyed by activity id
	SubmissionType string
	SubmittedAt    time.Time
}

// SubmissionRepo manages stored submissions.
type SubmissionRepo interface {
	// Create stores sub, filling in ID, Sequence and SubmittedAt. Returns
	// ErrDuplicateSubmission if the pair already submitted.
	Create(ctx context.Context, sub *Submission) error

	// ListByHomework returns the homework's submissions in arrival order.
	ListByHomework(ctx context.Context, homeworkID string) ([]Submission, error)

	// FindByChild returns the child's submission for the homework, or nil.
	FindByChild(ctx context.Context, homeworkID, childID string) (*Submission, error)
}

type submissionRepo struct {
	db *sql.DB
}

func (r *submissionRepo) Create(ctx context.Context, sub *Submission) error {
	sub.ID = uuid.NewString()
	sub.SubmittedAt = time.Now().UTC().Truncate(time.Second)
	if sub.AnswersData == "" {
		sub.AnswersData = "{}"
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(submissionsTable).
		Columns(insertColumns...).
		Values(sub.ID, sub.HomeworkID, sub.ChildID, sub.Score, sub.Percentage,
			sub.TotalQuestions, sub.AnswersData, sub.SubmissionType, sub.SubmittedAt).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSubmission
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	if sub.Sequence, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("read submission sequence: %w", err)
	}
	return nil
}

func (r *submissionRepo) ListByHomework(ctx context.Context, homeworkID string) ([]Submission, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(submissionColumns...).
		From(b.Table(submissionsTable)).
		Where(entsql.EQ("homework_id", homeworkID)).
		OrderBy("sequence").
		Query()
	return r.query(ctx, query, args)
}

func (r *submissionRepo) FindByChild(ctx context.Context, homeworkID, childID string) (*Submission, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(submissionColumns...).
		From(b.Table(submissionsTable)).
		Where(entsql.And(
			entsql.EQ("homework_id", homeworkID),
			entsql.EQ("child_id", childID),
		)).
		Limit(1).
		Query()

	subs, err := r.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}
	return &subs[0], nil
}

func (r *submissionRepo) query(ctx context.Context, query string, args []any) ([]Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.Sequence, &s.ID, &s.HomeworkID, &s.ChildID, &s.Score, &s.Percentage,
			&s.TotalQuestions, &s.AnswersData, &s.SubmissionType, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
