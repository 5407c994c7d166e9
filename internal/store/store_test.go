package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	db := openTestStore(t).db

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestCreateAndFind(t *testing.T) {
	repo := openTestStore(t).Submissions()
	ctx := context.Background()

	got, err := repo.FindByChild(ctx, "hw-1", "child-1")
	if err != nil {
		t.Fatalf("find (empty): %v", err)
	}
	if got != nil {
		t.Fatal("expected nil submission when none exist")
	}

	sub := &Submission{
		HomeworkID:     "hw-1",
		ChildID:        "child-1",
		Score:          2,
		Percentage:     67,
		TotalQuestions: 3,
		AnswersData:    `{"1":5,"2":"Circle"}`,
		SubmissionType: "interactive",
	}
	if err := repo.Create(ctx, sub); err != nil {
		t.Fatalf("create: %v", err)
	}
	if sub.ID == "" || sub.Sequence == 0 || sub.SubmittedAt.IsZero() {
		t.Fatalf("create did not fill generated fields: %+v", sub)
	}

	got, err = repo.FindByChild(ctx, "hw-1", "child-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil {
		t.Fatal("expected submission")
	}
	if got.ID != sub.ID || got.Score != 2 || got.Percentage != 67 || got.TotalQuestions != 3 {
		t.Errorf("got %+v, want %+v", got, sub)
	}
	if got.AnswersData != `{"1":5,"2":"Circle"}` {
		t.Errorf("AnswersData = %q", got.AnswersData)
	}
	if !got.SubmittedAt.Equal(sub.SubmittedAt) {
		t.Errorf("SubmittedAt = %v, want %v", got.SubmittedAt, sub.SubmittedAt)
	}
}

func TestCreate_DefaultsEmptyAnswers(t *testing.T) {
	repo := openTestStore(t).Submissions()
	sub := &Submission{HomeworkID: "hw-1", ChildID: "c"}
	if err := repo.Create(context.Background(), sub); err != nil {
		t.Fatalf("create: %v", err)
	}
	if sub.AnswersData != "{}" {
		t.Errorf("AnswersData = %q, want {}", sub.AnswersData)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo := openTestStore(t).Submissions()
	ctx := context.Background()

	if err := repo.Create(ctx, &Submission{HomeworkID: "hw-1", ChildID: "child-1", Score: 1}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := repo.Create(ctx, &Submission{HomeworkID: "hw-1", ChildID: "child-1", Score: 5})
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("second create err = %v, want ErrDuplicateSubmission", err)
	}

	// Same child on another homework is fine.
	if err := repo.Create(ctx, &Submission{HomeworkID: "hw-2", ChildID: "child-1"}); err != nil {
		t.Fatalf("create other homework: %v", err)
	}

	got, err := repo.FindByChild(ctx, "hw-1", "child-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Score != 1 {
		t.Errorf("Score = %d, want 1 (first submission kept)", got.Score)
	}
}

func TestListByHomework_ArrivalOrder(t *testing.T) {
	repo := openTestStore(t).Submissions()
	ctx := context.Background()

	children := []string{"c", "a", "b"}
	for _, c := range children {
		if err := repo.Create(ctx, &Submission{HomeworkID: "hw-1", ChildID: c}); err != nil {
			t.Fatalf("create %s: %v", c, err)
		}
	}
	if err := repo.Create(ctx, &Submission{HomeworkID: "hw-2", ChildID: "z"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	subs, err := repo.ListByHomework(ctx, "hw-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != len(children) {
		t.Fatalf("len = %d, want %d", len(subs), len(children))
	}
	for i, c := range children {
		if subs[i].ChildID != c {
			t.Errorf("subs[%d].ChildID = %q, want %q", i, subs[i].ChildID, c)
		}
		if i > 0 && subs[i].Sequence <= subs[i-1].Sequence {
			t.Errorf("sequence not increasing at %d", i)
		}
	}

	empty, err := repo.ListByHomework(ctx, "missing")
	if err != nil {
		t.Fatalf("list missing: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("len = %d, want 0", len(empty))
	}
}

func TestCreate_ConcurrentSequences(t *testing.T) {
	repo := openTestStore(t).Submissions()
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := &Submission{HomeworkID: "hw-1", ChildID: fmt.Sprintf("child-%d", i)}
			if err := repo.Create(ctx, sub); err != nil {
				t.Errorf("create: %v", err)
			}
		}()
	}
	wg.Wait()

	subs, err := repo.ListByHomework(ctx, "hw-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != n {
		t.Fatalf("len = %d, want %d", len(subs), n)
	}
	for i := 1; i < len(subs); i++ {
		if subs[i].Sequence <= subs[i-1].Sequence {
			t.Errorf("sequence not increasing at %d: %d after %d", i, subs[i].Sequence, subs[i-1].Sequence)
		}
	}
}
