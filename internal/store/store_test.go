package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite:///" + filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestDialectorFor(t *testing.T) {
	cases := []struct {
		dsn     string
		sqlite  bool
		wantErr bool
	}{
		{dsn: "sqlite:///bot.db", sqlite: true},
		{dsn: "sqlite://data/bot.db", sqlite: true},
		{dsn: "postgres://u:p@localhost:5432/bot", sqlite: false},
		{dsn: "postgresql://localhost/bot", sqlite: false},
		{dsn: "sqlite://", wantErr: true},
		{dsn: "mysql://localhost/bot", wantErr: true},
	}
	for _, c := range cases {
		_, isSQLite, err := dialectorFor(c.dsn)
		if c.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", c.dsn)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", c.dsn, err)
		}
		if isSQLite != c.sqlite {
			t.Fatalf("%s: sqlite=%v, want %v", c.dsn, isSQLite, c.sqlite)
		}
	}
}

func TestSeed_CreatesDefaultsOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Seed(ctx, SeedOptions{RequestsChatID: -100}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// second run must not duplicate anything
	if err := s.Seed(ctx, SeedOptions{GreetingText: "other", RequestsChatID: -200}); err != nil {
		t.Fatalf("seed again: %v", err)
	}

	err := s.Do(ctx, func(tx Tx) error {
		g, err := tx.Greeting()
		if err != nil {
			return err
		}
		if g.Text != DefaultGreeting {
			t.Fatalf("greeting text: %q", g.Text)
		}
		ns, err := tx.NotificationSettings()
		if err != nil {
			return err
		}
		if id, ok := ns.Target(); !ok || id != -100 {
			t.Fatalf("notification target: %v %v", id, ok)
		}
		buttons, err := tx.Buttons()
		if err != nil {
			return err
		}
		if len(buttons) != len(DefaultButtons()) {
			t.Fatalf("want %d buttons, got %d", len(DefaultButtons()), len(buttons))
		}
		form := buttons[1]
		if form.ResponseKind != KindForm || len(form.FormQuestions) != 3 {
			t.Fatalf("form button not seeded: %+v", form)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
}

func TestSeed_FreshSQLite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Seed(ctx, SeedOptions{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_ = s.Do(ctx, func(tx Tx) error {
		active, err := tx.ActiveButtons()
		if err != nil {
			t.Fatalf("active: %v", err)
		}
		if len(active) != 4 {
			t.Fatalf("want 4 active buttons, got %d", len(active))
		}
		for i, b := range active {
			if b.Order != i+1 {
				t.Fatalf("button %q has order %d", b.Label, b.Order)
			}
			if b.ResponseKind == KindForm {
				continue
			}
			if len(b.FormQuestions) != 0 {
				t.Fatalf("button %q has questions %v", b.Label, b.FormQuestions)
			}
		}
		return nil
	})
}

func TestCreateButton_WithoutQuestions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	var id uint
	err := s.Do(ctx, func(tx Tx) error {
		b := MenuButton{Label: "Plain", Order: 1, Active: true, ResponseKind: KindText}
		if err := tx.CreateButton(&b); err != nil {
			return err
		}
		id = b.ID
		return nil
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_ = s.Do(ctx, func(tx Tx) error {
		b, err := tx.Button(id)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(b.FormQuestions) != 0 {
			t.Fatalf("unexpected questions: %v", b.FormQuestions)
		}
		return nil
	})
}

func TestDo_RollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Do(ctx, func(tx Tx) error {
		if err := tx.CreateButton(&MenuButton{Label: "X", Order: 1, Active: true, ResponseKind: KindText}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}

	_ = s.Do(ctx, func(tx Tx) error {
		buttons, err := tx.Buttons()
		if err != nil {
			t.Fatalf("buttons: %v", err)
		}
		if len(buttons) != 0 {
			t.Fatalf("rollback did not happen: %+v", buttons)
		}
		return nil
	})
}

func TestButtons_OrderingAndActiveFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Do(ctx, func(tx Tx) error {
		for _, b := range []MenuButton{
			{Label: "C", Order: 3, Active: true, ResponseKind: KindText},
			{Label: "A", Order: 1, Active: true, ResponseKind: KindText},
			{Label: "Hidden", Order: 2, Active: false, ResponseKind: KindText},
		} {
			b := b
			if err := tx.CreateButton(&b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_ = s.Do(ctx, func(tx Tx) error {
		all, _ := tx.Buttons()
		if len(all) != 3 || all[0].Label != "A" || all[1].Label != "Hidden" || all[2].Label != "C" {
			t.Fatalf("unexpected order: %+v", all)
		}
		active, _ := tx.ActiveButtons()
		if len(active) != 2 || active[0].Label != "A" || active[1].Label != "C" {
			t.Fatalf("unexpected active: %+v", active)
		}
		top, ok, err := tx.MaxButtonOrder()
		if err != nil || !ok || top != 3 {
			t.Fatalf("max order: %d %v %v", top, ok, err)
		}
		return nil
	})
}

func TestMaxButtonOrder_Empty(t *testing.T) {
	s := openTestStore(t)
	_ = s.Do(context.Background(), func(tx Tx) error {
		_, ok, err := tx.MaxButtonOrder()
		if err != nil {
			t.Fatalf("max: %v", err)
		}
		if ok {
			t.Fatalf("expected no order on empty table")
		}
		return nil
	})
}

func TestMaxButtonOrder_Gaps(t *testing.T) {
	s := openTestStore(t)
	_ = s.Do(context.Background(), func(tx Tx) error {
		for i, order := range []int{1, 2, 4} {
			b := MenuButton{Label: string(rune('A' + i)), Order: order, Active: order != 4, ResponseKind: KindText}
			if err := tx.CreateButton(&b); err != nil {
				t.Fatalf("create: %v", err)
			}
		}
		top, ok, err := tx.MaxButtonOrder()
		if err != nil || !ok || top != 4 {
			t.Fatalf("max order: %d %v %v", top, ok, err)
		}
		return nil
	})
}

func TestButton_NotFound(t *testing.T) {
	s := openTestStore(t)
	_ = s.Do(context.Background(), func(tx Tx) error {
		if _, err := tx.Button(42); !errors.Is(err, ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
		err := tx.SaveButton(&MenuButton{ID: 42, Label: "ghost", ResponseKind: KindText})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("save of missing button: want ErrNotFound, got %v", err)
		}
		return nil
	})
}

func TestSaveButton_PersistsZeroValues(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	var id uint
	_ = s.Do(ctx, func(tx Tx) error {
		b := MenuButton{Label: "Order", Order: 1, Active: true, ResponseKind: KindForm, FormQuestions: []string{"Q1"}}
		if err := tx.CreateButton(&b); err != nil {
			t.Fatalf("create: %v", err)
		}
		id = b.ID
		b.Active = false
		b.FormQuestions = []string{"Q1", "Q2"}
		if err := tx.SaveButton(&b); err != nil {
			t.Fatalf("save: %v", err)
		}
		return nil
	})
	_ = s.Do(ctx, func(tx Tx) error {
		b, err := tx.Button(id)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if b.Active {
			t.Fatalf("deactivation lost")
		}
		if len(b.FormQuestions) != 2 || b.FormQuestions[1] != "Q2" {
			t.Fatalf("questions not saved: %v", b.FormQuestions)
		}
		return nil
	})
}

func TestSubmissions_CountAndSince(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = s.Do(ctx, func(tx Tx) error {
		old := FormSubmission{UserID: 1, ButtonID: 2, Answers: []string{"a"}, CreatedAt: now.Add(-48 * time.Hour)}
		fresh := FormSubmission{UserID: 2, ButtonID: 2, Answers: []string{"b", "c"}, CreatedAt: now.Add(-time.Hour)}
		if err := tx.CreateSubmission(&old); err != nil {
			t.Fatalf("create old: %v", err)
		}
		if err := tx.CreateSubmission(&fresh); err != nil {
			t.Fatalf("create fresh: %v", err)
		}
		return nil
	})

	_ = s.Do(ctx, func(tx Tx) error {
		n, err := tx.CountSubmissions()
		if err != nil || n != 2 {
			t.Fatalf("count: %d %v", n, err)
		}
		recent, err := tx.SubmissionsSince(now.Add(-24 * time.Hour))
		if err != nil {
			t.Fatalf("since: %v", err)
		}
		if len(recent) != 1 || recent[0].UserID != 2 || len(recent[0].Answers) != 2 {
			t.Fatalf("unexpected recent: %+v", recent)
		}
		return nil
	})
}

func TestGreeting_SaveIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		err := s.Do(ctx, func(tx Tx) error {
			g, err := tx.Greeting()
			if err != nil {
				return err
			}
			g.Text = "Hello"
			return tx.SaveGreeting(&g)
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	_ = s.Do(ctx, func(tx Tx) error {
		g, _ := tx.Greeting()
		if g.Text != "Hello" || g.HasPhoto() {
			t.Fatalf("unexpected greeting: %+v", g)
		}
		return nil
	})
}

func TestParseResponseKind(t *testing.T) {
	for _, k := range ResponseKinds {
		got, err := ParseResponseKind(string(k))
		if err != nil || got != k {
			t.Fatalf("parse %q: %v %v", k, got, err)
		}
	}
	if _, err := ParseResponseKind("video"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestMenuButton_UploadedFileID(t *testing.T) {
	b := MenuButton{ResponseContent: UploadedFilePrefix + "ABC"}
	if id, ok := b.UploadedFileID(); !ok || id != "ABC" {
		t.Fatalf("uploaded id: %q %v", id, ok)
	}
	b.ResponseContent = "static/prices.pdf"
	if _, ok := b.UploadedFileID(); ok {
		t.Fatalf("path treated as uploaded file")
	}
}
