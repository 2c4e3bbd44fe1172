package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fixture lets one suite run against every Service implementation.
type fixture struct {
	svc     Service
	putUser func(t *testing.T, u User)
	putPost func(t *testing.T, p Post)
	hasUser func(t *testing.T, id string) bool
	posts   func(t *testing.T, author string) int
}

func sequentialIDs() IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("entry-%d", n)
	}
}

func fixedClock() func() time.Time {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func exp(title string) ExperienceInput {
	return ExperienceInput{Title: title, Company: "Acme", From: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func edu(school string) EducationInput {
	return EducationInput{School: school, Degree: "BSc", FieldOfStudy: "CS", From: time.Date(2015, 9, 1, 0, 0, 0, 0, time.UTC)}
}

func baseFields() Fields {
	return Fields{Status: Some("Developer"), Skills: Some("go, sql")}
}

func runServiceSuite(t *testing.T, newFixture func(t *testing.T) fixture) {
	ctx := context.Background()

	t.Run("upsert creates once then updates in place", func(t *testing.T) {
		f := newFixture(t)
		f.putUser(t, User{ID: "owner-1", Name: "Ada", Avatar: "//gravatar/ada"})

		created, err := f.svc.Upsert(ctx, "owner-1", Fields{
			Status:  Some("Developer"),
			Skills:  Some("a, b ,c"),
			Company: Some("Acme"),
			Twitter: Some("https://twitter.com/ada"),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.OwnerID != "owner-1" || created.OwnerName != "Ada" || created.OwnerAvatar != "//gravatar/ada" {
			t.Fatalf("owner not joined: %+v", created)
		}
		if fmt.Sprint(created.Skills) != "[a b c]" {
			t.Fatalf("skills not trimmed: %q", created.Skills)
		}
		if created.Date.IsZero() {
			t.Fatal("creation date not set")
		}

		updated, err := f.svc.Upsert(ctx, "owner-1", Fields{Status: Some("Senior"), Skills: Some("go")})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Company != "Acme" {
			t.Fatalf("absent field cleared: %q", updated.Company)
		}
		if updated.Status != "Senior" || fmt.Sprint(updated.Skills) != "[go]" {
			t.Fatalf("fields not updated: %+v", updated)
		}
		if updated.Social.Twitter != nil {
			t.Fatal("social should be replaced wholesale")
		}
		if !updated.Date.Equal(created.Date) {
			t.Fatal("creation date changed on update")
		}

		all, err := f.svc.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 1 {
			t.Fatalf("expected one profile per owner, got %d", len(all))
		}
	})

	t.Run("get by owner not found", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.GetByOwner(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("get by owner id distinguishes malformed ids", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.Upsert(ctx, "owner-2", baseFields()); err != nil {
			t.Fatal(err)
		}
		p, err := f.svc.GetByOwnerID(ctx, "owner-2")
		if err != nil || p.OwnerID != "owner-2" {
			t.Fatalf("lookup failed: %v %v", p, err)
		}
		if _, err := f.svc.GetByOwnerID(ctx, "missing"); !errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidID) {
			t.Fatalf("expected plain ErrNotFound, got %v", err)
		}
		for _, bad := range []string{"a/b", "__x__", ".."} {
			_, err := f.svc.GetByOwnerID(ctx, bad)
			if !errors.Is(err, ErrInvalidID) || !errors.Is(err, ErrNotFound) {
				t.Fatalf("%q: expected ErrInvalidID, got %v", bad, err)
			}
		}
	})

	t.Run("list joins owners", func(t *testing.T) {
		f := newFixture(t)
		f.putUser(t, User{ID: "u-a", Name: "A"})
		f.putUser(t, User{ID: "u-b", Name: "B"})
		for _, id := range []string{"u-a", "u-b", "u-c"} {
			if _, err := f.svc.Upsert(ctx, id, baseFields()); err != nil {
				t.Fatal(err)
			}
		}
		all, err := f.svc.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		names := map[string]string{}
		for _, p := range all {
			names[p.OwnerID] = p.OwnerName
		}
		if len(all) != 3 || names["u-a"] != "A" || names["u-b"] != "B" || names["u-c"] != "" {
			t.Fatalf("unexpected list %v", names)
		}
	})

	t.Run("experience inserts at front and caps at two", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.AddExperience(ctx, "owner-3", exp("x")); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound without a profile, got %v", err)
		}
		if _, err := f.svc.Upsert(ctx, "owner-3", baseFields()); err != nil {
			t.Fatal(err)
		}
		if _, err := f.svc.AddExperience(ctx, "owner-3", exp("old")); err != nil {
			t.Fatal(err)
		}
		p, err := f.svc.AddExperience(ctx, "owner-3", exp("new"))
		if err != nil {
			t.Fatal(err)
		}
		if len(p.Experience) != 2 || p.Experience[0].Title != "new" || p.Experience[1].Title != "old" {
			t.Fatalf("unexpected order %+v", p.Experience)
		}
		if p.Experience[0].ID == "" || p.Experience[0].ID == p.Experience[1].ID {
			t.Fatal("entries need distinct generated ids")
		}

		if _, err := f.svc.AddExperience(ctx, "owner-3", exp("third")); !errors.Is(err, ErrMaxEntries) {
			t.Fatalf("expected ErrMaxEntries, got %v", err)
		}
		stored, err := f.svc.GetByOwner(ctx, "owner-3")
		if err != nil {
			t.Fatal(err)
		}
		if len(stored.Experience) != 2 || stored.Experience[0].Title != "new" {
			t.Fatalf("rejected add mutated the profile: %+v", stored.Experience)
		}
	})

	t.Run("remove experience by id", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.Upsert(ctx, "owner-4", baseFields()); err != nil {
			t.Fatal(err)
		}
		_, _ = f.svc.AddExperience(ctx, "owner-4", exp("first"))
		p, err := f.svc.AddExperience(ctx, "owner-4", exp("second"))
		if err != nil {
			t.Fatal(err)
		}
		keep, drop := p.Experience[1], p.Experience[0]

		if _, err := f.svc.RemoveExperience(ctx, "owner-4", "no-such-id"); !errors.Is(err, ErrEntryNotFound) {
			t.Fatalf("expected ErrEntryNotFound, got %v", err)
		}
		p, err = f.svc.RemoveExperience(ctx, "owner-4", drop.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(p.Experience) != 1 || p.Experience[0].ID != keep.ID {
			t.Fatalf("unexpected experience after removal %+v", p.Experience)
		}
		if _, err := f.svc.RemoveExperience(ctx, "nobody", keep.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("education add and remove", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.Upsert(ctx, "owner-5", baseFields()); err != nil {
			t.Fatal(err)
		}
		_, _ = f.svc.AddEducation(ctx, "owner-5", edu("MIT"))
		p, err := f.svc.AddEducation(ctx, "owner-5", edu("Stanford"))
		if err != nil {
			t.Fatal(err)
		}
		if p.Education[0].School != "Stanford" || p.Education[1].FieldOfStudy != "CS" {
			t.Fatalf("unexpected education %+v", p.Education)
		}
		if _, err := f.svc.AddEducation(ctx, "owner-5", edu("Oxford")); !errors.Is(err, ErrMaxEntries) {
			t.Fatalf("expected ErrMaxEntries, got %v", err)
		}
		p, err = f.svc.RemoveEducation(ctx, "owner-5", p.Education[1].ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(p.Education) != 1 || p.Education[0].School != "Stanford" {
			t.Fatalf("unexpected education after removal %+v", p.Education)
		}
	})

	t.Run("delete cascade removes posts profile and user", func(t *testing.T) {
		f := newFixture(t)
		f.putUser(t, User{ID: "owner-6", Name: "Grace"})
		f.putUser(t, User{ID: "other", Name: "Linus"})
		f.putPost(t, Post{ID: "p1", Author: "owner-6", Text: "hi"})
		f.putPost(t, Post{ID: "p2", Author: "owner-6", Text: "again"})
		f.putPost(t, Post{ID: "p3", Author: "other", Text: "mine"})
		if _, err := f.svc.Upsert(ctx, "owner-6", baseFields()); err != nil {
			t.Fatal(err)
		}

		if err := f.svc.DeleteCascade(ctx, "owner-6"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := f.svc.GetByOwner(ctx, "owner-6"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if f.hasUser(t, "owner-6") {
			t.Fatal("user record survived")
		}
		if n := f.posts(t, "owner-6"); n != 0 {
			t.Fatalf("expected no posts left, got %d", n)
		}
		if !f.hasUser(t, "other") || f.posts(t, "other") != 1 {
			t.Fatal("cascade touched another owner")
		}
		if err := f.svc.DeleteCascade(ctx, "owner-6"); err != nil {
			t.Fatalf("second delete should be a no-op, got %v", err)
		}
	})
}
