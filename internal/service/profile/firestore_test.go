package profile

import (
	"context"
	"testing"

	"cloud.google.com/go/firestore"

	"github.com/janisto/devconnector-api/internal/testutil"
)

func newFirestoreFixture(t *testing.T) fixture {
	t.Helper()
	testutil.SkipIfFirestoreUnavailable(t)
	testutil.SetupEmulator(t)
	testutil.ClearFirestore(t)

	ctx := context.Background()
	client, err := firestore.NewClient(ctx, testutil.ProjectID)
	if err != nil {
		t.Fatalf("firestore client: %v", err)
	}
	t.Cleanup(func() {
		testutil.ClearFirestore(t)
		_ = client.Close()
	})

	s := NewFirestoreStore(client, WithIDGenerator(sequentialIDs()), WithClock(fixedClock()))
	return fixture{
		svc: s,
		putUser: func(t *testing.T, u User) {
			if err := s.PutUser(ctx, u); err != nil {
				t.Fatal(err)
			}
		},
		putPost: func(t *testing.T, p Post) {
			if err := s.PutPost(ctx, p); err != nil {
				t.Fatal(err)
			}
		},
		hasUser: func(t *testing.T, id string) bool {
			snap, err := client.Collection(usersCollection).Doc(id).Get(ctx)
			if err != nil && snap == nil {
				t.Fatal(err)
			}
			return snap.Exists()
		},
		posts: func(t *testing.T, author string) int {
			docs, err := client.Collection(postsCollection).Where("user", "==", author).Documents(ctx).GetAll()
			if err != nil {
				t.Fatal(err)
			}
			return len(docs)
		},
	}
}

func TestFirestoreStore(t *testing.T) {
	runServiceSuite(t, newFirestoreFixture)
}

func TestFirestoreDocumentShape(t *testing.T) {
	f := newFirestoreFixture(t)
	s := f.svc.(*FirestoreStore)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, "shape", Fields{Status: Some("Dev"), Skills: Some("go"), GitHubUsername: Some("octocat")}); err != nil {
		t.Fatal(err)
	}
	snap, err := s.profileRef("shape").Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	data := snap.Data()
	if data["user"] != "shape" || data["githubusername"] != "octocat" {
		t.Fatalf("unexpected document %v", data)
	}
	if _, ok := data["company"]; ok {
		t.Fatal("absent field should not be stored")
	}
}
