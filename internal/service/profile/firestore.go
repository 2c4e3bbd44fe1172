package profile

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/cockroachdb/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	profilesCollection = "profiles"
	usersCollection    = "users"
	postsCollection    = "posts"
)

type firestoreSocial struct {
	YouTube   *string `firestore:"youtube,omitempty"`
	Facebook  *string `firestore:"facebook,omitempty"`
	Twitter   *string `firestore:"twitter,omitempty"`
	Instagram *string `firestore:"instagram,omitempty"`
	LinkedIn  *string `firestore:"linkedin,omitempty"`
}

type firestoreExperience struct {
	ID          string     `firestore:"id"`
	Title       string     `firestore:"title"`
	Company     string     `firestore:"company"`
	Location    string     `firestore:"location,omitempty"`
	From        time.Time  `firestore:"from"`
	To          *time.Time `firestore:"to,omitempty"`
	Current     bool       `firestore:"current"`
	Description string     `firestore:"description,omitempty"`
}

type firestoreEducation struct {
	ID           string     `firestore:"id"`
	School       string     `firestore:"school"`
	Degree       string     `firestore:"degree"`
	FieldOfStudy string     `firestore:"fieldofstudy"`
	From         time.Time  `firestore:"from"`
	To           *time.Time `firestore:"to,omitempty"`
	Current      bool       `firestore:"current"`
	Description  string     `firestore:"description,omitempty"`
}

// firestoreProfile maps to documents in the profiles collection. The document
// id is the owner id.
type firestoreProfile struct {
	Owner          string                `firestore:"user"`
	Company        string                `firestore:"company,omitempty"`
	Website        string                `firestore:"website,omitempty"`
	Location       string                `firestore:"location,omitempty"`
	Bio            string                `firestore:"bio,omitempty"`
	Status         string                `firestore:"status,omitempty"`
	GitHubUsername string                `firestore:"githubusername,omitempty"`
	Skills         []string              `firestore:"skills"`
	Social         firestoreSocial       `firestore:"social"`
	Experience     []firestoreExperience `firestore:"experience"`
	Education      []firestoreEducation  `firestore:"education"`
	Date           time.Time             `firestore:"date"`
	CreatedAt      time.Time             `firestore:"created_at"`
	UpdatedAt      time.Time             `firestore:"updated_at"`
}

type firestoreUser struct {
	Name   string    `firestore:"name"`
	Email  string    `firestore:"email"`
	Avatar string    `firestore:"avatar,omitempty"`
	Date   time.Time `firestore:"date"`
}

func toDoc(p *Profile) firestoreProfile {
	fp := firestoreProfile{
		Owner:          p.OwnerID,
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Bio:            p.Bio,
		Status:         p.Status,
		GitHubUsername: p.GitHubUsername,
		Skills:         p.Skills,
		Social:         firestoreSocial(p.Social),
		Experience:     make([]firestoreExperience, len(p.Experience)),
		Education:      make([]firestoreEducation, len(p.Education)),
		Date:           p.Date,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	for i, e := range p.Experience {
		fp.Experience[i] = firestoreExperience(e)
	}
	for i, e := range p.Education {
		fp.Education[i] = firestoreEducation(e)
	}
	return fp
}

func fromDoc(id string, fp firestoreProfile) *Profile {
	p := &Profile{
		OwnerID:        id,
		Company:        fp.Company,
		Website:        fp.Website,
		Location:       fp.Location,
		Bio:            fp.Bio,
		Status:         fp.Status,
		GitHubUsername: fp.GitHubUsername,
		Skills:         fp.Skills,
		Social:         Social(fp.Social),
		Experience:     make([]Experience, len(fp.Experience)),
		Education:      make([]Education, len(fp.Education)),
		Date:           fp.Date,
		CreatedAt:      fp.CreatedAt,
		UpdatedAt:      fp.UpdatedAt,
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	for i, e := range fp.Experience {
		p.Experience[i] = Experience(e)
	}
	for i, e := range fp.Education {
		p.Education[i] = Education(e)
	}
	return p
}

// FirestoreStore implements Service on Firestore. Profile mutations run in
// transactions, so concurrent writers for one owner are serialized by retries.
type FirestoreStore struct {
	client *firestore.Client
	opts   options
}

// NewFirestoreStore creates a Firestore-backed store.
func NewFirestoreStore(client *firestore.Client, opts ...Option) *FirestoreStore {
	return &FirestoreStore{client: client, opts: newOptions(opts)}
}

func (s *FirestoreStore) profileRef(ownerID string) *firestore.DocumentRef {
	return s.client.Collection(profilesCollection).Doc(ownerID)
}

func (s *FirestoreStore) userRef(ownerID string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(ownerID)
}

// PutUser writes an account record. The API never creates users itself; this
// serves seeding and tests.
func (s *FirestoreStore) PutUser(ctx context.Context, u User) error {
	_, err := s.userRef(u.ID).Set(ctx, firestoreUser{Name: u.Name, Email: u.Email, Avatar: u.Avatar, Date: u.Date})
	return errors.Wrap(err, "put user")
}

// PutPost writes a post document with the given author.
func (s *FirestoreStore) PutPost(ctx context.Context, p Post) error {
	_, err := s.client.Collection(postsCollection).Doc(p.ID).Set(ctx, map[string]any{
		"user": p.Author,
		"text": p.Text,
	})
	return errors.Wrap(err, "put post")
}

// join fills owner name and avatar from the users collection. Missing users
// leave the fields empty.
func (s *FirestoreStore) join(ctx context.Context, profiles ...*Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	refs := make([]*firestore.DocumentRef, len(profiles))
	for i, p := range profiles {
		refs[i] = s.userRef(p.OwnerID)
	}
	snaps, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return errors.Wrap(err, "load owners")
	}
	for i, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		var u firestoreUser
		if err := snap.DataTo(&u); err != nil {
			return errors.Wrap(err, "decode owner")
		}
		profiles[i].OwnerName = u.Name
		profiles[i].OwnerAvatar = u.Avatar
	}
	return nil
}

func (s *FirestoreStore) GetByOwner(ctx context.Context, ownerID string) (*Profile, error) {
	doc, err := s.profileRef(ownerID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get profile")
	}
	var fp firestoreProfile
	if err := doc.DataTo(&fp); err != nil {
		return nil, errors.Wrap(err, "decode profile")
	}
	p := fromDoc(doc.Ref.ID, fp)
	if err := s.join(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]Profile, error) {
	iter := s.client.Collection(profilesCollection).Documents(ctx)
	defer iter.Stop()

	var ptrs []*Profile
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "list profiles")
		}
		var fp firestoreProfile
		if err := doc.DataTo(&fp); err != nil {
			return nil, errors.Wrap(err, "decode profile")
		}
		ptrs = append(ptrs, fromDoc(doc.Ref.ID, fp))
	}
	if err := s.join(ctx, ptrs...); err != nil {
		return nil, err
	}
	out := make([]Profile, len(ptrs))
	for i, p := range ptrs {
		out[i] = *p
	}
	return out, nil
}

func (s *FirestoreStore) GetByOwnerID(ctx context.Context, rawID string) (*Profile, error) {
	return lookupByOwnerID(ctx, rawID, s.GetByOwner)
}

// transact loads the owner's profile inside a transaction, lets fn change it,
// and writes it back. With create set, a missing profile starts empty instead of
// failing with ErrNotFound.
func (s *FirestoreStore) transact(ctx context.Context, ownerID string, create bool, fn func(*Profile) error) (*Profile, error) {
	ref := s.profileRef(ownerID)
	var result *Profile

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := s.opts.now().UTC()
		var p *Profile
		doc, err := tx.Get(ref)
		switch {
		case err == nil:
			var fp firestoreProfile
			if err := doc.DataTo(&fp); err != nil {
				return errors.Wrap(err, "decode profile")
			}
			p = fromDoc(ownerID, fp)
		case status.Code(err) == codes.NotFound && create:
			p = newProfile(ownerID, now)
		case status.Code(err) == codes.NotFound:
			return ErrNotFound
		default:
			return errors.Wrap(err, "get profile")
		}

		if err := fn(p); err != nil {
			return err
		}
		p.UpdatedAt = now
		if err := tx.Set(ref, toDoc(p)); err != nil {
			return errors.Wrap(err, "write profile")
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.join(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *FirestoreStore) Upsert(ctx context.Context, ownerID string, fields Fields) (*Profile, error) {
	p, err := s.transact(ctx, ownerID, true, func(p *Profile) error {
		applyFields(p, fields)
		return nil
	})
	audit(ctx, "upsert", ownerID, ownerID, err)
	return p, err
}

func (s *FirestoreStore) AddExperience(ctx context.Context, ownerID string, in ExperienceInput) (*Profile, error) {
	id := s.opts.newID()
	p, err := s.transact(ctx, ownerID, false, func(p *Profile) error {
		return addExperience(p, id, in)
	})
	audit(ctx, "add_experience", ownerID, ownerID, err)
	return p, err
}

func (s *FirestoreStore) RemoveExperience(ctx context.Context, ownerID, expID string) (*Profile, error) {
	p, err := s.transact(ctx, ownerID, false, func(p *Profile) error {
		return removeExperience(p, expID)
	})
	audit(ctx, "remove_experience", ownerID, ownerID, err)
	return p, err
}

func (s *FirestoreStore) AddEducation(ctx context.Context, ownerID string, in EducationInput) (*Profile, error) {
	id := s.opts.newID()
	p, err := s.transact(ctx, ownerID, false, func(p *Profile) error {
		return addEducation(p, id, in)
	})
	audit(ctx, "add_education", ownerID, ownerID, err)
	return p, err
}

func (s *FirestoreStore) RemoveEducation(ctx context.Context, ownerID, eduID string) (*Profile, error) {
	p, err := s.transact(ctx, ownerID, false, func(p *Profile) error {
		return removeEducation(p, eduID)
	})
	audit(ctx, "remove_education", ownerID, ownerID, err)
	return p, err
}

// DeleteCascade removes the owner's posts, profile, and user document in that
// order. A failure stops the cascade and is reported as a *StepError; earlier
// steps are not rolled back.
func (s *FirestoreStore) DeleteCascade(ctx context.Context, ownerID string) error {
	err := s.deleteCascade(ctx, ownerID)
	audit(ctx, "delete_cascade", ownerID, ownerID, err)
	return err
}

func (s *FirestoreStore) deleteCascade(ctx context.Context, ownerID string) error {
	if err := s.deletePosts(ctx, ownerID); err != nil {
		return &StepError{Step: StepDeletePosts, Err: err}
	}
	if _, err := s.profileRef(ownerID).Delete(ctx); err != nil {
		return &StepError{Step: StepDeleteProfile, Err: err}
	}
	if _, err := s.userRef(ownerID).Delete(ctx); err != nil {
		return &StepError{Step: StepDeleteUser, Err: err}
	}
	return nil
}

func (s *FirestoreStore) deletePosts(ctx context.Context, author string) error {
	refs, err := s.client.Collection(postsCollection).Where("user", "==", author).Documents(ctx).GetAll()
	if err != nil {
		return errors.Wrap(err, "query posts")
	}
	if len(refs) == 0 {
		return nil
	}
	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, doc := range refs {
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			bw.End()
			return errors.Wrap(err, "enqueue post delete")
		}
		jobs = append(jobs, job)
	}
	bw.End()
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return errors.Wrap(err, "delete post")
		}
	}
	return nil
}

var _ Service = (*FirestoreStore)(nil)
