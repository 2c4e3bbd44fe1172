package profile

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps profiles, users, and posts in process memory. It backs
// local development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	opts     options
	profiles map[string]*Profile
	order    []string
	users    map[string]User
	posts    map[string]Post
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		opts:     newOptions(opts),
		profiles: make(map[string]*Profile),
		users:    make(map[string]User),
		posts:    make(map[string]Post),
	}
}

// PutUser creates or replaces an account record.
func (s *MemoryStore) PutUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// PutPost creates or replaces a post.
func (s *MemoryStore) PutPost(p Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.ID] = p
}

// HasUser reports whether the account record exists.
func (s *MemoryStore) HasUser(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok
}

// PostsBy returns the ids of posts written by author.
func (s *MemoryStore) PostsBy(author string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, p := range s.posts {
		if p.Author == author {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// joined returns a deep copy of the stored profile with the owner joined in.
// Callers hold mu.
func (s *MemoryStore) joined(p *Profile) *Profile {
	out := *p
	out.Skills = slices.Clone(p.Skills)
	out.Experience = slices.Clone(p.Experience)
	out.Education = slices.Clone(p.Education)
	out.Social = p.Social.clone()
	if u, ok := s.users[p.OwnerID]; ok {
		out.OwnerName = u.Name
		out.OwnerAvatar = u.Avatar
	}
	return &out
}

func (s *MemoryStore) GetByOwner(_ context.Context, ownerID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.joined(p), nil
}

func (s *MemoryStore) List(_ context.Context) ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.joined(s.profiles[id]))
	}
	return out, nil
}

func (s *MemoryStore) GetByOwnerID(ctx context.Context, rawID string) (*Profile, error) {
	return lookupByOwnerID(ctx, rawID, s.GetByOwner)
}

func (s *MemoryStore) Upsert(ctx context.Context, ownerID string, fields Fields) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.now().UTC()
	p, ok := s.profiles[ownerID]
	if !ok {
		p = newProfile(ownerID, now)
	}
	next := *s.joined(p)
	applyFields(&next, fields)
	next.UpdatedAt = now
	next.OwnerName, next.OwnerAvatar = "", ""

	s.profiles[ownerID] = &next
	if !ok {
		s.order = append(s.order, ownerID)
	}
	audit(ctx, "upsert", ownerID, ownerID, nil)
	return s.joined(&next), nil
}

// mutate applies fn to a copy of the owner's profile and stores it only when fn
// succeeds.
func (s *MemoryStore) mutate(ctx context.Context, action, ownerID string, fn func(*Profile) error) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[ownerID]
	if !ok {
		audit(ctx, action, ownerID, ownerID, ErrNotFound)
		return nil, ErrNotFound
	}
	next := *s.joined(p)
	if err := fn(&next); err != nil {
		audit(ctx, action, ownerID, ownerID, err)
		return nil, err
	}
	next.UpdatedAt = s.opts.now().UTC()
	next.OwnerName, next.OwnerAvatar = "", ""
	s.profiles[ownerID] = &next
	audit(ctx, action, ownerID, ownerID, nil)
	return s.joined(&next), nil
}

func (s *MemoryStore) AddExperience(ctx context.Context, ownerID string, in ExperienceInput) (*Profile, error) {
	return s.mutate(ctx, "add_experience", ownerID, func(p *Profile) error {
		return addExperience(p, s.opts.newID(), in)
	})
}

func (s *MemoryStore) RemoveExperience(ctx context.Context, ownerID, expID string) (*Profile, error) {
	return s.mutate(ctx, "remove_experience", ownerID, func(p *Profile) error {
		return removeExperience(p, expID)
	})
}

func (s *MemoryStore) AddEducation(ctx context.Context, ownerID string, in EducationInput) (*Profile, error) {
	return s.mutate(ctx, "add_education", ownerID, func(p *Profile) error {
		return addEducation(p, s.opts.newID(), in)
	})
}

func (s *MemoryStore) RemoveEducation(ctx context.Context, ownerID, eduID string) (*Profile, error) {
	return s.mutate(ctx, "remove_education", ownerID, func(p *Profile) error {
		return removeEducation(p, eduID)
	})
}

func (s *MemoryStore) DeleteCascade(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.posts {
		if p.Author == ownerID {
			delete(s.posts, id)
		}
	}
	if _, ok := s.profiles[ownerID]; ok {
		delete(s.profiles, ownerID)
		s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == ownerID })
	}
	delete(s.users, ownerID)
	audit(ctx, "delete_cascade", ownerID, ownerID, nil)
	return nil
}

var _ Service = (*MemoryStore)(nil)
