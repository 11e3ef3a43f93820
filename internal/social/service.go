// ABOUTME: Domain operations for users, thoughts, reactions, and friendships
// ABOUTME: Enforces authentication and validation before delegating to the store

package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/2389/deep-thoughts/internal/auth"
	"github.com/2389/deep-thoughts/internal/metrics"
	"github.com/2389/deep-thoughts/internal/store"
	"github.com/2389/deep-thoughts/internal/throttle"
)

// Profile is a user with its thought and friend references expanded one level.
type Profile struct {
	*store.User
	Thoughts []*store.Thought
	Friends  []*store.User
}

// Auth is the result of a successful sign-up or login.
type Auth struct {
	Token string
	User  *Profile
}

// Config holds the dependencies of a Service. Store and Tokens are required.
type Config struct {
	Store  store.Store
	Tokens auth.TokenIssuer

	// Throttle limits login failures per email; nil disables throttling.
	Throttle *throttle.Limiter

	// BcryptCost is the hashing cost for new passwords; 0 uses bcrypt.DefaultCost.
	BcryptCost int

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Service implements the read and write operations of the API.
type Service struct {
	store      store.Store
	tokens     auth.TokenIssuer
	throttle   *throttle.Limiter
	bcryptCost int
	metrics    *metrics.Metrics
	validate   *validator.Validate
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

// NewService creates a Service from cfg.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      cfg.Store,
		tokens:     cfg.Tokens,
		throttle:   cfg.Throttle,
		bcryptCost: cfg.BcryptCost,
		metrics:    cfg.Metrics,
		validate:   newValidator(),
		logger:     logger.With("component", "social"),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.New().String() },
	}
}

// requireIdentity returns the caller identity or ErrUnauthenticated.
func requireIdentity(ctx context.Context) (*auth.Identity, error) {
	id := auth.IdentityFromContext(ctx)
	if id == nil {
		return nil, ErrUnauthenticated
	}
	return id, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Thoughts returns every thought, or only those posted by username, newest first.
func (s *Service) Thoughts(ctx context.Context, username *string) ([]*store.Thought, error) {
	var filter store.ThoughtFilter
	if username != nil {
		filter.Username = *username
	}

	thoughts, err := s.store.ListThoughts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing thoughts: %w", err)
	}
	store.SortThoughtsNewestFirst(thoughts)
	return thoughts, nil
}

// Thought returns the thought with the given ID, or nil if there is none.
func (s *Service) Thought(ctx context.Context, id string) (*store.Thought, error) {
	t, err := s.store.GetThought(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting thought: %w", err)
	}
	return t, nil
}

// Users returns every user with thoughts and friends expanded.
func (s *Service) Users(ctx context.Context) ([]*Profile, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return s.expand(ctx, users)
}

// User returns the named user with thoughts and friends expanded, or nil if there is none.
func (s *Service) User(ctx context.Context, username string) (*Profile, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return s.expandOne(ctx, u)
}

// Me returns the caller's own expanded record.
func (s *Service) Me(ctx context.Context) (*Profile, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return s.profileByID(ctx, id.ID)
}

// Friends returns the users referenced by u's friend list.
func (s *Service) Friends(ctx context.Context, u *store.User) ([]*store.User, error) {
	friends, err := s.store.GetUsers(ctx, u.FriendIDs)
	if err != nil {
		return nil, fmt.Errorf("loading friends: %w", err)
	}
	return friends, nil
}

// ThoughtsOf returns the thoughts referenced by u's thought list, in creation order.
func (s *Service) ThoughtsOf(ctx context.Context, u *store.User) ([]*store.Thought, error) {
	thoughts, err := s.store.GetThoughts(ctx, u.ThoughtIDs)
	if err != nil {
		return nil, fmt.Errorf("loading thoughts: %w", err)
	}
	return thoughts, nil
}

func (s *Service) profileByID(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err, "user", "getting user")
	}
	return s.expandOne(ctx, u)
}

func (s *Service) expandOne(ctx context.Context, u *store.User) (*Profile, error) {
	profiles, err := s.expand(ctx, []*store.User{u})
	if err != nil {
		return nil, err
	}
	return profiles[0], nil
}

// expand resolves thought and friend references for all users with one batch
// read per kind.
func (s *Service) expand(ctx context.Context, users []*store.User) ([]*Profile, error) {
	var thoughtIDs, friendIDs []string
	for _, u := range users {
		thoughtIDs = append(thoughtIDs, u.ThoughtIDs...)
		friendIDs = append(friendIDs, u.FriendIDs...)
	}

	thoughts, err := s.store.GetThoughts(ctx, thoughtIDs)
	if err != nil {
		return nil, fmt.Errorf("loading thoughts: %w", err)
	}
	thoughtsByID := make(map[string]*store.Thought, len(thoughts))
	for _, t := range thoughts {
		thoughtsByID[t.ID] = t
	}

	friends, err := s.store.GetUsers(ctx, friendIDs)
	if err != nil {
		return nil, fmt.Errorf("loading friends: %w", err)
	}
	friendsByID := make(map[string]*store.User, len(friends))
	for _, f := range friends {
		friendsByID[f.ID] = f
	}

	profiles := make([]*Profile, 0, len(users))
	for _, u := range users {
		p := &Profile{
			User:     u,
			Thoughts: make([]*store.Thought, 0, len(u.ThoughtIDs)),
			Friends:  make([]*store.User, 0, len(u.FriendIDs)),
		}
		for _, id := range u.ThoughtIDs {
			if t, ok := thoughtsByID[id]; ok {
				p.Thoughts = append(p.Thoughts, t)
			}
		}
		for _, id := range u.FriendIDs {
			if f, ok := friendsByID[id]; ok {
				p.Friends = append(p.Friends, f)
			}
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// AddUser creates an account and returns a credential for it.
func (s *Service) AddUser(ctx context.Context, in AddUserInput) (*Auth, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &store.User{
		ID:           s.newID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		ThoughtIDs:   []string{},
		FriendIDs:    []string{},
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, translateStoreError(err, "username or email", "creating user")
	}

	s.metrics.UserCreated()
	s.logger.Info("user signed up", "user_id", user.ID, "username", user.Username)
	return s.issue(user, &Profile{User: user, Thoughts: []*store.Thought{}, Friends: []*store.User{}})
}

// Login exchanges an email and password for a credential. Every failure,
// including a throttled account, returns ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Auth, error) {
	key := normalizeEmail(email)

	if s.throttle != nil && s.throttle.Blocked(key) {
		// Keep the timing of a real password check.
		_ = auth.CheckPassword("", password)
		s.metrics.LoginFailed(metrics.LoginThrottled)
		s.logger.Warn("login throttled", "email", key)
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	var hash string
	if user != nil {
		hash = user.PasswordHash
	}
	// CheckPassword runs a dummy comparison when hash is empty.
	if err := auth.CheckPassword(hash, password); err != nil || user == nil {
		s.recordLoginFailure(key)
		return nil, ErrInvalidCredentials
	}

	if s.throttle != nil {
		s.throttle.Reset(key)
	}

	profile, err := s.expandOne(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("user logged in", "user_id", user.ID)
	return s.issue(user, profile)
}

func (s *Service) recordLoginFailure(key string) {
	s.metrics.LoginFailed(metrics.LoginBadCredentials)
	if s.throttle != nil && s.throttle.RecordFailure(key) {
		s.logger.Warn("login locked out after repeated failures", "email", key)
	}
}

func (s *Service) issue(user *store.User, profile *Profile) (*Auth, error) {
	token, err := s.tokens.Issue(auth.Identity{
		Username: user.Username,
		Email:    user.Email,
		ID:       user.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}
	return &Auth{Token: token, User: profile}, nil
}

// AddThought posts a thought as the caller. The thought is inserted and linked
// to the caller's thought list in one store operation.
func (s *Service) AddThought(ctx context.Context, text string) (*store.Thought, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validateStruct(thoughtInput{ThoughtText: text}); err != nil {
		return nil, err
	}

	thought := &store.Thought{
		ID:          s.newID(),
		ThoughtText: text,
		Username:    id.Username,
		CreatedAt:   s.now(),
		Reactions:   []store.Reaction{},
	}
	if err := s.store.AddThought(ctx, id.ID, thought); err != nil {
		return nil, translateStoreError(err, "user", "adding thought")
	}

	s.metrics.ThoughtCreated()
	s.logger.Debug("thought posted", "thought_id", thought.ID, "username", id.Username)
	return thought, nil
}

// AddReaction appends a reaction by the caller to a thought and returns the updated thought.
func (s *Service) AddReaction(ctx context.Context, thoughtID, body string) (*store.Thought, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validateStruct(reactionInput{ThoughtID: thoughtID, ReactionBody: body}); err != nil {
		return nil, err
	}

	updated, err := s.store.AddReaction(ctx, thoughtID, &store.Reaction{
		ID:           s.newID(),
		ReactionBody: body,
		Username:     id.Username,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, translateStoreError(err, "thought", "adding reaction")
	}

	s.metrics.ReactionAdded()
	return updated, nil
}

// AddFriend adds friendID to the caller's friends and returns the caller's expanded record.
// Adding an existing friend changes nothing.
func (s *Service) AddFriend(ctx context.Context, friendID string) (*Profile, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if friendID == "" {
		return nil, fmt.Errorf("%w: friendId is required", ErrInvalidInput)
	}
	if friendID == id.ID {
		return nil, fmt.Errorf("%w: cannot add yourself as a friend", ErrInvalidInput)
	}

	if err := s.store.AddFriend(ctx, id.ID, friendID); err != nil {
		return nil, translateStoreError(err, "user", "adding friend")
	}
	return s.profileByID(ctx, id.ID)
}
