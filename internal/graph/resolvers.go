// ABOUTME: GraphQL resolvers for queries, mutations, and object types
// ABOUTME: Thin adapters from schema fields onto social.Service operations

package graph

import (
	"context"
	"log/slog"
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/2389/deep-thoughts/internal/metrics"
	"github.com/2389/deep-thoughts/internal/social"
	"github.com/2389/deep-thoughts/internal/store"
)

// Resolver is the root resolver for both Query and Mutation.
type Resolver struct {
	svc     *social.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewResolver creates a root resolver. metrics may be nil.
func NewResolver(svc *social.Service, m *metrics.Metrics, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		svc:     svc,
		metrics: m,
		logger:  logger.With("component", "graph"),
	}
}

// finish records the outcome of a root operation and converts err for the client.
func (r *Resolver) finish(op string, start time.Time, err error) error {
	if err == nil {
		r.metrics.ObserveOperation(op, CodeOK, time.Since(start))
		return nil
	}
	return r.fail(op, start, err)
}

func (r *Resolver) fail(op string, start time.Time, err error) error {
	gerr := toError(err)
	if gerr.Code == CodeInternal {
		r.logger.Error("operation failed", "operation", op, "error", err)
	} else {
		r.logger.Debug("operation rejected", "operation", op, "code", gerr.Code, "error", err)
	}
	if !start.IsZero() {
		r.metrics.ObserveOperation(op, gerr.Code, time.Since(start))
	}
	return gerr
}

// Queries

func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	start := time.Now()
	p, err := r.svc.Me(ctx)
	if err := r.finish("me", start, err); err != nil {
		return nil, err
	}
	return r.profile(p), nil
}

func (r *Resolver) Users(ctx context.Context) ([]*userResolver, error) {
	start := time.Now()
	profiles, err := r.svc.Users(ctx)
	if err := r.finish("users", start, err); err != nil {
		return nil, err
	}
	out := make([]*userResolver, len(profiles))
	for i, p := range profiles {
		out[i] = r.profile(p)
	}
	return out, nil
}

func (r *Resolver) User(ctx context.Context, args struct{ Username string }) (*userResolver, error) {
	start := time.Now()
	p, err := r.svc.User(ctx, args.Username)
	if err := r.finish("user", start, err); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return r.profile(p), nil
}

func (r *Resolver) Thoughts(ctx context.Context, args struct{ Username *string }) ([]*thoughtResolver, error) {
	start := time.Now()
	thoughts, err := r.svc.Thoughts(ctx, args.Username)
	if err := r.finish("thoughts", start, err); err != nil {
		return nil, err
	}
	return thoughtResolvers(thoughts), nil
}

func (r *Resolver) Thought(ctx context.Context, args struct{ ID graphql.ID }) (*thoughtResolver, error) {
	start := time.Now()
	t, err := r.svc.Thought(ctx, string(args.ID))
	if err := r.finish("thought", start, err); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	return &thoughtResolver{t: t}, nil
}

// Mutations

func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) (*authResolver, error) {
	start := time.Now()
	res, err := r.svc.Login(ctx, args.Email, args.Password)
	if err := r.finish("login", start, err); err != nil {
		return nil, err
	}
	return &authResolver{token: res.Token, user: r.profile(res.User)}, nil
}

func (r *Resolver) AddUser(ctx context.Context, args struct {
	Username string
	Email    string
	Password string
}) (*authResolver, error) {
	start := time.Now()
	res, err := r.svc.AddUser(ctx, social.AddUserInput{
		Username: args.Username,
		Email:    args.Email,
		Password: args.Password,
	})
	if err := r.finish("addUser", start, err); err != nil {
		return nil, err
	}
	return &authResolver{token: res.Token, user: r.profile(res.User)}, nil
}

func (r *Resolver) AddThought(ctx context.Context, args struct{ ThoughtText string }) (*thoughtResolver, error) {
	start := time.Now()
	t, err := r.svc.AddThought(ctx, args.ThoughtText)
	if err := r.finish("addThought", start, err); err != nil {
		return nil, err
	}
	return &thoughtResolver{t: t}, nil
}

func (r *Resolver) AddReaction(ctx context.Context, args struct {
	ThoughtID    graphql.ID
	ReactionBody string
}) (*thoughtResolver, error) {
	start := time.Now()
	t, err := r.svc.AddReaction(ctx, string(args.ThoughtID), args.ReactionBody)
	if err := r.finish("addReaction", start, err); err != nil {
		return nil, err
	}
	return &thoughtResolver{t: t}, nil
}

func (r *Resolver) AddFriend(ctx context.Context, args struct{ FriendID graphql.ID }) (*userResolver, error) {
	start := time.Now()
	p, err := r.svc.AddFriend(ctx, string(args.FriendID))
	if err := r.finish("addFriend", start, err); err != nil {
		return nil, err
	}
	return r.profile(p), nil
}

// Object types

// userResolver resolves User. When expanded is false, thoughts and friends are
// loaded from the service on demand.
type userResolver struct {
	root     *Resolver
	user     *store.User
	expanded bool
	thoughts []*store.Thought
	friends  []*store.User
}

func (r *Resolver) profile(p *social.Profile) *userResolver {
	return &userResolver{
		root:     r,
		user:     p.User,
		expanded: true,
		thoughts: p.Thoughts,
		friends:  p.Friends,
	}
}

func (r *Resolver) user(u *store.User) *userResolver {
	return &userResolver{root: r, user: u}
}

func (u *userResolver) ID() graphql.ID {
	return graphql.ID(u.user.ID)
}

func (u *userResolver) Username() string {
	return u.user.Username
}

func (u *userResolver) Email() string {
	return u.user.Email
}

func (u *userResolver) FriendCount() int32 {
	return int32(u.user.FriendCount())
}

func (u *userResolver) Thoughts(ctx context.Context) ([]*thoughtResolver, error) {
	if u.expanded {
		return thoughtResolvers(u.thoughts), nil
	}
	thoughts, err := u.root.svc.ThoughtsOf(ctx, u.user)
	if err != nil {
		return nil, u.root.fail("User.thoughts", time.Time{}, err)
	}
	return thoughtResolvers(thoughts), nil
}

func (u *userResolver) Friends(ctx context.Context) ([]*userResolver, error) {
	friends := u.friends
	if !u.expanded {
		var err error
		friends, err = u.root.svc.Friends(ctx, u.user)
		if err != nil {
			return nil, u.root.fail("User.friends", time.Time{}, err)
		}
	}
	out := make([]*userResolver, len(friends))
	for i, f := range friends {
		out[i] = u.root.user(f)
	}
	return out, nil
}

type thoughtResolver struct {
	t *store.Thought
}

func thoughtResolvers(thoughts []*store.Thought) []*thoughtResolver {
	out := make([]*thoughtResolver, len(thoughts))
	for i, t := range thoughts {
		out[i] = &thoughtResolver{t: t}
	}
	return out
}

func (t *thoughtResolver) ID() graphql.ID {
	return graphql.ID(t.t.ID)
}

func (t *thoughtResolver) ThoughtText() string {
	return t.t.ThoughtText
}

func (t *thoughtResolver) ThoughtHTML() string {
	return renderMarkdown(t.t.ThoughtText)
}

func (t *thoughtResolver) CreatedAt() string {
	return formatDate(t.t.CreatedAt)
}

func (t *thoughtResolver) Username() string {
	return t.t.Username
}

func (t *thoughtResolver) ReactionCount() int32 {
	return int32(t.t.ReactionCount())
}

func (t *thoughtResolver) Reactions() []*reactionResolver {
	out := make([]*reactionResolver, len(t.t.Reactions))
	for i := range t.t.Reactions {
		out[i] = &reactionResolver{r: &t.t.Reactions[i]}
	}
	return out
}

type reactionResolver struct {
	r *store.Reaction
}

func (r *reactionResolver) ID() graphql.ID {
	return graphql.ID(r.r.ID)
}

func (r *reactionResolver) ReactionBody() string {
	return r.r.ReactionBody
}

func (r *reactionResolver) CreatedAt() string {
	return formatDate(r.r.CreatedAt)
}

func (r *reactionResolver) Username() string {
	return r.r.Username
}

type authResolver struct {
	token string
	user  *userResolver
}

func (a *authResolver) Token() graphql.ID {
	return graphql.ID(a.token)
}

func (a *authResolver) User() *userResolver {
	return a.user
}
