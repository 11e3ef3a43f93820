// ABOUTME: DynamoDB implementation of the Store interface using aws-sdk-go-v2
// ABOUTME: Single-table layout with uniqueness markers and atomic list appends

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Entity types stored in the EntityType attribute.
const (
	entityUser    = "USER"
	entityThought = "THOUGHT"
	entityUnique  = "UNIQUE"
)

// Sort keys.
const (
	skProfile = "PROFILE"
	skThought = "THOUGHT"
	skUnique  = "UNIQUE"
)

// maxBatchGetKeys is the BatchGetItem per-request key limit.
const maxBatchGetKeys = 100

// DynamoDBAPI is the subset of the DynamoDB client used by DynamoDBStore.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoDBOptions configures a DynamoDB-backed store.
type DynamoDBOptions struct {
	Table    string
	Region   string
	Endpoint string // optional, e.g. DynamoDB Local
}

// DynamoDBStore implements the Store interface on a single DynamoDB table
// with string partition key PK and sort key SK.
type DynamoDBStore struct {
	client DynamoDBAPI
	table  string
	logger *slog.Logger
}

// userItem is the DynamoDB item for a user profile
type userItem struct {
	PK           string   `dynamodbav:"PK"`
	SK           string   `dynamodbav:"SK"`
	EntityType   string   `dynamodbav:"EntityType"`
	UserID       string   `dynamodbav:"UserID"`
	Username     string   `dynamodbav:"Username"`
	Email        string   `dynamodbav:"Email"`
	PasswordHash string   `dynamodbav:"PasswordHash"`
	ThoughtIDs   []string `dynamodbav:"ThoughtIDs"`
	FriendIDs    []string `dynamodbav:"FriendIDs"`
	CreatedAt    string   `dynamodbav:"CreatedAt"`
}

// uniqueItem reserves a username or email for a user
type uniqueItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	UserID     string `dynamodbav:"UserID"`
}

// thoughtItem is the DynamoDB item for a thought with its embedded reactions
type thoughtItem struct {
	PK          string         `dynamodbav:"PK"`
	SK          string         `dynamodbav:"SK"`
	EntityType  string         `dynamodbav:"EntityType"`
	ThoughtID   string         `dynamodbav:"ThoughtID"`
	ThoughtText string         `dynamodbav:"ThoughtText"`
	Username    string         `dynamodbav:"Username"`
	CreatedAt   string         `dynamodbav:"CreatedAt"`
	Reactions   []reactionItem `dynamodbav:"Reactions"`
}

type reactionItem struct {
	ReactionID   string `dynamodbav:"ReactionID"`
	ReactionBody string `dynamodbav:"ReactionBody"`
	Username     string `dynamodbav:"Username"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
}

func userPK(id string) string { return "USER#" + id }
func thoughtPK(id string) string { return "THOUGHT#" + id }
func usernamePK(name string) string { return "USERNAME#" + name }
func emailPK(email string) string { return "EMAIL#" + strings.ToLower(email) }

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// NewDynamoDBStore loads AWS configuration from the environment and connects to the table.
func NewDynamoDBStore(ctx context.Context, opts DynamoDBOptions) (*DynamoDBStore, error) {
	if opts.Table == "" {
		return nil, errors.New("dynamodb table name is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	s := NewDynamoDBStoreWithClient(client, opts.Table)
	s.logger.Info("DynamoDB store initialized", "table", opts.Table, "region", awsCfg.Region)
	return s, nil
}

// NewDynamoDBStoreWithClient wraps an existing client.
func NewDynamoDBStoreWithClient(client DynamoDBAPI, table string) *DynamoDBStore {
	return &DynamoDBStore{
		client: client,
		table:  table,
		logger: slog.Default().With("component", "store", "backend", "dynamodb"),
	}
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *DynamoDBStore) Close() error {
	return nil
}

// Ping checks that the table is reachable
func (s *DynamoDBStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return fmt.Errorf("describing table: %w", err)
	}
	return nil
}

func newUserItem(u *User) userItem {
	thoughtIDs := u.ThoughtIDs
	if thoughtIDs == nil {
		thoughtIDs = []string{}
	}
	friendIDs := u.FriendIDs
	if friendIDs == nil {
		friendIDs = []string{}
	}
	return userItem{
		PK:           userPK(u.ID),
		SK:           skProfile,
		EntityType:   entityUser,
		UserID:       u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		ThoughtIDs:   thoughtIDs,
		FriendIDs:    friendIDs,
		CreatedAt:    formatTime(u.CreatedAt),
	}
}

func (item userItem) toUser() (*User, error) {
	createdAt, err := parseTime(item.CreatedAt)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           item.UserID,
		Username:     item.Username,
		Email:        item.Email,
		PasswordHash: item.PasswordHash,
		ThoughtIDs:   item.ThoughtIDs,
		FriendIDs:    item.FriendIDs,
		CreatedAt:    createdAt,
	}
	if u.ThoughtIDs == nil {
		u.ThoughtIDs = []string{}
	}
	if u.FriendIDs == nil {
		u.FriendIDs = []string{}
	}
	return u, nil
}

func newThoughtItem(t *Thought) thoughtItem {
	reactions := make([]reactionItem, 0, len(t.Reactions))
	for i := range t.Reactions {
		reactions = append(reactions, newReactionItem(&t.Reactions[i]))
	}
	return thoughtItem{
		PK:          thoughtPK(t.ID),
		SK:          skThought,
		EntityType:  entityThought,
		ThoughtID:   t.ID,
		ThoughtText: t.ThoughtText,
		Username:    t.Username,
		CreatedAt:   formatTime(t.CreatedAt),
		Reactions:   reactions,
	}
}

func newReactionItem(r *Reaction) reactionItem {
	return reactionItem{
		ReactionID:   r.ID,
		ReactionBody: r.ReactionBody,
		Username:     r.Username,
		CreatedAt:    formatTime(r.CreatedAt),
	}
}

func (item thoughtItem) toThought() (*Thought, error) {
	createdAt, err := parseTime(item.CreatedAt)
	if err != nil {
		return nil, err
	}
	t := &Thought{
		ID:          item.ThoughtID,
		ThoughtText: item.ThoughtText,
		Username:    item.Username,
		CreatedAt:   createdAt,
		Reactions:   make([]Reaction, 0, len(item.Reactions)),
	}
	for _, r := range item.Reactions {
		rc, err := parseTime(r.CreatedAt)
		if err != nil {
			return nil, err
		}
		t.Reactions = append(t.Reactions, Reaction{
			ID:           r.ReactionID,
			ReactionBody: r.ReactionBody,
			Username:     r.Username,
			CreatedAt:    rc,
		})
	}
	return t, nil
}

// conditionalPut builds a transactional Put that fails if the key already exists.
func (s *DynamoDBStore) conditionalPut(item any) (types.TransactWriteItem, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("marshaling item: %w", err)
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists()).
		Build()
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("building condition: %w", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:                aws.String(s.table),
			Item:                     av,
			ConditionExpression:      expr.Condition(),
			ExpressionAttributeNames: expr.Names(),
		},
	}, nil
}

// canceledReasons returns the per-item cancellation codes when err is a
// TransactionCanceledException, or nil otherwise.
func canceledReasons(err error) []string {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return nil
	}
	codes := make([]string, len(canceled.CancellationReasons))
	for i, reason := range canceled.CancellationReasons {
		codes[i] = aws.ToString(reason.Code)
	}
	return codes
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// CreateUser writes the profile and its username/email markers in one transaction.
// Returns ErrDuplicate if any of them already exists.
func (s *DynamoDBStore) CreateUser(ctx context.Context, user *User) error {
	var items []types.TransactWriteItem
	for _, item := range []any{
		newUserItem(user),
		uniqueItem{PK: usernamePK(user.Username), SK: skUnique, EntityType: entityUnique, UserID: user.ID},
		uniqueItem{PK: emailPK(user.Email), SK: skUnique, EntityType: entityUnique, UserID: user.ID},
	} {
		put, err := s.conditionalPut(item)
		if err != nil {
			return err
		}
		items = append(items, put)
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		for _, code := range canceledReasons(err) {
			if code == "ConditionalCheckFailed" {
				return ErrDuplicate
			}
		}
		return fmt.Errorf("creating user: %w", err)
	}

	s.logger.Debug("created user", "id", user.ID, "username", user.Username)
	return nil
}

// GetUser retrieves a user by ID.
func (s *DynamoDBStore) GetUser(ctx context.Context, id string) (*User, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            itemKey(userPK(id), skProfile),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshaling user: %w", err)
	}
	return item.toUser()
}

// lookupUnique resolves a username or email marker to its user.
func (s *DynamoDBStore) lookupUnique(ctx context.Context, pk string) (*User, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            itemKey(pk, skUnique),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting unique marker: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var marker uniqueItem
	if err := attributevalue.UnmarshalMap(out.Item, &marker); err != nil {
		return nil, fmt.Errorf("unmarshaling unique marker: %w", err)
	}
	return s.GetUser(ctx, marker.UserID)
}

// GetUserByUsername retrieves a user by username.
func (s *DynamoDBStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.lookupUnique(ctx, usernamePK(username))
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *DynamoDBStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.lookupUnique(ctx, emailPK(email))
}

// scanEntities pages through every item of the given entity type matching the extra filter.
func (s *DynamoDBStore) scanEntities(ctx context.Context, entityType string, extra *expression.ConditionBuilder) ([]map[string]types.AttributeValue, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(entityType))
	if extra != nil {
		filter = filter.And(*extra)
	}
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("building filter: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                 aws.String(s.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(true),
	})

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning %s items: %w", strings.ToLower(entityType), err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// ListUsers returns all users ordered by creation time.
func (s *DynamoDBStore) ListUsers(ctx context.Context) ([]*User, error) {
	raw, err := s.scanEntities(ctx, entityUser, nil)
	if err != nil {
		return nil, err
	}

	var items []userItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshaling users: %w", err)
	}

	users := make([]*User, 0, len(items))
	for _, item := range items {
		u, err := item.toUser()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	sort.SliceStable(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// batchGet fetches items by key in chunks, retrying unprocessed keys.
func (s *DynamoDBStore) batchGet(ctx context.Context, keys []map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for start := 0; start < len(keys); start += maxBatchGetKeys {
		end := min(start+maxBatchGetKeys, len(keys))
		request := map[string]types.KeysAndAttributes{
			s.table: {Keys: keys[start:end], ConsistentRead: aws.Bool(true)},
		}
		for len(request) > 0 {
			out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, fmt.Errorf("batch get: %w", err)
			}
			items = append(items, out.Responses[s.table]...)
			request = out.UnprocessedKeys
		}
	}
	return items, nil
}

// uniqueKeys builds one key per distinct ID; BatchGetItem rejects duplicate keys.
func uniqueKeys(ids []string, pk func(string) string, sk string) []map[string]types.AttributeValue {
	seen := make(map[string]bool, len(ids))
	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, itemKey(pk(id), sk))
	}
	return keys
}

// GetUsers returns the users with the given IDs in the order requested.
func (s *DynamoDBStore) GetUsers(ctx context.Context, ids []string) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}
	raw, err := s.batchGet(ctx, uniqueKeys(ids, userPK, skProfile))
	if err != nil {
		return nil, err
	}

	var items []userItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshaling users: %w", err)
	}
	byID := make(map[string]*User, len(items))
	for _, item := range items {
		u, err := item.toUser()
		if err != nil {
			return nil, err
		}
		byID[u.ID] = u
	}
	return orderByIDs(ids, byID), nil
}

// AddFriend adds friendID to the user's friend list unless it is already there.
func (s *DynamoDBStore) AddFriend(ctx context.Context, userID, friendID string) error {
	if _, err := s.GetUser(ctx, friendID); err != nil {
		return err
	}

	update := expression.Set(
		expression.Name("FriendIDs"),
		expression.ListAppend(
			expression.IfNotExists(expression.Name("FriendIDs"), expression.Value([]string{})),
			expression.Value([]string{friendID}),
		),
	)
	condition := expression.Name("PK").AttributeExists().
		And(expression.Name("FriendIDs").Contains(friendID).Not())

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(condition).Build()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       itemKey(userPK(userID), skProfile),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if !isConditionalCheckFailed(err) {
			return fmt.Errorf("adding friend: %w", err)
		}
		// Either the user is missing or the friend is already present.
		if _, err := s.GetUser(ctx, userID); err != nil {
			return err
		}
		return nil
	}

	s.logger.Debug("added friend", "user_id", userID, "friend_id", friendID)
	return nil
}

// AddThought puts the thought and appends its ID to the owner in one transaction.
func (s *DynamoDBStore) AddThought(ctx context.Context, ownerID string, thought *Thought) error {
	put, err := s.conditionalPut(newThoughtItem(thought))
	if err != nil {
		return err
	}

	update := expression.Set(
		expression.Name("ThoughtIDs"),
		expression.ListAppend(
			expression.IfNotExists(expression.Name("ThoughtIDs"), expression.Value([]string{})),
			expression.Value([]string{thought.ID}),
		),
	)
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.Name("PK").AttributeExists()).
		Build()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			put,
			{
				Update: &types.Update{
					TableName:                 aws.String(s.table),
					Key:                       itemKey(userPK(ownerID), skProfile),
					UpdateExpression:          expr.Update(),
					ConditionExpression:       expr.Condition(),
					ExpressionAttributeNames:  expr.Names(),
					ExpressionAttributeValues: expr.Values(),
				},
			},
		},
	})
	if err != nil {
		reasons := canceledReasons(err)
		if len(reasons) == 2 {
			if reasons[0] == "ConditionalCheckFailed" {
				return ErrDuplicate
			}
			if reasons[1] == "ConditionalCheckFailed" {
				return ErrNotFound
			}
		}
		return fmt.Errorf("adding thought: %w", err)
	}

	s.logger.Debug("created thought", "id", thought.ID, "username", thought.Username)
	return nil
}

// GetThought retrieves a thought by ID.
func (s *DynamoDBStore) GetThought(ctx context.Context, id string) (*Thought, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            itemKey(thoughtPK(id), skThought),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting thought: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var item thoughtItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshaling thought: %w", err)
	}
	return item.toThought()
}

func toThoughts(raw []map[string]types.AttributeValue) ([]*Thought, error) {
	var items []thoughtItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshaling thoughts: %w", err)
	}
	thoughts := make([]*Thought, 0, len(items))
	for _, item := range items {
		t, err := item.toThought()
		if err != nil {
			return nil, err
		}
		thoughts = append(thoughts, t)
	}
	return thoughts, nil
}

// GetThoughts returns the thoughts with the given IDs in the order requested.
func (s *DynamoDBStore) GetThoughts(ctx context.Context, ids []string) ([]*Thought, error) {
	if len(ids) == 0 {
		return []*Thought{}, nil
	}
	raw, err := s.batchGet(ctx, uniqueKeys(ids, thoughtPK, skThought))
	if err != nil {
		return nil, err
	}
	thoughts, err := toThoughts(raw)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Thought, len(thoughts))
	for _, t := range thoughts {
		byID[t.ID] = t
	}
	return orderByIDs(ids, byID), nil
}

// ListThoughts returns thoughts matching the filter, newest first.
func (s *DynamoDBStore) ListThoughts(ctx context.Context, filter ThoughtFilter) ([]*Thought, error) {
	var extra *expression.ConditionBuilder
	if filter.Username != "" {
		cond := expression.Name("Username").Equal(expression.Value(filter.Username))
		extra = &cond
	}

	raw, err := s.scanEntities(ctx, entityThought, extra)
	if err != nil {
		return nil, err
	}
	thoughts, err := toThoughts(raw)
	if err != nil {
		return nil, err
	}
	SortThoughtsNewestFirst(thoughts)
	return thoughts, nil
}

// AddReaction appends a reaction to the thought's list and returns the updated thought.
func (s *DynamoDBStore) AddReaction(ctx context.Context, thoughtID string, reaction *Reaction) (*Thought, error) {
	update := expression.Set(
		expression.Name("Reactions"),
		expression.ListAppend(
			expression.IfNotExists(expression.Name("Reactions"), expression.Value([]reactionItem{})),
			expression.Value([]reactionItem{newReactionItem(reaction)}),
		),
	)
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.Name("PK").AttributeExists()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building update: %w", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       itemKey(thoughtPK(thoughtID), skThought),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("adding reaction: %w", err)
	}

	var item thoughtItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, fmt.Errorf("unmarshaling thought: %w", err)
	}

	s.logger.Debug("added reaction", "thought_id", thoughtID, "reaction_id", reaction.ID)
	return item.toThought()
}

// Ensure DynamoDBStore implements Store
var _ Store = (*DynamoDBStore)(nil)
