package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"courtmates_server/models"
	"courtmates_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"
)

// MatchStore reads and writes the matches table.
type MatchStore struct {
	Dynamo *DynamoService
	Table  string
}

func NewMatchStore(dynamo *DynamoService, table string) *MatchStore {
	if table == "" {
		table = models.MatchesTable
	}
	return &MatchStore{Dynamo: dynamo, Table: table}
}

// ListMatches decodes every stored match, ordered by start time with
// undated matches last.
func (s *MatchStore) ListMatches(ctx context.Context) ([]models.Match, error) {
	items, err := s.Dynamo.ScanAll(ctx, s.Table)
	if err != nil {
		return nil, err
	}

	matches := make([]models.Match, 0, len(items))
	for _, item := range items {
		matches = append(matches, models.DecodeMatch(item))
	}
	sortMatches(matches)
	return matches, nil
}

func (s *MatchStore) GetMatch(ctx context.Context, matchID string) (models.Match, error) {
	item, err := s.Dynamo.GetItem(ctx, s.Table, utils.StringKey(models.MatchKey, matchID))
	if errors.Is(err, ErrItemNotFound) {
		return models.Match{}, ErrMatchNotFound
	}
	if err != nil {
		return models.Match{}, err
	}
	return models.DecodeMatch(item), nil
}

func (s *MatchStore) PutMatch(ctx context.Context, m models.Match) error {
	return s.Dynamo.PutItem(ctx, s.Table, m)
}

// AppendPlayer adds uid to the players list and writes count as the new
// playersCount in one update. It fails with a conditional check error when
// uid is already listed.
func (s *MatchStore) AppendPlayer(ctx context.Context, matchID, uid string, count int) (models.Match, error) {
	uidList, err := attributevalue.Marshal([]string{uid})
	if err != nil {
		return models.Match{}, err
	}

	item, err := s.Dynamo.UpdateItem(ctx, s.Table, UpdateRequest{
		Key:              utils.StringKey(models.MatchKey, matchID),
		UpdateExpression: "SET players = list_append(if_not_exists(players, :empty), :uidList), playersCount = :count",
		Condition:        "attribute_exists(matchId) AND NOT contains(players, :uid)",
		Values: map[string]types.AttributeValue{
			":empty":   &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":uidList": uidList,
			":uid":     &types.AttributeValueMemberS{Value: uid},
			":count":   &types.AttributeValueMemberN{Value: fmt.Sprint(count)},
		},
	})
	if err != nil {
		return models.Match{}, err
	}
	return models.DecodeMatch(item), nil
}

func sortMatches(matches []models.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].Time, matches[j].Time
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return matches[i].MatchID < matches[j].MatchID
	})
}

// MatchQuery filters a match listing. Search is matched fuzzily against
// location and address.
type MatchQuery struct {
	Search   string
	HideFull bool
}

type MatchService struct {
	Store    *MatchStore
	Feed     *MatchFeed
	Resolver MatchResolver
	Logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

func NewMatchService(store *MatchStore, feed *MatchFeed, resolver MatchResolver, logger *zap.Logger) *MatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchService{
		Store:    store,
		Feed:     feed,
		Resolver: resolver,
		Logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// ListMatches runs a manual refresh of the feed and filters the snapshot.
func (ms *MatchService) ListMatches(ctx context.Context, q MatchQuery) ([]models.Match, error) {
	matches, err := ms.Feed.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.TrimSpace(q.Search)
	out := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if q.HideFull && m.IsFull() {
			continue
		}
		if search != "" && !fuzzy.MatchNormalizedFold(search, m.Location) && !fuzzy.MatchNormalizedFold(search, m.Address) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (ms *MatchService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	m, err := ms.Store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	resolved := ms.Resolver.Resolve(ctx, []models.Match{m})[0]
	return &resolved, nil
}

// CreateMatch stores a new match with the creator as its first player.
func (ms *MatchService) CreateMatch(ctx context.Context, uid string, input models.CreateMatchInput) (*models.Match, error) {
	if uid == "" {
		return nil, invalid("uid", "user not found")
	}
	location := strings.TrimSpace(input.Location)
	if location == "" {
		return nil, invalid("location", "Location is required.")
	}
	if !models.IsValidSport(input.Sport) {
		return nil, invalid("sport", "Please select a sport.")
	}
	if input.Price < 0 {
		return nil, invalid("price", "Price must not be negative.")
	}
	if input.MaxPlayers != nil && (*input.MaxPlayers < 1 || *input.MaxPlayers > models.MaxCapacity) {
		return nil, invalid("maxPlayers", fmt.Sprintf("A match takes between 1 and %d players.", models.MaxCapacity))
	}
	if input.Duration < 0 {
		return nil, invalid("duration", "Duration must not be negative.")
	}

	now := ms.now().UTC()
	m := models.Match{
		MatchID:      ms.newID(),
		Location:     location,
		Sport:        input.Sport,
		Price:        input.Price,
		Duration:     input.Duration,
		Booked:       input.Booked,
		Players:      []string{uid},
		PlayersCount: 1,
		ImageURL:     input.ImageURL,
		CreatedBy:    uid,
		CreatedAt:    now,
	}

	switch {
	case input.MaxPlayers != nil:
		m.MaxPlayers = *input.MaxPlayers
	case input.Singles != nil && *input.Singles:
		m.MaxPlayers = models.SinglesCapacity
	default:
		m.MaxPlayers = models.DoublesCapacity
	}
	if input.Singles != nil {
		m.Singles = *input.Singles
	} else {
		m.Singles = m.MaxPlayers == models.SinglesCapacity
	}

	if m.Duration <= 0 {
		m.Duration = models.DefaultMatchDuration
	}
	if input.Time != nil {
		t := input.Time.UTC()
		m.Time = &t
	} else {
		m.Time = &now
	}
	if input.Level != nil {
		m.Level = *input.Level
	}
	if input.Address != nil {
		m.Address = strings.TrimSpace(*input.Address)
	}
	if input.Phone != nil {
		m.Phone = strings.TrimSpace(*input.Phone)
	}
	if m.ImageURL != nil && strings.TrimSpace(*m.ImageURL) == "" {
		m.ImageURL = nil
	}

	if err := ms.Store.PutMatch(ctx, m); err != nil {
		return nil, err
	}
	ms.Logger.Info("match created", zap.String("matchId", m.MatchID), zap.String("createdBy", uid))
	return &m, nil
}

// JoinMatch adds uid to the match. Joining twice is a no-op and joining a
// full match fails with ErrMatchFull without writing anything.
//
// The capacity check and the new playersCount are computed from the read
// above the write, so two players taking the last slot at the same time
// can both succeed.
func (ms *MatchService) JoinMatch(ctx context.Context, matchID, uid string) (*models.Match, error) {
	if uid == "" {
		return nil, invalid("uid", "user not found")
	}

	m, err := ms.Store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if !m.HasPlayer(uid) {
		if m.IsFull() {
			return nil, ErrMatchFull
		}

		updated, err := ms.Store.AppendPlayer(ctx, matchID, uid, m.Occupied()+1)
		var ccf *types.ConditionalCheckFailedException
		switch {
		case errors.As(err, &ccf):
			ms.Logger.Info("player already on match", zap.String("matchId", matchID), zap.String("uid", uid))
			if updated, err = ms.Store.GetMatch(ctx, matchID); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			ms.Logger.Info("player joined match", zap.String("matchId", matchID), zap.String("uid", uid))
		}
		m = updated
	}

	resolved := ms.Resolver.Resolve(ctx, []models.Match{m})[0]
	return &resolved, nil
}
