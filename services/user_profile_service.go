package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"courtmates_server/models"
	"courtmates_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

type UserProfileService struct {
	Dynamo *DynamoService
	Table  string
	Logger *zap.Logger
	now    func() time.Time
}

func NewUserProfileService(dynamo *DynamoService, table string, logger *zap.Logger) *UserProfileService {
	if table == "" {
		table = models.UsersTable
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserProfileService{Dynamo: dynamo, Table: table, Logger: logger, now: time.Now}
}

// GetUserProfile retrieves a user profile by uid
func (ups *UserProfileService) GetUserProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	item, err := ups.Dynamo.GetItem(ctx, ups.Table, utils.StringKey(models.UserKey, uid))
	if errors.Is(err, ErrItemNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", uid, err)
	}
	return &profile, nil
}

// SaveUserProfile validates the settings form and stores the whole record.
// createdAt survives from the stored record, email falls back to it too.
func (ups *UserProfileService) SaveUserProfile(ctx context.Context, uid, email string, input models.SaveUserProfileInput) (*models.UserProfile, error) {
	if uid == "" {
		return nil, invalid("uid", "user not found")
	}

	phone := digitsOnly(input.Phone)
	if len(phone) != 10 {
		return nil, invalid("phone", "Phone number must contain exactly 10 digits.")
	}
	if !models.IsValidSport(input.FavouriteSport) {
		return nil, invalid("favouriteSport", "Please select your favourite sport.")
	}
	if !models.IsValidLevel(input.Level) {
		return nil, invalid("level", "Please select your level.")
	}
	level, err := strconv.ParseFloat(input.Level, 64)
	if err != nil {
		return nil, invalid("level", "Please select your level.")
	}

	now := ups.now().UTC()
	profile := models.UserProfile{
		UID:            uid,
		Name:           strings.TrimSpace(input.Name),
		Email:          email,
		Phone:          phone,
		Location:       strings.TrimSpace(input.Location),
		Address:        strings.TrimSpace(input.Address),
		Level:          &level,
		FavouriteSport: input.FavouriteSport,
		Avatar:         strings.TrimSpace(input.Avatar),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if c := input.LocationCoords; c != nil {
		profile.LocationLat, profile.LocationLng = &c.Lat, &c.Lng
	}
	if c := input.AddressCoords; c != nil {
		profile.AddressLat, profile.AddressLng = &c.Lat, &c.Lng
	}

	existing, err := ups.GetUserProfile(ctx, uid)
	switch {
	case err == nil:
		if !existing.CreatedAt.IsZero() {
			profile.CreatedAt = existing.CreatedAt
		}
		if profile.Email == "" {
			profile.Email = existing.Email
		}
	case !errors.Is(err, ErrProfileNotFound):
		return nil, err
	}

	if err := ups.Dynamo.PutItem(ctx, ups.Table, profile); err != nil {
		return nil, err
	}
	ups.Logger.Info("profile saved", zap.String("uid", uid))
	return &profile, nil
}

// SetAvatar stores a new avatar reference, creating the record if needed.
func (ups *UserProfileService) SetAvatar(ctx context.Context, uid, avatar string) (*models.UserProfile, error) {
	avatar = strings.TrimSpace(avatar)
	if uid == "" {
		return nil, invalid("uid", "user not found")
	}
	if avatar == "" {
		return nil, invalid("avatar", "avatar is required")
	}

	now, err := attributevalue.Marshal(ups.now().UTC())
	if err != nil {
		return nil, err
	}
	item, err := ups.Dynamo.UpdateItem(ctx, ups.Table, UpdateRequest{
		Key:              utils.StringKey(models.UserKey, uid),
		UpdateExpression: "SET avatar = :avatar, updatedAt = :now, createdAt = if_not_exists(createdAt, :now)",
		Values: map[string]types.AttributeValue{
			":avatar": &types.AttributeValueMemberS{Value: avatar},
			":now":    now,
		},
	})
	if err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", uid, err)
	}
	return &profile, nil
}

// FetchPlayerRecords reads one batch of users records by uid. Records
// without a uid are skipped.
func (ups *UserProfileService) FetchPlayerRecords(ctx context.Context, ids []string) ([]models.PlayerRecord, error) {
	items, err := ups.Dynamo.BatchGetItems(ctx, ups.Table, models.UserKey, ids)
	if err != nil {
		return nil, err
	}

	records := make([]models.PlayerRecord, 0, len(items))
	for _, item := range items {
		rec := models.DecodePlayerRecord(item)
		if rec.UID == "" {
			ups.Logger.Warn("skipping users record without uid")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
