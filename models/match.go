package models

import (
	"time"

	"courtmates_server/utils"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Match is an open game players can join. PlayerProfiles is filled by the
// profile resolver and never stored.
type Match struct {
	MatchID      string     `dynamodbav:"matchId" json:"matchId"`
	Location     string     `dynamodbav:"location" json:"location"`
	Address      string     `dynamodbav:"address,omitempty" json:"address,omitempty"`
	Level        float64    `dynamodbav:"level" json:"level"`
	Sport        string     `dynamodbav:"sport" json:"sport"`
	Price        float64    `dynamodbav:"price" json:"price"`
	Time         *time.Time `dynamodbav:"time,omitempty" json:"time,omitempty"`
	Phone        string     `dynamodbav:"phone,omitempty" json:"phone,omitempty"`
	Players      []string   `dynamodbav:"players" json:"players"`
	MaxPlayers   int        `dynamodbav:"maxPlayers" json:"maxPlayers"`
	PlayersCount int        `dynamodbav:"playersCount" json:"playersCount"`
	ImageURL     *string    `dynamodbav:"imageUrl,omitempty" json:"imageUrl"`
	Singles      bool       `dynamodbav:"singles" json:"singles"`
	Duration     int        `dynamodbav:"duration" json:"duration"`
	Booked       bool       `dynamodbav:"booked" json:"booked"`
	CreatedBy    string     `dynamodbav:"createdBy" json:"createdBy"`
	CreatedAt    time.Time  `dynamodbav:"createdAt" json:"createdAt"`

	PlayerProfiles []PlayerProfile `dynamodbav:"-" json:"playerProfiles"`
}

// CreateMatchInput is the payload of the create-match form. Optional
// fields left nil are derived on creation.
type CreateMatchInput struct {
	Location   string     `json:"location"`
	Sport      string     `json:"sport"`
	Price      float64    `json:"price"`
	Time       *time.Time `json:"time,omitempty"`
	Duration   int        `json:"duration"`
	Booked     bool       `json:"booked"`
	MaxPlayers *int       `json:"maxPlayers,omitempty"`
	ImageURL   *string    `json:"imageUrl,omitempty"`
	Singles    *bool      `json:"singles,omitempty"`
	Level      *float64   `json:"level,omitempty"`
	Address    *string    `json:"address,omitempty"`
	Phone      *string    `json:"phone,omitempty"`
}

// DecodeMatch reads a raw matches record, defaulting every field that is
// missing or has the wrong type.
func DecodeMatch(item map[string]types.AttributeValue) Match {
	players := utils.ExtractStringList(item, "players")
	singles := utils.ExtractBool(item, "singles")

	m := Match{
		MatchID:   utils.ExtractString(item, MatchKey),
		Location:  utils.ExtractString(item, "location"),
		Address:   utils.ExtractString(item, "address"),
		Sport:     utils.ExtractString(item, "sport"),
		Phone:     utils.ExtractString(item, "phone"),
		Players:   players,
		Singles:   singles,
		Booked:    utils.ExtractBool(item, "booked"),
		CreatedBy: utils.ExtractString(item, "createdBy"),
	}

	if m.Location == "" {
		m.Location = m.Address
	}
	if m.Location == "" {
		m.Location = UnknownLocation
	}
	if !IsValidSport(m.Sport) {
		m.Sport = DefaultSport
	}

	m.Level, _ = utils.ExtractNumber(item, "level")
	m.Price, _ = utils.ExtractNumber(item, "price")
	if d, ok := utils.ExtractInt(item, "duration"); ok && d > 0 {
		m.Duration = d
	}

	if n, ok := utils.ExtractInt(item, "maxPlayers"); ok && validCapacity(n) {
		m.MaxPlayers = n
	} else {
		m.MaxPlayers = capacityFor(singles)
	}

	if n, ok := utils.ExtractInt(item, "playersCount"); ok && n >= 0 {
		m.PlayersCount = n
	} else {
		m.PlayersCount = len(players)
	}

	if img := utils.ExtractString(item, "imageUrl"); img != "" {
		m.ImageURL = &img
	}
	if t, ok := utils.ExtractTime(item, "time"); ok {
		m.Time = &t
	}
	if t, ok := utils.ExtractTime(item, "createdAt"); ok {
		m.CreatedAt = t
	}

	return m
}

func validCapacity(n int) bool {
	return n >= 1 && n <= MaxCapacity
}

func capacityFor(singles bool) int {
	if singles {
		return SinglesCapacity
	}
	return DoublesCapacity
}

// Capacity is the number of roster slots, never more than MaxCapacity.
func (m Match) Capacity() int {
	if validCapacity(m.MaxPlayers) {
		return m.MaxPlayers
	}
	return capacityFor(m.Singles)
}

// Occupied prefers the stored counter and falls back to the list length.
func (m Match) Occupied() int {
	if m.PlayersCount > 0 {
		return m.PlayersCount
	}
	return len(m.Players)
}

func (m Match) IsFull() bool {
	return m.Occupied() >= m.Capacity()
}

func (m Match) HasPlayer(uid string) bool {
	for _, p := range m.Players {
		if p == uid {
			return true
		}
	}
	return false
}
