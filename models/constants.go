package models

// Sports a match or a favourite-sport field may carry
const (
	SportTennis     = "Tennis"
	SportPadel      = "Padel"
	SportPickleball = "Pickleball"

	// DefaultSport replaces missing or unknown sport values on read
	DefaultSport = SportPadel
)

// Sports lists the accepted sport values in display order.
var Sports = []string{SportTennis, SportPadel, SportPickleball}

// Levels lists the skill levels a user may pick in settings.
var Levels = []string{"1", "1.5", "2", "2.5", "3", "3.5", "4", "4.5", "5"}

const (
	SinglesCapacity = 2
	DoublesCapacity = 4

	// MaxCapacity bounds maxPlayers; a match is singles or doubles
	MaxCapacity = DoublesCapacity

	// PlayerBatchSize is the maximum number of keys per profile lookup
	PlayerBatchSize = 10

	// DefaultMatchDuration is in minutes
	DefaultMatchDuration = 60

	// UnknownLocation is shown when a match has neither location nor address
	UnknownLocation = "—"
)

// Default DynamoDB table names; both are configurable.
const (
	UsersTable   = "Users"
	MatchesTable = "Matches"

	UserKey  = "uid"
	MatchKey = "matchId"
)

// IsValidSport reports whether s is one of Sports.
func IsValidSport(s string) bool {
	for _, sport := range Sports {
		if s == sport {
			return true
		}
	}
	return false
}

// IsValidLevel reports whether s is one of Levels.
func IsValidLevel(s string) bool {
	for _, level := range Levels {
		if s == level {
			return true
		}
	}
	return false
}
