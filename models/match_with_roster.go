package models

// MatchWithRoster is a match as the client renders it: the stored fields,
// the resolved profiles and the slot layout for the requesting user.
type MatchWithRoster struct {
	Match
	Roster Roster `json:"roster"`
}

func WithRosters(matches []Match, currentUserID string) []MatchWithRoster {
	out := make([]MatchWithRoster, len(matches))
	for i, m := range matches {
		out[i] = MatchWithRoster{Match: m, Roster: BuildRoster(m, currentUserID)}
	}
	return out
}
