package models

// Slot is one position of a roster. An open slot has no PlayerID; at most
// one open slot carries the join affordance.
type Slot struct {
	Index          int            `json:"index"`
	PlayerID       string         `json:"playerId,omitempty"`
	Profile        *PlayerProfile `json:"profile,omitempty"`
	Open           bool           `json:"open"`
	JoinAffordance bool           `json:"joinAffordance"`
}

type Roster struct {
	MatchID  string `json:"matchId"`
	Capacity int    `json:"capacity"`
	Occupied int    `json:"occupied"`
	Full     bool   `json:"full"`
	Joined   bool   `json:"joined"`
	CanJoin  bool   `json:"canJoin"`
	Slots    []Slot `json:"slots"`
}

// BuildRoster lays out Capacity slots for m as seen by currentUserID.
// Players beyond capacity are not shown.
func BuildRoster(m Match, currentUserID string) Roster {
	capacity := m.Capacity()
	joined := currentUserID != "" && m.HasPlayer(currentUserID)
	full := m.IsFull()

	profiles := make(map[string]PlayerProfile, len(m.PlayerProfiles))
	for _, p := range m.PlayerProfiles {
		profiles[p.ID] = p
	}

	r := Roster{
		MatchID:  m.MatchID,
		Capacity: capacity,
		Occupied: m.Occupied(),
		Full:     full,
		Joined:   joined,
		CanJoin:  !full && !joined && currentUserID != "",
		Slots:    make([]Slot, capacity),
	}

	affordanceSet := false
	for i := 0; i < capacity; i++ {
		slot := Slot{Index: i}
		if i < len(m.Players) {
			slot.PlayerID = m.Players[i]
			if p, ok := profiles[slot.PlayerID]; ok {
				slot.Profile = &p
			}
		} else {
			slot.Open = true
			if r.CanJoin && !affordanceSet {
				slot.JoinAffordance = true
				affordanceSet = true
			}
		}
		r.Slots[i] = slot
	}

	return r
}
