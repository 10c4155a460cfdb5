// Package roster models the friend list reported by the local League client:
// the per-friend presence record, the in-memory store of last-observed
// records, and the classifier that decides which presence changes are worth
// a notification.
package roster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ///////////////////////////////////////////////
// Availability
// ///////////////////////////////////////////////

// Availability is the presence state string reported by the chat service.
// Values outside the constants below are carried through unchanged.
type Availability string

// Known availability values.
const (
	Offline Availability = "offline"
	Mobile  Availability = "mobile"
	Away    Availability = "away"
	DND     Availability = "dnd"
	Chat    Availability = "chat"
)

// OfflineLike reports whether a is a state from which coming online is
// announced.
func (a Availability) OfflineLike() bool {
	return a == Offline || a == Mobile
}

// OnlineLike reports whether a means the friend is reachable in the client.
func (a Availability) OnlineLike() bool {
	switch a {
	case Chat, DND, Away:
		return true
	}
	return false
}

// ///////////////////////////////////////////////
// IconRef
// ///////////////////////////////////////////////

// IconRef is the profile icon reference attached to a friend. The chat
// endpoint sends it as a JSON number but older builds have sent strings, so
// both are accepted and normalized to their decimal text.
type IconRef string

// UnmarshalJSON accepts a JSON number, a JSON string, or null.
func (r *IconRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("icon: %w", err)
		}
		*r = IconRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("icon: %w", err)
	}
	*r = IconRef(n.String())
	return nil
}

// Valid reports whether r can be turned into an avatar URL. Empty and
// non-positive numeric references have no image.
func (r IconRef) Valid() bool {
	if r == "" {
		return false
	}
	if n, err := strconv.ParseInt(string(r), 10, 64); err == nil {
		return n > 0
	}
	return true
}

// ///////////////////////////////////////////////
// FriendRecord
// ///////////////////////////////////////////////

// FriendRecord is one entry of a roster snapshot. ID is the only field used
// for identity across polls.
type FriendRecord struct {
	// ID is the friend's puuid.
	ID string `json:"puuid"`
	// Availability is the current presence state.
	Availability Availability `json:"availability"`
	// GameName is the first half of the Riot ID.
	GameName string `json:"gameName"`
	// GameTag is the second half of the Riot ID, without the '#'.
	GameTag string `json:"gameTag"`
	// Product identifies the client surface reporting this presence.
	Product string `json:"product"`
	// Icon references the friend's profile icon.
	Icon IconRef `json:"icon"`
}

// RiotID returns "name#tag".
func (f FriendRecord) RiotID() string {
	return f.GameName + "#" + f.GameTag
}
