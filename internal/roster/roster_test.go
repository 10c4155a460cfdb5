// Tests for the roster package covering record decoding, availability
// groups, [Classifier.Classify] for every outcome, and [Classifier.Apply]
// over multi-cycle scenarios including the product mismatch policies.

package roster

import (
	"encoding/json"
	"reflect"
	"testing"
)

func friend(id string, a Availability) FriendRecord {
	return FriendRecord{ID: id, Availability: a, GameName: "Name" + id, GameTag: "EUW", Product: ProductLeague, Icon: "29"}
}

// ///////////////////////////////////////////////
// Decoding
// ///////////////////////////////////////////////

func TestFriendRecordDecode(t *testing.T) {
	tests := []struct {
		name string
		body string
		want FriendRecord
	}{
		{
			name: "numeric icon",
			body: `{"availability":"chat","gameName":"Ana","gameTag":"EU1","icon":4569,"puuid":"p-1","product":"league_of_legends","summonerId":12}`,
			want: FriendRecord{ID: "p-1", Availability: Chat, GameName: "Ana", GameTag: "EU1", Product: ProductLeague, Icon: "4569"},
		},
		{
			name: "string icon",
			body: `{"availability":"mobile","gameName":"Bo","gameTag":"NA","icon":"12","puuid":"p-2","product":"bacon"}`,
			want: FriendRecord{ID: "p-2", Availability: Mobile, GameName: "Bo", GameTag: "NA", Product: "bacon", Icon: "12"},
		},
		{
			name: "null icon and unknown availability",
			body: `{"availability":"spectating","gameName":"Cy","gameTag":"KR","icon":null,"puuid":"p-3","product":""}`,
			want: FriendRecord{ID: "p-3", Availability: "spectating", GameName: "Cy", GameTag: "KR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FriendRecord
			if err := json.Unmarshal([]byte(tt.body), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got != tt.want {
				t.Errorf("decoded %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIconRefDecodeError(t *testing.T) {
	var r IconRef
	if err := json.Unmarshal([]byte(`{"x":1}`), &r); err == nil {
		t.Error("expected error decoding object as icon")
	}
}

func TestIconRefValid(t *testing.T) {
	tests := []struct {
		ref  IconRef
		want bool
	}{
		{"", false},
		{"0", false},
		{"-1", false},
		{"29", true},
		{"custom-icon", true},
	}
	for _, tt := range tests {
		if got := tt.ref.Valid(); got != tt.want {
			t.Errorf("IconRef(%q).Valid() = %v, want %v", tt.ref, got, tt.want)
		}
	}
}

func TestRiotID(t *testing.T) {
	f := FriendRecord{GameName: "Ana", GameTag: "EU1"}
	if got := f.RiotID(); got != "Ana#EU1" {
		t.Errorf("RiotID() = %q, want %q", got, "Ana#EU1")
	}
}

// ///////////////////////////////////////////////
// Availability Groups
// ///////////////////////////////////////////////

func TestAvailabilityGroups(t *testing.T) {
	tests := []struct {
		a       Availability
		offline bool
		online  bool
	}{
		{Offline, true, false},
		{Mobile, true, false},
		{Chat, false, true},
		{DND, false, true},
		{Away, false, true},
		{"spectating", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		if got := tt.a.OfflineLike(); got != tt.offline {
			t.Errorf("%q.OfflineLike() = %v, want %v", tt.a, got, tt.offline)
		}
		if got := tt.a.OnlineLike(); got != tt.online {
			t.Errorf("%q.OnlineLike() = %v, want %v", tt.a, got, tt.online)
		}
	}
}

// ///////////////////////////////////////////////
// Classify
// ///////////////////////////////////////////////

func TestClassify(t *testing.T) {
	c := NewClassifier("", "")
	other := friend("a", Chat)
	other.Product = "bacon"

	tests := []struct {
		name string
		prev FriendRecord
		seen bool
		next FriendRecord
		want Decision
	}{
		{"first sighting", FriendRecord{}, false, friend("a", Chat), Decision{Outcome: FirstSighting, Record: true}},
		{"same availability", friend("a", Chat), true, friend("a", Chat), Decision{Outcome: Unchanged, Record: true}},
		{"offline to chat", friend("a", Offline), true, friend("a", Chat), Decision{Outcome: BecameAvailable, Record: true, Notify: true}},
		{"offline to dnd", friend("a", Offline), true, friend("a", DND), Decision{Outcome: BecameAvailable, Record: true, Notify: true}},
		{"mobile to away", friend("a", Mobile), true, friend("a", Away), Decision{Outcome: BecameAvailable, Record: true, Notify: true}},
		{"chat to dnd", friend("a", Chat), true, friend("a", DND), Decision{Outcome: Transition, Record: true}},
		{"away to offline", friend("a", Away), true, friend("a", Offline), Decision{Outcome: Transition, Record: true}},
		{"offline to mobile", friend("a", Offline), true, friend("a", Mobile), Decision{Outcome: Transition, Record: true}},
		{"unknown to chat", friend("a", "spectating"), true, friend("a", Chat), Decision{Outcome: Transition, Record: true}},
		{"offline to unknown", friend("a", Offline), true, friend("a", "spectating"), Decision{Outcome: Transition, Record: true}},
		{"other product", friend("a", Offline), true, other, Decision{Outcome: ProductMismatch, Control: StopCycle}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.prev, tt.seen, tt.next)
			if got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClassifyNameDriftUnchanged(t *testing.T) {
	c := NewClassifier(ProductLeague, AbortCycle)
	prev := friend("a", Chat)
	next := prev
	next.GameName = "Renamed"
	next.Product = "bacon"

	d := c.Classify(prev, true, next)
	if d.Notify || d.Outcome != Unchanged || !d.Record {
		t.Errorf("Classify() = %+v, want unchanged and recorded", d)
	}
}

func TestClassifySkipFriendPolicy(t *testing.T) {
	c := NewClassifier(ProductLeague, SkipFriend)
	next := friend("a", Chat)
	next.Product = "bacon"

	d := c.Classify(friend("a", Offline), true, next)
	want := Decision{Outcome: ProductMismatch, Control: Continue}
	if d != want {
		t.Errorf("Classify() = %+v, want %+v", d, want)
	}
}

func TestClassifyCustomProduct(t *testing.T) {
	c := NewClassifier("lor", AbortCycle)
	next := friend("a", Chat)
	next.Product = "lor"
	if d := c.Classify(friend("a", Offline), true, next); !d.Notify {
		t.Errorf("Classify() = %+v, want notify for tracked product", d)
	}
}

func TestParseMismatchPolicy(t *testing.T) {
	for _, s := range []string{"abort_cycle", "skip_friend"} {
		p, err := ParseMismatchPolicy(s)
		if err != nil || string(p) != s {
			t.Errorf("ParseMismatchPolicy(%q) = %q, %v", s, p, err)
		}
	}
	if _, err := ParseMismatchPolicy("continue"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestOutcomeString(t *testing.T) {
	if got := BecameAvailable.String(); got != "became_available" {
		t.Errorf("String() = %q", got)
	}
	if got := Outcome(42).String(); got != "outcome(42)" {
		t.Errorf("String() = %q", got)
	}
}

// ///////////////////////////////////////////////
// Apply
// ///////////////////////////////////////////////

func TestApplyBaselineThenOnline(t *testing.T) {
	c := NewClassifier("", "")
	store := NewStore()
	var announced []string
	announce := func(f FriendRecord) { announced = append(announced, f.RiotID()) }

	res := c.Apply(store, []FriendRecord{{ID: "a", Availability: Offline}}, announce)
	if len(announced) != 0 || len(res.Announced) != 0 {
		t.Fatalf("first cycle announced %v", announced)
	}
	if rec, ok := store.Get("a"); !ok || rec.Availability != Offline {
		t.Fatalf("store after first cycle = %+v, %v", rec, ok)
	}

	next := FriendRecord{ID: "a", Availability: Chat, Product: ProductLeague, GameName: "Ana", GameTag: "EU1"}
	c.Apply(store, []FriendRecord{next}, announce)
	if !reflect.DeepEqual(announced, []string{"Ana#EU1"}) {
		t.Fatalf("announced = %v, want [Ana#EU1]", announced)
	}
	if rec, _ := store.Get("a"); rec.Availability != Chat {
		t.Errorf("store availability = %q, want chat", rec.Availability)
	}
}

func TestApplyIdempotentOnUnchangedRoster(t *testing.T) {
	c := NewClassifier("", "")
	store := NewStore()
	snap := []FriendRecord{friend("a", Offline), friend("b", Chat)}
	c.Apply(store, snap, nil)

	online := []FriendRecord{friend("a", Chat), friend("b", Chat)}
	count := 0
	for n := 0; n < 5; n++ {
		count += len(c.Apply(store, online, nil).Announced)
	}
	if count != 1 {
		t.Errorf("announced %d times over repeated cycles, want 1", count)
	}
	if store.Len() != 2 {
		t.Errorf("store.Len() = %d, want 2", store.Len())
	}
}

func TestApplyAbortCycleOnMismatch(t *testing.T) {
	c := NewClassifier(ProductLeague, AbortCycle)
	store := NewStore()
	c.Apply(store, []FriendRecord{friend("a", Offline), friend("b", Offline), friend("c", Offline)}, nil)

	mismatch := friend("b", Chat)
	mismatch.Product = "bacon"
	res := c.Apply(store, []FriendRecord{friend("a", Chat), mismatch, friend("c", Chat)}, nil)

	if !res.Stopped || res.StoppedAt != "b" {
		t.Fatalf("Stopped=%v StoppedAt=%q, want stopped at b", res.Stopped, res.StoppedAt)
	}
	if res.Classified != 2 {
		t.Errorf("Classified = %d, want 2", res.Classified)
	}
	if len(res.Announced) != 1 || res.Announced[0].ID != "a" {
		t.Errorf("Announced = %+v, want only a", res.Announced)
	}
	if rec, _ := store.Get("b"); rec.Availability != Offline {
		t.Errorf("mismatched friend stored as %q, want offline", rec.Availability)
	}
	if rec, _ := store.Get("c"); rec.Availability != Offline {
		t.Errorf("friend after abort stored as %q, want offline", rec.Availability)
	}
}

func TestApplySkipFriendOnMismatch(t *testing.T) {
	c := NewClassifier(ProductLeague, SkipFriend)
	store := NewStore()
	c.Apply(store, []FriendRecord{friend("a", Offline), friend("b", Offline)}, nil)

	mismatch := friend("a", Chat)
	mismatch.Product = "bacon"
	res := c.Apply(store, []FriendRecord{mismatch, friend("b", Away)}, nil)

	if res.Stopped {
		t.Fatal("cycle stopped under skip_friend")
	}
	if len(res.Announced) != 1 || res.Announced[0].ID != "b" {
		t.Errorf("Announced = %+v, want only b", res.Announced)
	}
}

func TestApplyNewFriendMidRoster(t *testing.T) {
	c := NewClassifier("", "")
	store := NewStore()
	c.Apply(store, []FriendRecord{friend("a", Offline)}, nil)

	res := c.Apply(store, []FriendRecord{friend("z", Chat), friend("a", Chat)}, nil)
	if len(res.Announced) != 1 || res.Announced[0].ID != "a" {
		t.Errorf("Announced = %+v, want only a", res.Announced)
	}
	if store.Len() != 2 {
		t.Errorf("store.Len() = %d, want 2", store.Len())
	}
}
