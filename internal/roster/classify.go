package roster

import "fmt"

// ProductLeague is the product value the chat service reports for friends
// signed in through the League client.
const ProductLeague = "league_of_legends"

// ///////////////////////////////////////////////
// Mismatch Policy
// ///////////////////////////////////////////////

// MismatchPolicy decides what happens to the rest of a cycle when a friend's
// availability changed on a product other than the tracked one.
type MismatchPolicy string

const (
	// AbortCycle stops classifying the remaining friends of the current
	// cycle. This is the historical behavior and the default.
	AbortCycle MismatchPolicy = "abort_cycle"
	// SkipFriend ignores the mismatched friend and keeps going.
	SkipFriend MismatchPolicy = "skip_friend"
)

// ParseMismatchPolicy validates s as a [MismatchPolicy].
func ParseMismatchPolicy(s string) (MismatchPolicy, error) {
	switch p := MismatchPolicy(s); p {
	case AbortCycle, SkipFriend:
		return p, nil
	}
	return "", fmt.Errorf("invalid mismatch policy %q: must be %s or %s", s, AbortCycle, SkipFriend)
}

// ///////////////////////////////////////////////
// Decision
// ///////////////////////////////////////////////

// Outcome names the kind of observation made for one friend.
type Outcome int

const (
	// FirstSighting means the friend was not in the store yet.
	FirstSighting Outcome = iota
	// Unchanged means availability is the same as last observed.
	Unchanged
	// Transition means availability changed but is not announced.
	Transition
	// BecameAvailable means the friend came online in the tracked product.
	BecameAvailable
	// ProductMismatch means availability changed on another product.
	ProductMismatch
)

// String returns the outcome name used in log output.
func (o Outcome) String() string {
	switch o {
	case FirstSighting:
		return "first_sighting"
	case Unchanged:
		return "unchanged"
	case Transition:
		return "transition"
	case BecameAvailable:
		return "became_available"
	case ProductMismatch:
		return "product_mismatch"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Control tells the cycle driver whether to keep classifying friends.
type Control int

const (
	// Continue moves on to the next friend.
	Continue Control = iota
	// StopCycle abandons the remaining friends of this cycle.
	StopCycle
)

// Decision is the result of classifying one friend.
type Decision struct {
	Outcome Outcome
	// Record is true when the new record must replace the stored one.
	Record bool
	// Notify is true when the friend should be announced.
	Notify bool
	// Control is [StopCycle] only for a product mismatch under [AbortCycle].
	Control Control
}

// ///////////////////////////////////////////////
// Classifier
// ///////////////////////////////////////////////

// Classifier holds the settings that shape classification. The zero value is
// not usable; build one with [NewClassifier].
type Classifier struct {
	product string
	policy  MismatchPolicy
}

// NewClassifier returns a classifier tracking product. An empty product means
// [ProductLeague]; an empty policy means [AbortCycle].
func NewClassifier(product string, policy MismatchPolicy) Classifier {
	if product == "" {
		product = ProductLeague
	}
	if policy == "" {
		policy = AbortCycle
	}
	return Classifier{product: product, policy: policy}
}

// Policy returns the configured mismatch policy.
func (c Classifier) Policy() MismatchPolicy { return c.policy }

// Classify decides what a newly observed record means given the previously
// stored one. seen is false when nothing was stored for next.ID. Classify has
// no side effects; the caller applies the decision to its [Store].
func (c Classifier) Classify(prev FriendRecord, seen bool, next FriendRecord) Decision {
	if !seen {
		return Decision{Outcome: FirstSighting, Record: true}
	}
	if prev.Availability == next.Availability {
		return Decision{Outcome: Unchanged, Record: true}
	}
	if next.Product != c.product {
		d := Decision{Outcome: ProductMismatch}
		if c.policy == AbortCycle {
			d.Control = StopCycle
		}
		return d
	}
	if prev.Availability.OfflineLike() && next.Availability.OnlineLike() {
		return Decision{Outcome: BecameAvailable, Record: true, Notify: true}
	}
	return Decision{Outcome: Transition, Record: true}
}

// ///////////////////////////////////////////////
// Cycle
// ///////////////////////////////////////////////

// CycleResult summarizes one pass over a roster snapshot.
type CycleResult struct {
	// Classified is how many friends were classified before the cycle ended.
	Classified int
	// Announced lists the friends whose decision asked for a notification,
	// in roster order.
	Announced []FriendRecord
	// Stopped is true when a [StopCycle] decision ended the pass early.
	Stopped bool
	// StoppedAt is the ID of the friend that ended the pass, if any.
	StoppedAt string
}

// Apply classifies each record of snapshot in order against store, updates
// store as decided, and calls announce for every notify-worthy friend before
// moving to the next one. announce may be nil.
func (c Classifier) Apply(store *Store, snapshot []FriendRecord, announce func(FriendRecord)) CycleResult {
	var res CycleResult
	for _, next := range snapshot {
		prev, seen := store.Get(next.ID)
		d := c.Classify(prev, seen, next)
		res.Classified++
		if d.Record {
			store.Put(next)
		}
		if d.Notify {
			res.Announced = append(res.Announced, next)
			if announce != nil {
				announce(next)
			}
		}
		if d.Control == StopCycle {
			res.Stopped = true
			res.StoppedAt = next.ID
			break
		}
	}
	return res
}
