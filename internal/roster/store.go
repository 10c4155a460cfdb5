package roster

// ///////////////////////////////////////////////
// Store
// ///////////////////////////////////////////////

// Store maps friend IDs to their last-observed record. It is not safe for
// concurrent use: a single poll loop owns it and is the only writer.
type Store struct {
	friends map[string]FriendRecord
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{friends: make(map[string]FriendRecord)}
}

// Get returns the record stored for id and whether one exists.
func (s *Store) Get(id string) (FriendRecord, bool) {
	rec, ok := s.friends[id]
	return rec, ok
}

// Put stores rec under rec.ID, replacing any previous record.
func (s *Store) Put(rec FriendRecord) {
	s.friends[rec.ID] = rec
}

// Len returns the number of tracked friends.
func (s *Store) Len() int {
	return len(s.friends)
}
