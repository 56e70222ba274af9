package chat

// Owner identifies the authenticated principal a session belongs to. The
// service never resolves identity itself; the edge layer hands it in.
type Owner struct {
	ID    string
	Email string
	Name  string
}

// Valid reports whether the owner carries the minimum identity needed to
// scope a session.
func (o Owner) Valid() bool {
	return o.ID != ""
}
