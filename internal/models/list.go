package models

// User is the identity that owns a list.
type User struct {
	ID   int
	Name string
}

// Entry is one normalized list entry.
//
// Pointer fields are optional: nil means the service did not report the value,
// which is distinct from a reported zero.
type Entry struct {
	ID         int      // service-local media id
	CrossRefID *int     // the same media's id on the other service; nil means unmatchable
	Title      string   // display title, never used for matching
	Status     Status   // drawn from the owning service's vocabulary
	Progress   *int     // episodes watched or chapters read
	Score      *float64 // user score on a 0-10 scale
	Total      *int     // episode or chapter count of the media itself
	Format     string   // TV, MOVIE, MANGA, ONE_SHOT, ...
	Repeating  bool     // MAL is_rewatching / is_rereading
}

// ProgressOrZero returns the progress count, treating an absent value as zero.
func (e Entry) ProgressOrZero() int {
	if e.Progress == nil {
		return 0
	}
	return *e.Progress
}

// ScoreOrZero returns the score, treating an absent value as zero.
func (e Entry) ScoreOrZero() float64 {
	if e.Score == nil {
		return 0
	}
	return *e.Score
}

// ListModel is one service's list partitioned by status.
//
// Partitions are kept in first-observed order so iteration is deterministic for a given response.
// A status that was observed with no entries has an empty partition; a status that was never
// observed has none, and [ListModel.Partition] reports it as absent.
type ListModel struct {
	Service ServiceName
	Kind    MediaKind
	User    User

	order      []Status
	partitions map[Status][]Entry
	index      map[int]Entry
}

// NewListModel creates an empty model for one service and media kind.
func NewListModel(service ServiceName, kind MediaKind) *ListModel {
	return &ListModel{
		Service:    service,
		Kind:       kind,
		partitions: make(map[Status][]Entry),
		index:      make(map[int]Entry),
	}
}

// Observe records that a status partition exists, creating it empty if needed.
func (m *ListModel) Observe(status Status) {
	if _, ok := m.partitions[status]; ok {
		return
	}
	m.order = append(m.order, status)
	m.partitions[status] = []Entry{}
}

// Add appends an entry to the partition named by its status.
//
// The first entry added for a local id wins the [ListModel.Lookup] index.
func (m *ListModel) Add(e Entry) {
	m.Observe(e.Status)
	m.partitions[e.Status] = append(m.partitions[e.Status], e)
	if _, exists := m.index[e.ID]; !exists {
		m.index[e.ID] = e
	}
}

// Partition returns the entries for a status and whether that status was observed.
func (m *ListModel) Partition(status Status) ([]Entry, bool) {
	entries, ok := m.partitions[status]
	return entries, ok
}

// Statuses returns observed statuses in partition order.
func (m *ListModel) Statuses() []Status {
	out := make([]Status, len(m.order))
	copy(out, m.order)
	return out
}

// Entries returns every entry in partition order, then entry order.
func (m *ListModel) Entries() []Entry {
	out := make([]Entry, 0, len(m.index))
	for _, status := range m.order {
		out = append(out, m.partitions[status]...)
	}
	return out
}

// Lookup finds an entry by its service-local id.
func (m *ListModel) Lookup(id int) (Entry, bool) {
	e, ok := m.index[id]
	return e, ok
}

// Len returns the total entry count across partitions.
func (m *ListModel) Len() int {
	n := 0
	for _, entries := range m.partitions {
		n += len(entries)
	}
	return n
}

// Counts returns the entry count for every observed status.
func (m *ListModel) Counts() map[Status]int {
	counts := make(map[Status]int, len(m.partitions))
	for status, entries := range m.partitions {
		counts[status] = len(entries)
	}
	return counts
}

// Ptr returns a pointer to v. Used for optional entry fields.
func Ptr[T any](v T) *T {
	return &v
}
