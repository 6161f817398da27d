package matcher

// MaxGroups is the number of groups a Match keeps: the whole match plus the
// nine groups templates can refer to.
const MaxGroups = 10

// Match holds the groups of the last successful Pattern.Match. It is scratch
// space owned by one caller at a time; reuse it across calls to avoid
// allocations.
type Match struct {
	groups [MaxGroups]string
	count  int
}

// Count returns the number of valid groups, including group 0. It is 0 after
// a failed match.
func (m *Match) Count() int {
	return m.count
}

// Get returns group i, or "" when i is beyond the valid groups or the group
// did not participate in the match.
func (m *Match) Get(i int) string {
	if i < 0 || i >= m.count {
		return ""
	}
	return m.groups[i]
}

// Reset invalidates every group.
func (m *Match) Reset() {
	for i := 0; i < m.count; i++ {
		m.groups[i] = ""
	}
	m.count = 0
}
