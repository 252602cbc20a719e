package matching

// Graph maps a skill to the skills that pair well with it. Lookups are one
// hop deep; the graph is never traversed further.
type Graph map[string][]string

// defaultGraph is shared read-only by every Matcher built without WithGraph.
var defaultGraph = Graph{ //nolint:gochecknoglobals // immutable lookup table
	"React":                  {"Node.js", "Backend Development", "UI/UX Design", "DevOps", "TypeScript"},
	"Node.js":                {"React", "Frontend Development", "Database Management", "AWS", "Docker"},
	"Python":                 {"Frontend Development", "DevOps", "Database Management", "React", "JavaScript"},
	"JavaScript":             {"Backend Development", "Python", "Database Management", "UI/UX Design"},
	"Frontend Development":   {"Backend Development", "UI/UX Design", "DevOps", "Database Management"},
	"Backend Development":    {"Frontend Development", "DevOps", "Database Management", "Cloud Computing"},
	"Full Stack Development": {"DevOps", "UI/UX Design", "Cloud Computing", "Product Management"},
	"AI/ML":                  {"Data Engineering", "Backend Development", "Python", "DevOps", "Cloud Computing"},
	"Machine Learning":       {"Data Engineering", "Backend Development", "Python", "DevOps", "Frontend Development"},
	"Cybersecurity":          {"DevOps", "Network Administration", "Backend Development", "Cloud Computing"},
	"Data Science":           {"Data Engineering", "Backend Development", "AI/ML", "Python"},
	"DevOps":                 {"Backend Development", "Frontend Development", "Cloud Computing", "Cybersecurity"},
	"UI/UX Design":           {"Frontend Development", "Product Management", "Full Stack Development"},
	"Database Management":    {"Backend Development", "DevOps", "Data Engineering"},
	"Cloud Computing":        {"DevOps", "Backend Development", "Cybersecurity"},
	"Docker":                 {"DevOps", "Backend Development", "Cloud Computing"},
	"AWS":                    {"DevOps", "Backend Development", "Cloud Computing"},
	"Django":                 {"Frontend Development", "DevOps", "Database Management"},
	"PostgreSQL":             {"Backend Development", "Data Engineering", "DevOps"},
	"MongoDB":                {"Backend Development", "Full Stack Development", "DevOps"},
	"TypeScript":             {"Frontend Development", "Backend Development", "Full Stack Development"},
	"Flutter":                {"Backend Development", "UI/UX Design", "API Development"},
	"iOS Development":        {"Backend Development", "UI/UX Design", "Android Development"},
	"Android Development":    {"Backend Development", "UI/UX Design", "iOS Development"},
	"Product Management":     {"UI/UX Design", "Frontend Development", "Backend Development"},
	"Team Leadership":        {"Product Management", "DevOps", "Full Stack Development"},
}

// DefaultGraph returns a copy of the built-in complementarity graph.
func DefaultGraph() Graph {
	return defaultGraph.Clone()
}

// Clone returns a deep copy of g.
func (g Graph) Clone() Graph {
	out := make(Graph, len(g))
	for skill, needs := range g {
		out[skill] = append([]string(nil), needs...)
	}
	return out
}

// Complements reports whether needed appears in the entry for skill.
func (g Graph) Complements(skill, needed string) bool {
	for _, s := range g[skill] {
		if s == needed {
			return true
		}
	}
	return false
}

// Skills returns every skill that has an entry, in no particular order.
func (g Graph) Skills() []string {
	out := make([]string, 0, len(g))
	for skill := range g {
		out = append(out, skill)
	}
	return out
}
