package monitor

import (
	"kuma-gateway/internals/kuma"
	"net/http"
	"path"
	"sort"
	"strconv"
)

func (f Filters) Empty() bool {
	return f.Group == "" && f.Tag == "" && f.NamePattern == "" &&
		f.Type == "" && !f.IncludeGroups
}

// MergeQuery overlays query parameters on top of body filters. Query
// params win.
func (f Filters) MergeQuery(r *http.Request) Filters {
	q := r.URL.Query()
	if v := q.Get("group"); v != "" {
		f.Group = v
	}
	if v := q.Get("tag"); v != "" {
		f.Tag = v
	}
	if v := q.Get("name_pattern"); v != "" {
		f.NamePattern = v
	}
	if v := q.Get("type"); v != "" {
		f.Type = v
	}
	if q.Get("include_groups") == "true" {
		f.IncludeGroups = true
	}
	return f
}

// Select runs the linear scan over a monitor snapshot. Group-type
// monitors are skipped unless asked for. Results come back ordered by
// id, snapshot maps have no stable order of their own.
func Select(monitors map[string]kuma.Monitor, f Filters) []kuma.Monitor {
	out := make([]kuma.Monitor, 0, len(monitors))

	for _, m := range monitors {
		if m.Type() == "group" && !f.IncludeGroups {
			continue
		}
		if f.Group != "" && !inGroup(monitors, m, f.Group) {
			continue
		}
		if f.Tag != "" && !hasTag(m, f.Tag) {
			continue
		}
		if f.NamePattern != "" && !matchName(f.NamePattern, m.Name()) {
			continue
		}
		if f.Type != "" && m.Type() != f.Type {
			continue
		}
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// inGroup resolves the monitor's parent against the snapshot and
// compares the group name. Parentless monitors never match a group
// filter.
func inGroup(monitors map[string]kuma.Monitor, m kuma.Monitor, group string) bool {
	parentID, ok := m.Parent()
	if !ok {
		return false
	}
	parent, ok := monitors[strconv.FormatInt(parentID, 10)]
	return ok && parent.Name() == group
}

func hasTag(m kuma.Monitor, tag string) bool {
	for _, name := range m.TagNames() {
		if name == tag {
			return true
		}
	}
	return false
}

// matchName is fnmatch-style globbing on the monitor name. A pattern
// that does not parse matches nothing.
func matchName(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}
