package model

import "sort"

// Resource describes a listable backend collection reachable from the console.
type Resource struct {
	Name    string   // screen and CLI name, e.g. "departments"
	Title   string   // human-readable heading
	Noun    string   // one record, e.g. "Department"
	Path    string   // REST collection path, e.g. "/departments"
	Role    Role     // role the screen is scoped to
	Columns []string // fields shown in tables; empty means all fields
}

// Screen returns the role-scoped screen name of the resource list.
func (r Resource) Screen() string {
	return string(r.Role) + "/" + r.Name
}

var resources = []Resource{
	{Name: "years", Title: "Academic Years", Noun: "Academic year", Path: "/years", Role: RoleAdmin, Columns: []string{"id", "year"}},
	{Name: "sessions", Title: "Sessions", Noun: "Session", Path: "/sessions", Role: RoleAdmin, Columns: []string{"id", "session", "year"}},
	{Name: "departments", Title: "Departments", Noun: "Department", Path: "/departments", Role: RoleAdmin, Columns: []string{"id", "name", "code"}},
	{Name: "programs", Title: "Programs", Noun: "Program", Path: "/programs", Role: RoleAdmin, Columns: []string{"id", "name", "department"}},
	{Name: "companies", Title: "Companies", Noun: "Company", Path: "/companies", Role: RoleAdmin, Columns: []string{"id", "name", "website"}},
	{Name: "drives", Title: "Placement Drives", Noun: "Drive", Path: "/drives", Role: RoleAdmin, Columns: []string{"id", "company", "date", "status"}},
	{Name: "notifications", Title: "Notifications", Noun: "Notification", Path: "/notifications", Role: RoleAdmin, Columns: []string{"id", "title", "created_at"}},
	{Name: "internships", Title: "Internships", Noun: "Internship", Path: "/internships", Role: RoleStudent, Columns: []string{"id", "company", "start_date", "end_date"}},
}

// Lookup returns the resource registered under name.
func Lookup(name string) (Resource, bool) {
	for _, r := range resources {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}

// ForRole returns the resources a role may open, sorted by name.
func ForRole(role Role) []Resource {
	var out []Resource
	for _, r := range resources {
		if r.Role == role {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resources returns every registered resource.
func Resources() []Resource {
	out := make([]Resource, len(resources))
	copy(out, resources)
	return out
}
