package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestRole_IsValid(t *testing.T) {
	for _, tc := range []struct {
		role Role
		want bool
	}{
		{RoleAdmin, true},
		{RoleStudent, true},
		{Role(""), false},
		{Role("recruiter"), false},
	} {
		if got := tc.role.IsValid(); got != tc.want {
			t.Errorf("Role(%q).IsValid() = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestRole_HomeScreen(t *testing.T) {
	for _, tc := range []struct {
		role Role
		want string
	}{
		{RoleAdmin, "admin/dashboard"},
		{RoleStudent, "student/dashboard"},
		{Role("bogus"), LoginScreen},
	} {
		if got := tc.role.HomeScreen(); got != tc.want {
			t.Errorf("Role(%q).HomeScreen() = %q, want %q", tc.role, got, tc.want)
		}
	}
}

func TestUserID_UnmarshalJSON(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want UserID
	}{
		{`"u-17"`, "u-17"},
		{`17`, "17"},
		{`null`, ""},
		{`12345678901234567890`, "12345678901234567890"},
	} {
		var id UserID
		if err := json.Unmarshal([]byte(tc.in), &id); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tc.in, err)
		}
		if id != tc.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tc.in, id, tc.want)
		}
	}

	var id UserID
	if err := json.Unmarshal([]byte(`{}`), &id); err == nil {
		t.Error("Unmarshal({}) succeeded, want error")
	}
}

func TestSession_Validate(t *testing.T) {
	for _, tc := range []struct {
		name    string
		sess    Session
		wantErr bool
	}{
		{"valid", Session{Identity: "1", Role: RoleAdmin}, false},
		{"missing identity", Session{Role: RoleAdmin}, true},
		{"missing role", Session{Identity: "1"}, true},
		{"unknown role", Session{Identity: "1", Role: "guest"}, true},
	} {
		err := tc.sess.Validate()
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidSession) {
			t.Errorf("%s: error %v does not wrap ErrInvalidSession", tc.name, err)
		}
	}
}

func TestSession_Equal(t *testing.T) {
	at := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	a := &Session{Identity: "1", Role: RoleAdmin, AuthenticatedAt: at}
	b := &Session{Identity: "1", Role: RoleAdmin, AuthenticatedAt: at.In(time.FixedZone("IST", 19800))}
	if !a.Equal(b) {
		t.Error("sessions at the same instant should be equal")
	}
	b.Flags.Frozen = true
	if a.Equal(b) {
		t.Error("sessions with different flags should differ")
	}
	var nilSess *Session
	if !nilSess.Equal(nil) || a.Equal(nil) {
		t.Error("nil handling is wrong")
	}
}

func TestRecord_ID(t *testing.T) {
	for _, tc := range []struct {
		rec  Record
		want string
	}{
		{Record{"id": "7"}, "7"},
		{Record{"id": json.Number("42")}, "42"},
		{Record{"id": float64(3)}, "3"},
		{Record{"_id": "abc"}, "abc"},
		{Record{"id": nil, "_id": "abc"}, "abc"},
		{Record{"name": "x"}, ""},
	} {
		if got := tc.rec.ID(); got != tc.want {
			t.Errorf("%v.ID() = %q, want %q", tc.rec, got, tc.want)
		}
	}
}

func TestRecord_String(t *testing.T) {
	rec := Record{
		"name":   "ECE",
		"intake": float64(60),
		"active": true,
		"meta":   map[string]any{"floor": float64(2)},
		"head":   nil,
	}
	for _, tc := range []struct {
		field, want string
	}{
		{"name", "ECE"},
		{"intake", "60"},
		{"active", "true"},
		{"meta", `{"floor":2}`},
		{"head", ""},
		{"missing", ""},
	} {
		if got := rec.String(tc.field); got != tc.want {
			t.Errorf("String(%q) = %q, want %q", tc.field, got, tc.want)
		}
	}
}

func TestParsePageSize(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    PageSize
		wantErr bool
	}{
		{"10", 10, false},
		{" 25 ", 25, false},
		{"all", Unbounded, false},
		{"ALL", Unbounded, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"ten", 0, true},
	} {
		got, err := ParsePageSize(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParsePageSize(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePageSize(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestPageSize_String(t *testing.T) {
	for _, tc := range []struct {
		size PageSize
		want string
	}{
		{0, "10"},
		{25, "25"},
		{Unbounded, "all"},
	} {
		if got := tc.size.String(); got != tc.want {
			t.Errorf("PageSize(%d).String() = %q, want %q", tc.size, got, tc.want)
		}
	}
}

func TestListParams_Offset(t *testing.T) {
	for _, tc := range []struct {
		p    ListParams
		want int
	}{
		{ListParams{Page: 1, PageSize: 10}, 0},
		{ListParams{Page: 3, PageSize: 10}, 20},
		{ListParams{Page: 2}, 10},
		{ListParams{Page: 0, PageSize: 10}, 0},
		{ListParams{Page: 4, PageSize: Unbounded}, 0},
	} {
		if got := tc.p.Offset(); got != tc.want {
			t.Errorf("%+v.Offset() = %d, want %d", tc.p, got, tc.want)
		}
	}
}

func TestTotalPages(t *testing.T) {
	for _, tc := range []struct {
		total int
		size  PageSize
		want  int
	}{
		{0, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{25, Unbounded, 1},
		{25, 0, 3},
	} {
		if got := TotalPages(tc.total, tc.size); got != tc.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.size, got, tc.want)
		}
	}
}

func TestLookupAndForRole(t *testing.T) {
	res, ok := Lookup("departments")
	if !ok || res.Role != RoleAdmin || res.Screen() != "admin/departments" || res.Noun != "Department" {
		t.Fatalf("Lookup(departments) = %+v, %v", res, ok)
	}
	if _, ok := Lookup("widgets"); ok {
		t.Error("Lookup(widgets) succeeded")
	}

	student := ForRole(RoleStudent)
	if len(student) != 1 || student[0].Name != "internships" {
		t.Errorf("ForRole(student) = %+v", student)
	}
	admin := ForRole(RoleAdmin)
	for i := 1; i < len(admin); i++ {
		if admin[i-1].Name > admin[i].Name {
			t.Errorf("ForRole(admin) not sorted: %s before %s", admin[i-1].Name, admin[i].Name)
		}
	}
	if len(admin)+len(student) != len(Resources()) {
		t.Error("every resource should belong to exactly one role")
	}
}
