package harvest

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/loosehose/sunvoy/internal/types"
)

func TestMerge(t *testing.T) {
	directory := []types.User{{ID: "1", FirstName: "A", LastName: "B", Email: "a@x.com"}}

	tests := []struct {
		name    string
		users   []types.User
		current *types.Profile
		want    []types.Record
	}{
		{
			name:    "current user not in directory is appended",
			users:   directory,
			current: &types.Profile{ID: "u2", FirstName: "C", LastName: "D", Email: "c@x.com"},
			want: []types.Record{
				{ID: "1", Name: "A B", Email: "a@x.com"},
				{ID: "u2", Name: "C D", Email: "c@x.com", IsCurrent: true},
			},
		},
		{
			name:    "current user in directory is flagged in place",
			users:   directory,
			current: &types.Profile{ID: "u2", FirstName: "C", LastName: "D", Email: "a@x.com"},
			want: []types.Record{
				{ID: "1", Name: "A B", Email: "a@x.com", IsCurrent: true},
			},
		},
		{
			name:  "no profile",
			users: directory,
			want: []types.Record{
				{ID: "1", Name: "A B", Email: "a@x.com"},
			},
		},
		{
			name:    "placeholder profile",
			current: &types.Profile{ID: "unknown", FirstName: "John", LastName: "Doe", Email: "demo@example.org"},
			want: []types.Record{
				{ID: "unknown", Name: "John Doe", Email: "demo@example.org", IsCurrent: true},
			},
		},
		{
			name:  "empty directory and no profile",
			users: nil,
			want:  []types.Record{},
		},
		{
			name: "duplicate emails flag only the first",
			users: []types.User{
				{ID: "1", FirstName: "A", LastName: "B", Email: "a@x.com"},
				{ID: "2", FirstName: "A", LastName: "B", Email: "a@x.com"},
			},
			current: &types.Profile{Email: "a@x.com"},
			want: []types.Record{
				{ID: "1", Name: "A B", Email: "a@x.com", IsCurrent: true},
				{ID: "2", Name: "A B", Email: "a@x.com"},
			},
		},
		{
			name:    "email match is exact",
			users:   directory,
			current: &types.Profile{ID: "u2", FirstName: "A", LastName: "B", Email: "A@X.COM"},
			want: []types.Record{
				{ID: "1", Name: "A B", Email: "a@x.com"},
				{ID: "u2", Name: "A B", Email: "A@X.COM", IsCurrent: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.users, tt.current)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeLength(t *testing.T) {
	users := []types.User{
		{ID: "1", Email: "a@x.com"},
		{ID: "2", Email: "b@x.com"},
		{ID: "3", Email: "c@x.com"},
	}

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		if got := len(Merge(users, &types.Profile{Email: email})); got != len(users) {
			t.Errorf("matching %s: got %d records, want %d", email, got, len(users))
		}
	}
	if got := len(Merge(users, &types.Profile{Email: "z@x.com"})); got != len(users)+1 {
		t.Errorf("non-matching: got %d records, want %d", got, len(users)+1)
	}
}

func TestMergeAtMostOneCurrent(t *testing.T) {
	users := []types.User{{Email: "a@x.com"}, {Email: "a@x.com"}, {Email: "b@x.com"}}
	for _, p := range []*types.Profile{nil, {Email: "a@x.com"}, {Email: "b@x.com"}, {Email: "q@x.com"}} {
		current := 0
		for _, r := range Merge(users, p) {
			if r.IsCurrent {
				current++
			}
		}
		if current > 1 {
			t.Errorf("profile %+v: %d current records", p, current)
		}
	}
}
