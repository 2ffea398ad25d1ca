package harvest

import "github.com/loosehose/sunvoy/internal/types"

// Merge turns directory users into records and folds in the current user:
// the first record with the same email is flagged, otherwise the profile is
// appended as a new flagged record. A nil profile flags nothing.
func Merge(users []types.User, current *types.Profile) []types.Record {
	records := make([]types.Record, 0, len(users)+1)
	for _, u := range users {
		records = append(records, types.Record{
			ID:    u.ID,
			Name:  u.FullName(),
			Email: u.Email,
		})
	}

	if current == nil {
		return records
	}

	for i := range records {
		if records[i].Email == current.Email {
			records[i].IsCurrent = true
			return records
		}
	}

	return append(records, types.Record{
		ID:        current.ID,
		Name:      current.FullName(),
		Email:     current.Email,
		IsCurrent: true,
	})
}
