// Package types provides shared data structures for sunvoy.
// Directory entries, the scraped profile and the merged output records are
// defined here so the fetchers, the orchestrator and the writer agree on shape.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// =============================================================================
// Directory Types
// =============================================================================

// User is one entry of the /api/users listing. Fields the service returns
// beyond these are ignored.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// FullName joins first and last name with a single space.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UnmarshalJSON accepts the id as a JSON string or number; a number keeps its
// literal text. A null or missing id leaves ID empty.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var v struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	id, err := decodeID(v.ID)
	if err != nil {
		return err
	}
	*u = User(v.plain)
	u.ID = id
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("user id: %w", err)
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("user id: %w", err)
	}
	return n.String(), nil
}

// =============================================================================
// Profile Types
// =============================================================================

// Profile is the authenticated user as scraped from the settings page.
// Fields the page does not carry hold placeholder values, never empty
// strings, so callers cannot tell "missing" from "present".
type Profile User

// FullName joins first and last name with a single space.
func (p Profile) FullName() string {
	return User(p).FullName()
}

// =============================================================================
// Output Types
// =============================================================================

// Record is one line of the output file.
type Record struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	IsCurrent bool   `json:"isCurrent,omitempty"`
}
