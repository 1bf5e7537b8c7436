package permission

import (
	"fmt"

	"github.com/DaihanaA/avanzatech-blog/errors"
)

// Level is a post permission level as exchanged with the API.
type Level string

const (
	None     Level = "NONE"
	Read     Level = "READ"
	ReadEdit Level = "READ_EDIT"
)

// String returns the display name used in validation reasons.
func (l Level) String() string {
	switch l {
	case None:
		return "None"
	case Read:
		return "Read"
	case ReadEdit:
		return "ReadEdit"
	}
	return string(l)
}

func (l Level) Valid() bool {
	switch l {
	case None, Read, ReadEdit:
		return true
	}
	return false
}

// Rank orders levels by how much they grant: None < Read < ReadEdit.
func (l Level) Rank() int {
	switch l {
	case Read:
		return 1
	case ReadEdit:
		return 2
	}
	return 0
}

// Visibility is the user-editable permission triple of a post. The author
// permission is fixed at ReadEdit and therefore not part of the triple.
type Visibility struct {
	Public        Level `json:"public_permission"`
	Authenticated Level `json:"authenticated_permission"`
	Team          Level `json:"team_permission"`
}

// Result is the outcome of validating a visibility triple. When the triple
// is rejected, Reason holds a user-displayable explanation naming the tier
// that triggered the rejection.
type Result struct {
	Valid  bool
	Reason string
}

var valid = Result{Valid: true}

func invalid(format string, args ...interface{}) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// ValidateVisibility checks that a visibility triple is internally
// consistent: visibility must not widen from the team tier outwards. Rules
// are evaluated in tier order, team before authenticated before public, and
// the first violated rule determines the reason. The returned error is
// non-nil only when a level lies outside its domain and no tier rule caught
// it first, which is a caller contract violation rather than a validation
// outcome.
func ValidateVisibility(v Visibility) (Result, error) {
	if v.Team == None && (v.Authenticated != None || v.Public != None) {
		return invalid("team permission is %s: authenticated and public permissions must be %s as well", None, None), nil
	}

	if v.Authenticated == None && v.Public != None {
		return invalid("authenticated permission is %s: public permission must be %s as well", None, None), nil
	}

	if v.Team == ReadEdit && !in(v.Authenticated, ReadEdit, Read, None) {
		return invalid("team permission is %s: authenticated permission must be %s, %s or %s", ReadEdit, ReadEdit, Read, None), nil
	}

	if v.Team == Read && !in(v.Authenticated, Read, None) {
		return invalid("team permission is %s: authenticated permission must be %s or %s", Read, Read, None), nil
	}

	if v.Authenticated == ReadEdit && !in(v.Public, Read, None) {
		return invalid("authenticated permission is %s: public permission must be %s or %s", ReadEdit, Read, None), nil
	}

	if err := checkDomain(v); err != nil {
		return Result{}, err
	}

	return valid, nil
}

func checkDomain(v Visibility) error {
	if !v.Public.Valid() || v.Public == ReadEdit {
		return errors.New(fmt.Sprintf("invalid permission value %q for public tier", string(v.Public)), errors.WithCode(422))
	}
	if !v.Authenticated.Valid() {
		return errors.New(fmt.Sprintf("invalid permission value %q for authenticated tier", string(v.Authenticated)), errors.WithCode(422))
	}
	if !v.Team.Valid() {
		return errors.New(fmt.Sprintf("invalid permission value %q for team tier", string(v.Team)), errors.WithCode(422))
	}
	return nil
}

func in(l Level, set ...Level) bool {
	for _, s := range set {
		if l == s {
			return true
		}
	}
	return false
}

// Viewer is the acting identity for a single access evaluation: either
// anonymous or an authenticated user with an optional team.
type Viewer struct {
	Authenticated bool
	Username      string
	Team          string
}

// PostAccess carries the post fields consulted by CanEditOrDelete.
type PostAccess struct {
	Author        string
	Team          string
	Authenticated Level
	TeamLevel     Level
}

// CanEditOrDelete reports whether the viewer may edit or delete the post.
// Checks run in priority order and the first match wins: anonymous viewers
// are always denied, the author is always allowed, then team and
// authenticated tiers are consulted. The fixed author permission is never
// read, authorship is established by identity match alone.
func CanEditOrDelete(post PostAccess, viewer Viewer) bool {
	if !viewer.Authenticated {
		return false
	}

	if viewer.Username != "" && viewer.Username == post.Author {
		return true
	}

	if post.TeamLevel == ReadEdit && viewer.Team != "" && viewer.Team == post.Team {
		return true
	}

	if post.Authenticated == ReadEdit {
		return true
	}

	return false
}
