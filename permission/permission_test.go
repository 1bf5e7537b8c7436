package permission

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaihanaA/avanzatech-blog/errors"
)

func TestValidateVisibility(t *testing.T) {
	tts := map[string]struct {
		visibility Visibility
		valid      bool
		reason     string
	}{
		"all none": {
			visibility: Visibility{Public: None, Authenticated: None, Team: None},
			valid:      true,
		},
		"everyone reads, team edits": {
			visibility: Visibility{Public: Read, Authenticated: Read, Team: ReadEdit},
			valid:      true,
		},
		"authenticated edit, public read": {
			visibility: Visibility{Public: Read, Authenticated: ReadEdit, Team: ReadEdit},
			valid:      true,
		},
		"team read only": {
			visibility: Visibility{Public: None, Authenticated: None, Team: Read},
			valid:      true,
		},
		"team none but authenticated read": {
			visibility: Visibility{Public: None, Authenticated: Read, Team: None},
			reason:     "team permission is None: authenticated and public permissions must be None as well",
		},
		"team none but public read": {
			visibility: Visibility{Public: Read, Authenticated: None, Team: None},
			reason:     "team permission is None: authenticated and public permissions must be None as well",
		},
		"authenticated none but public read": {
			visibility: Visibility{Public: Read, Authenticated: None, Team: Read},
			reason:     "authenticated permission is None: public permission must be None as well",
		},
		"team read but authenticated edit": {
			visibility: Visibility{Public: None, Authenticated: ReadEdit, Team: Read},
			reason:     "team permission is Read: authenticated permission must be Read or None",
		},
		"public edit everywhere": {
			visibility: Visibility{Public: ReadEdit, Authenticated: ReadEdit, Team: ReadEdit},
			reason:     "authenticated permission is ReadEdit: public permission must be Read or None",
		},
	}

	for name, tt := range tts {
		res, err := ValidateVisibility(tt.visibility)
		require.NoError(t, err, name)
		assert.Equal(t, tt.valid, res.Valid, name)
		assert.Equal(t, tt.reason, res.Reason, name)
	}
}

// A triple violating both the team rule and the authenticated rule must be
// reported against the team tier: rules are checked from the innermost tier
// outwards and the first violation wins.
func TestValidateVisibility_ShortCircuitOrder(t *testing.T) {
	res, err := ValidateVisibility(Visibility{Public: Read, Authenticated: Read, Team: None})
	require.NoError(t, err)
	require.False(t, res.Valid)
	assert.Equal(t, "team permission is None: authenticated and public permissions must be None as well", res.Reason)
}

func TestValidateVisibility_Monotonicity(t *testing.T) {
	levels := []Level{None, Read, ReadEdit}

	for _, team := range levels {
		for _, authenticated := range levels {
			for _, public := range []Level{None, Read} {
				v := Visibility{Public: public, Authenticated: authenticated, Team: team}
				res, err := ValidateVisibility(v)
				require.NoError(t, err, fmt.Sprintf("%+v", v))

				monotone := public.Rank() <= authenticated.Rank() && authenticated.Rank() <= team.Rank()
				assert.Equal(t, monotone, res.Valid, fmt.Sprintf("%+v", v))
				if !res.Valid {
					assert.NotEmpty(t, res.Reason, fmt.Sprintf("%+v", v))
				}
			}
		}
	}
}

func TestValidateVisibility_InvalidValues(t *testing.T) {
	tts := map[string]Visibility{
		"public edit":       {Public: ReadEdit, Authenticated: Read, Team: ReadEdit},
		"public garbage":    {Public: Level("WRITE"), Authenticated: Read, Team: Read},
		"lowercase levels": {Public: None, Authenticated: Level("read"), Team: Level("read_edit")},
		"team empty":       {Public: None, Authenticated: None, Team: Level("")},
	}

	for name, v := range tts {
		_, err := ValidateVisibility(v)
		if assert.Error(t, err, name) {
			errors.AssertCode(t, err, 422)
			assert.Contains(t, err.Error(), "invalid permission value", name)
		}
	}
}

func TestCanEditOrDelete(t *testing.T) {
	post := PostAccess{
		Author:        "alice",
		Team:          "T1",
		Authenticated: Read,
		TeamLevel:     ReadEdit,
	}

	tts := map[string]struct {
		post     PostAccess
		viewer   Viewer
		expected bool
	}{
		"anonymous viewer": {
			post:     post,
			viewer:   Viewer{Authenticated: false, Username: "bob", Team: "T1"},
			expected: false,
		},
		"anonymous viewer with stale author identity": {
			post:     post,
			viewer:   Viewer{Authenticated: false, Username: "alice", Team: "T1"},
			expected: false,
		},
		"author": {
			post:     post,
			viewer:   Viewer{Authenticated: true, Username: "alice"},
			expected: true,
		},
		"author with locked down post": {
			post:     PostAccess{Author: "alice", Team: "T1", Authenticated: None, TeamLevel: None},
			viewer:   Viewer{Authenticated: true, Username: "alice", Team: "T2"},
			expected: true,
		},
		"team member with team edit": {
			post:     post,
			viewer:   Viewer{Authenticated: true, Username: "bob", Team: "T1"},
			expected: true,
		},
		"other team with team edit": {
			post:     post,
			viewer:   Viewer{Authenticated: true, Username: "bob", Team: "T2"},
			expected: false,
		},
		"team member without team edit": {
			post:     PostAccess{Author: "alice", Team: "T1", Authenticated: Read, TeamLevel: Read},
			viewer:   Viewer{Authenticated: true, Username: "bob", Team: "T1"},
			expected: false,
		},
		"any authenticated with authenticated edit": {
			post:     PostAccess{Author: "alice", Team: "T1", Authenticated: ReadEdit, TeamLevel: ReadEdit},
			viewer:   Viewer{Authenticated: true, Username: "carol", Team: ""},
			expected: true,
		},
		"authenticated read only": {
			post:     PostAccess{Author: "alice", Team: "T1", Authenticated: Read, TeamLevel: Read},
			viewer:   Viewer{Authenticated: true, Username: "carol"},
			expected: false,
		},
		"teamless viewer against teamless post": {
			post:     PostAccess{Author: "alice", Team: "", Authenticated: None, TeamLevel: ReadEdit},
			viewer:   Viewer{Authenticated: true, Username: "bob", Team: ""},
			expected: false,
		},
	}

	for name, tt := range tts {
		got := CanEditOrDelete(tt.post, tt.viewer)
		assert.Equal(t, tt.expected, got, name)

		// pure function: identical inputs, identical outputs
		assert.Equal(t, got, CanEditOrDelete(tt.post, tt.viewer), name)
	}
}

// The author wins regardless of the permission fields, including all-None.
func TestCanEditOrDelete_AuthorOverride(t *testing.T) {
	levels := []Level{None, Read, ReadEdit}
	viewer := Viewer{Authenticated: true, Username: "alice", Team: "T9"}

	for _, team := range levels {
		for _, authenticated := range levels {
			post := PostAccess{Author: "alice", Team: "T1", Authenticated: authenticated, TeamLevel: team}
			assert.True(t, CanEditOrDelete(post, viewer), fmt.Sprintf("team=%s authenticated=%s", team, authenticated))
		}
	}
}

func TestCanEditOrDelete_AnonymousDenial(t *testing.T) {
	levels := []Level{None, Read, ReadEdit}

	for _, team := range levels {
		for _, authenticated := range levels {
			post := PostAccess{Author: "alice", Team: "T1", Authenticated: authenticated, TeamLevel: team}
			viewer := Viewer{Authenticated: false, Username: "alice", Team: "T1"}
			assert.False(t, CanEditOrDelete(post, viewer), fmt.Sprintf("team=%s authenticated=%s", team, authenticated))
		}
	}
}
