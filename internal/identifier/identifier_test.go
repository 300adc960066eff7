package identifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_BranchName(t *testing.T) {
	got := Derive("", "feature/login", nil)
	assert.Equal(t, "sbwt-feature-login", got)
}

func TestDerive_WorktreeNameWins(t *testing.T) {
	got := Derive("review-pr-42", "feature/login", nil)
	assert.Equal(t, "sbwt-review-pr-42", got)
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"feature/login":          "feature-login",
		"Feature/LOGIN":          "feature-login",
		"--weird__name!!--":      "weird-name",
		"a//b\\c d":              "a-b-c-d",
		"émoji-🚀-branch":         "moji-branch",
		"":                       "",
		"///":                    "",
		"release/v1.2.3":         "release-v1-2-3",
		"already-clean-123":      "already-clean-123",
	}
	for input, want := range tests {
		assert.Equal(t, want, Sanitize(input), "input %q", input)
	}
}

func TestDerive_EmptyNameFallsBack(t *testing.T) {
	assert.Equal(t, "sbwt-worktree", Derive("", "///", nil))
}

func TestDerive_CollisionSuffixes(t *testing.T) {
	existing := Set()
	var got []string
	for i := 0; i < 4; i++ {
		id := Derive("", "feature/login", existing)
		got = append(got, id)
		existing[id] = struct{}{}
	}
	assert.Equal(t, []string{
		"sbwt-feature-login",
		"sbwt-feature-login-2",
		"sbwt-feature-login-3",
		"sbwt-feature-login-4",
	}, got)
}

func TestDerive_DistinctInputsSameBody(t *testing.T) {
	existing := Set(Derive("", "Feature/Login", nil))
	got := Derive("", "feature_login", existing)
	assert.Equal(t, "sbwt-feature-login-2", got)
}

func TestDerive_LongNameIsBoundedAndHashed(t *testing.T) {
	long := "feature/this-is-an-extremely-long-branch-name-that-goes-on-and-on"
	body := Sanitize(long)

	got := Derive("", long, nil)
	assert.LessOrEqual(t, len(got), MaxLength)
	assert.True(t, strings.HasPrefix(got, Prefix))
	assert.True(t, strings.HasSuffix(got, "-"+Hash(body)))
	assert.False(t, strings.Contains(got, "--"))
}

func TestDerive_LongNameCollisionsKeepHash(t *testing.T) {
	long := strings.Repeat("abcdefghij", 8)
	hash := Hash(Sanitize(long))

	existing := Set()
	for i := 0; i < 12; i++ {
		id := Derive("", long, existing)
		require.LessOrEqual(t, len(id), MaxLength, id)
		require.True(t, strings.HasPrefix(id, Prefix), id)
		require.Contains(t, id, hash, "hash must come from the untruncated body")
		_, dup := existing[id]
		require.False(t, dup, "suffix reused: %s", id)
		existing[id] = struct{}{}
	}
	assert.Contains(t, existing, Prefix+long[:MaxLength-len(Prefix)-HashLength-1]+"-"+hash)
	assert.Contains(t, existing, Prefix+long[:MaxLength-len(Prefix)-HashLength-1-3]+"-"+hash+"-10")
}

func TestDerive_TruncationStripsTrailingDash(t *testing.T) {
	// 26 characters fit after prefix+hash+separator; make the cut land on a dash.
	long := strings.Repeat("a", 25) + "-" + strings.Repeat("b", 30)
	got := Derive("", long, nil)
	assert.Equal(t, Prefix+strings.Repeat("a", 25)+"-"+Hash(long), got)
}

func TestDerive_Deterministic(t *testing.T) {
	existing := Set("sbwt-main", "sbwt-main-2")
	first := Derive("", "main", existing)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Derive("", "main", existing))
	}
	assert.Equal(t, "sbwt-main-3", first)
}

func TestDerive_AlwaysBounded(t *testing.T) {
	names := []string{"a", strings.Repeat("x", 35), strings.Repeat("y", 36), strings.Repeat("z-", 50), "feature/login"}
	for _, name := range names {
		existing := Set()
		for i := 0; i < 15; i++ {
			id := Derive(name, "", existing)
			assert.LessOrEqual(t, len(id), MaxLength, id)
			assert.True(t, strings.HasPrefix(id, Prefix), id)
			existing[id] = struct{}{}
		}
	}
}
