package postgres

import (
	"regexp"
	"testing"
)

// The sessions.user_id column is uuid. COALESCE resolves its type from
// the first non-unknown argument, so coalescing the bare column with ''
// makes Postgres push the empty string through uuid_in and the whole
// statement fails on parse. The read side must cast to text first.
func TestFindSessionQueryCastsUserIDBeforeCoalesce(t *testing.T) {
	want := regexp.MustCompile(`COALESCE\(user_id::text,\s*''\)`)
	if !want.MatchString(findSessionQuery) {
		t.Fatalf("session lookup coalesces user_id without a text cast:\n%s", findSessionQuery)
	}
}
