// Package authz holds the ownership predicate applied on every mutation
// path. It is never consulted for reads.
package authz

import "fmt"

// Allow reports whether the acting identity owns the resource. Owner and
// actor ids may arrive as different types (store object id, token
// subject), so both are normalized to their string form before comparing.
func Allow(ownerID, actorID interface{}) bool {
	return fmt.Sprint(ownerID) == fmt.Sprint(actorID)
}
