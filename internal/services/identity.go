package services

import (
	"context"
	"strings"

	"github.com/quickdate/admin-api/internal/store"
)

// AuthNames is the slice of the auth provider used for display-name fallback.
type AuthNames interface {
	DisplayName(ctx context.Context, uid string) (string, error)
}

// User profiles have been kept in several collections over the app's life;
// resolution probes them in order.
var profileCollections = []string{
	"users", "profiles", "userProfiles", "publicUsers", "app_users", "userData", "members",
}

// Resolver maps opaque user ids to display names, best effort. The cache is
// per feed build; every poll re-resolves.
type Resolver struct {
	store store.Store
	auth  AuthNames
	cache map[string]string
}

func NewResolver(st store.Store, auth AuthNames) *Resolver {
	return &Resolver{store: st, auth: auth, cache: make(map[string]string)}
}

// Seed primes the cache with a name hint carried on a message or room doc.
func (r *Resolver) Seed(uid, name string) {
	if uid == "" || name == "" {
		return
	}
	if _, ok := r.cache[uid]; !ok {
		r.cache[uid] = name
	}
}

// Name resolves a display name: profile collections first (preferring
// @username), then the auth provider, then @<uid>.
func (r *Resolver) Name(ctx context.Context, uid string) string {
	if name, ok := r.cache[uid]; ok {
		return name
	}
	name := r.resolve(ctx, uid)
	r.cache[uid] = name
	return name
}

func (r *Resolver) resolve(ctx context.Context, uid string) string {
	if name := r.fromProfiles(ctx, uid); name != "" {
		return name
	}
	if r.auth != nil {
		if dn, err := r.auth.DisplayName(ctx, uid); err == nil {
			if dn = strings.TrimSpace(dn); dn != "" {
				return dn
			}
		}
	}
	return "@" + uid
}

func (r *Resolver) fromProfiles(ctx context.Context, uid string) string {
	for _, c := range profileCollections {
		doc, err := r.store.Get(ctx, c+"/"+uid)
		if err != nil {
			continue
		}
		if name := displayNameFrom(doc.Data); name != "" {
			return name
		}
	}
	return ""
}

// displayNameFrom prefers @username, then first+last, then a display name.
func displayNameFrom(data map[string]interface{}) string {
	if username := store.Str(data, "username", "userName", "handle"); username != "" {
		return "@" + strings.TrimPrefix(username, "@")
	}
	first := store.Str(data, "firstName", "firstname", "givenName", "name.first")
	last := store.Str(data, "lastName", "lastname", "familyName", "name.last")
	if full := strings.TrimSpace(first + " " + last); full != "" {
		return full
	}
	return store.Str(data, "displayName", "name")
}
