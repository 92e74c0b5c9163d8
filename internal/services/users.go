package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quickdate/admin-api/internal/models"
	"github.com/quickdate/admin-api/internal/store"
)

var ErrMissingUserFields = errors.New("first name, last name and email are required")

// UserService serves the dashboard's user management pages on top of the
// `users` collection.
type UserService struct {
	store store.Store
	log   *zap.SugaredLogger
}

func NewUserService(st store.Store, log *zap.SugaredLogger) *UserService {
	return &UserService{store: st, log: log}
}

// List returns up to limit users ordered by createdAt desc, falling back to
// an unordered read when the ordered query fails (missing index or mixed
// createdAt types).
func (s *UserService) List(ctx context.Context, limit int) ([]*store.Document, error) {
	if limit == 0 {
		limit = 50
	}
	limit = clamp(limit, 1, 200)
	docs, err := s.store.Run(ctx, store.Query{
		Collection: "users",
		OrderBy:    "createdAt",
		Desc:       true,
		Limit:      limit,
	})
	if err == nil {
		return docs, nil
	}
	s.log.Debugw("ordered users query failed, retrying unordered", "err", err)
	docs, err = s.store.Run(ctx, store.Query{Collection: "users", Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return docs, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*store.Document, error) {
	return s.store.Get(ctx, "users/"+id)
}

// Upsert creates a user document, or merges into the existing one matched by
// id/uid or by email.
func (s *UserService) Upsert(ctx context.Context, req *models.UpsertUserRequest) (string, error) {
	first := strings.TrimSpace(req.First())
	last := strings.TrimSpace(req.Last())
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if first == "" || last == "" || email == "" {
		return "", ErrMissingUserFields
	}

	id := req.ID
	if id == "" {
		id = req.UID
	}
	if id == "" {
		if existing := s.findByEmail(ctx, email); existing != nil {
			id = existing.ID
		}
	}

	fields := userFields(req, first, last, email)
	fields["updatedAt"] = store.ServerTimestamp

	batch := s.store.Batch()
	if id == "" {
		fields["createdAt"] = store.ServerTimestamp
		path := batch.Create("users", fields)
		id = path[strings.LastIndex(path, "/")+1:]
	} else {
		batch.SetMerge("users/"+id, fields)
	}
	if err := batch.Commit(ctx); err != nil {
		return "", fmt.Errorf("upsert user: %w", err)
	}
	return id, nil
}

// Patch merges the provided fields into an existing user.
func (s *UserService) Patch(ctx context.Context, id string, req *models.UpsertUserRequest) error {
	if _, err := s.store.Get(ctx, "users/"+id); err != nil {
		return err
	}
	fields := map[string]interface{}{"updatedAt": store.ServerTimestamp}
	if v := strings.TrimSpace(req.First()); v != "" {
		fields["firstName"] = v
	}
	if v := strings.TrimSpace(req.Last()); v != "" {
		fields["lastName"] = v
	}
	if v := strings.TrimSpace(strings.ToLower(req.Email)); v != "" {
		fields["email"] = v
	}
	if req.Gender != "" {
		fields["gender"] = strings.ToLower(req.Gender)
	}
	if b := firstNonNil(req.Birthday, req.BirthDate); b != nil {
		fields["birthday"] = b
	}
	if req.Photos != nil {
		applyPhotoFields(fields, req.Photos)
	}
	if req.Status != "" {
		fields["status"] = req.Status
	}
	if list := req.InterestList(); len(list) > 0 {
		fields["interests"] = list
	}
	if v := req.InterestedInValue(); v != "" {
		fields["interestedIn"] = v
	}
	batch := s.store.Batch()
	batch.SetMerge("users/"+id, fields)
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("patch user: %w", err)
	}
	return nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, "users/"+id); err != nil {
		return err
	}
	batch := s.store.Batch()
	batch.Delete("users/" + id)
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *UserService) findByEmail(ctx context.Context, email string) *store.Document {
	docs, err := s.store.Run(ctx, store.Query{
		Collection: "users",
		Filters:    []store.Filter{{Field: "email", Op: "==", Value: email}},
		Limit:      1,
	})
	if err != nil || len(docs) == 0 {
		return nil
	}
	return docs[0]
}

func userFields(req *models.UpsertUserRequest, first, last, email string) map[string]interface{} {
	fields := map[string]interface{}{
		"firstName": first,
		"lastName":  last,
		"email":     email,
	}
	if req.Gender != "" {
		fields["gender"] = strings.ToLower(req.Gender)
	}
	if b := firstNonNil(req.Birthday, req.BirthDate); b != nil {
		fields["birthday"] = b
	}
	applyPhotoFields(fields, req.Photos)
	status := req.Status
	if status == "" {
		status = "Active"
	}
	fields["status"] = status
	if list := req.InterestList(); len(list) > 0 {
		fields["interests"] = list
	}
	if v := req.InterestedInValue(); v != "" {
		fields["interestedIn"] = v
	}
	return fields
}

// applyPhotoFields accepts either a {main, gallery} object or a flat url
// array, writing avatar plus the full photo list.
func applyPhotoFields(fields map[string]interface{}, photos interface{}) {
	switch p := photos.(type) {
	case map[string]interface{}:
		var all []string
		if main, _ := p["main"].(string); main != "" {
			fields["avatar"] = main
			all = append(all, main)
		}
		if gallery, ok := p["gallery"].([]interface{}); ok {
			for _, g := range gallery {
				if u, _ := g.(string); u != "" {
					all = append(all, u)
				}
			}
		}
		if len(all) > 0 {
			fields["photos"] = all
		}
	case []interface{}:
		var all []string
		for _, g := range p {
			if u, _ := g.(string); u != "" {
				all = append(all, u)
			}
		}
		if len(all) > 0 {
			fields["avatar"] = all[0]
			fields["photos"] = all
		}
	}
}

func firstNonNil(vals ...interface{}) interface{} {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
