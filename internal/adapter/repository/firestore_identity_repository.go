package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"securehire/internal/domain/entity"
	"securehire/internal/domain/repository"
	"securehire/pkg/errors"
	"securehire/pkg/logger"
)

const usersCollection = "users"

type firestoreIdentityRepository struct {
	client *firestore.Client
}

func NewFirestoreIdentityRepository(client *firestore.Client) repository.IdentityRepository {
	return &firestoreIdentityRepository{
		client: client,
	}
}

func (r *firestoreIdentityRepository) GetByID(ctx context.Context, id string) (*entity.IdentityRecord, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	return identityFromDoc(doc)
}

func (r *firestoreIdentityRepository) ListByRole(ctx context.Context, role entity.Role, cursor string, limit int) (*entity.IdentityPage, error) {
	query := r.client.Collection(usersCollection).
		Where("role", "==", string(role)).
		OrderBy(firestore.DocumentID, firestore.Asc)
	if cursor != "" {
		query = query.StartAfter(r.client.Collection(usersCollection).Doc(cursor))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	page := &entity.IdentityPage{NextCursor: cursor}

	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while listing %s users after %q: %v", role, cursor, err)
			return nil, errors.Internal("Failed to list users", err)
		}

		// The cursor moves past malformed documents too, or the next page would return them again.
		page.NextCursor = doc.Ref.ID
		page.Scanned++

		record, err := identityFromDoc(doc)
		if err != nil {
			logger.Warn("Skipping malformed user document %s: %v", doc.Ref.ID, err)
			continue
		}
		page.Records = append(page.Records, record)
	}

	return page, nil
}

func identityFromDoc(doc *firestore.DocumentSnapshot) (*entity.IdentityRecord, error) {
	var record entity.IdentityRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	record.ID = doc.Ref.ID
	return &record, nil
}
