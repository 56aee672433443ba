package usecase

import (
	"context"

	"securehire/internal/domain/entity"
	"securehire/internal/domain/repository"
	"securehire/pkg/errors"
	"securehire/pkg/logger"
)

// SessionUseCase ties per-user state to the login lifecycle.
type SessionUseCase struct {
	identities repository.IdentityRepository
	auth       FirebaseAuthClient
	contacts   *ContactSessions
	chats      *ChatUseCase
}

func NewSessionUseCase(identities repository.IdentityRepository, auth FirebaseAuthClient, contacts *ContactSessions, chats *ChatUseCase) *SessionUseCase {
	return &SessionUseCase{
		identities: identities,
		auth:       auth,
		contacts:   contacts,
		chats:      chats,
	}
}

// Authenticate verifies an ID token and returns the caller's identity record.
func (uc *SessionUseCase) Authenticate(ctx context.Context, token string) (*entity.IdentityRecord, error) {
	uid, err := uc.auth.VerifyToken(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	record, err := uc.identities.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.Unauthorized("No account found for this login", err)
		}
		return nil, err
	}
	if !record.Role.Valid() {
		return nil, errors.Forbidden("Account has no role", nil)
	}
	return record, nil
}

// Disconnected drops the live chat subscription of a user whose websocket went away.
// The contact sessions survive so a reconnect keeps its place in the list.
func (uc *SessionUseCase) Disconnected(uid string) {
	uc.chats.CloseUser(uid)
}

// Logout ends every session of uid and revokes its refresh tokens.
func (uc *SessionUseCase) Logout(ctx context.Context, uid string) error {
	uc.contacts.CloseUser(uid)
	uc.chats.CloseUser(uid)

	if err := uc.auth.RevokeSessions(ctx, uid); err != nil {
		logger.Error("Failed to revoke sessions of %s: %v", uid, err)
		return errors.Internal("Failed to log out", err)
	}
	logger.Info("User %s logged out", uid)
	return nil
}
