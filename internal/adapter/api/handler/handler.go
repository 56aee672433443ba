package handler

import (
	"securehire/internal/usecase"
)

var (
	contactHandler *ContactHandler
	chatHandler    *ChatHandler
	profileHandler *ProfileHandler
	jobHandler     *JobHandler
	checkInHandler *CheckInHandler
	sessionHandler *SessionHandler
)

func Setup(
	contactSessions *usecase.ContactSessions,
	chatUseCase *usecase.ChatUseCase,
	profileUseCase *usecase.ProfileUseCase,
	profileGate *usecase.ProfileGate,
	jobUseCase *usecase.JobUseCase,
	checkInUseCase *usecase.CheckInUseCase,
	sessionUseCase *usecase.SessionUseCase,
	notifier *usecase.Notifier,
) {
	contactHandler = NewContactHandler(contactSessions, notifier)
	chatHandler = NewChatHandler(chatUseCase)
	profileHandler = NewProfileHandler(profileUseCase, profileGate, notifier)
	jobHandler = NewJobHandler(jobUseCase, checkInUseCase, notifier)
	checkInHandler = NewCheckInHandler(checkInUseCase, notifier)
	sessionHandler = NewSessionHandler(sessionUseCase)
}

func GetContactHandler() *ContactHandler {
	return contactHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetProfileHandler() *ProfileHandler {
	return profileHandler
}

func GetJobHandler() *JobHandler {
	return jobHandler
}

func GetCheckInHandler() *CheckInHandler {
	return checkInHandler
}

func GetSessionHandler() *SessionHandler {
	return sessionHandler
}
