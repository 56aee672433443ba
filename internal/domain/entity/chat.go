package entity

import (
	"sort"
	"strings"
	"time"
)

// RoomID is the chat room key for two participants; it does not depend on who starts the chat.
func RoomID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

type ChatRoom struct {
	ID           string    `json:"id" firestore:"-"`
	Participants []string  `json:"participants" firestore:"participants"`
	LastMessage  string    `json:"last_message" firestore:"lastMessage"`
	LastSenderID string    `json:"last_sender_id" firestore:"lastSenderId"`
	UpdatedAt    time.Time `json:"updated_at" firestore:"updatedAt,serverTimestamp"`
}
