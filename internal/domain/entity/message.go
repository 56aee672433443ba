package entity

import "time"

type Message struct {
	ID         string    `json:"id" firestore:"-"`
	RoomID     string    `json:"room_id" firestore:"-"`
	SenderID   string    `json:"sender_id" firestore:"senderId"`
	ReceiverID string    `json:"receiver_id" firestore:"receiverId"`
	Text       string    `json:"text" firestore:"text"`
	Timestamp  time.Time `json:"timestamp" firestore:"timestamp,serverTimestamp"`
}
