package model

import "time"

type Member struct {
	ID           int64     `json:"id"`
	UniversityID int64     `json:"university_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

type Specialist struct {
	ID             int64     `json:"id"`
	UniversityID   int64     `json:"university_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	TelegramChatID *int64    `json:"telegram_chat_id"` // nil - уведомления только по почте
	CreatedAt      time.Time `json:"created_at"`
}
