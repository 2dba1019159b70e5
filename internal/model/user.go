package model

import "time"

// User represents any platform account (student, teacher or admin).
// Authentication is owned by the auth service; this core only reads users
// for ownership and membership checks. PasswordHash is written exclusively
// by the ops CLIs (create-user, seed-demo).
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
