package models

import "time"

type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserInfo is the profile document kept in the per-session app state.
type UserInfo struct {
	ID       int64  `json:"id"`
	Account  string `json:"yonghuzhanghao"`
	Name     string `json:"yonghuxingming,omitempty"`
	Role     string `json:"role,omitempty"`
	Interest string `json:"interest,omitempty"`
}
