package models

// User models a Daybook account. The password hash never leaves the users
// service, so it is not part of this struct.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
}
