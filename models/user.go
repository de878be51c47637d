package models

// User account, the minimum the forum needs: identity for authorship and
// an email address for reply notifications.
type User struct {
	UserID   int64  `json:"user_id,string" gorm:"column:user_id;primaryKey"`
	Username string `json:"username" gorm:"column:username;uniqueIndex;size:64;not null"`
	Email    string `json:"email" gorm:"column:email;size:254"`
	Password string `json:"-" gorm:"column:password;size:128;not null"`
}

func (User) TableName() string { return "user" }
