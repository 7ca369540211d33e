package models

// User represents an account that can sign in and author posts.
// UserID is chosen by the user at signup and never changes.
type User struct {
	UserID   string `json:"user_id" gorm:"column:user_id;primaryKey;type:varchar(100)" validate:"required,max=100"`
	Password string `json:"-" gorm:"column:password;type:varchar(255);not null" validate:"required,max=72"` // bcrypt hash once stored
	Name     string `json:"name" gorm:"column:name;type:varchar(100)" validate:"max=100"`
}

// TableName pins the table name used by the schema.
func (User) TableName() string { return "users" }
