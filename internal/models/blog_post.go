package models

// BlogPost represents a post in the blog. CreatorName is a copy of the
// creator's User.Name taken when the post was created.
type BlogPost struct {
	BlogID        int64  `json:"blog_id" gorm:"column:blog_id;primaryKey;autoIncrement"`
	CreatorName   string `json:"creator_name" gorm:"column:creator_name;type:varchar(100)"`
	Title         string `json:"title" gorm:"column:title;type:varchar(255)"`
	Body          string `json:"body" gorm:"column:body;type:text"`
	CreatorUserID string `json:"creator_user_id" gorm:"column:creator_user_id;type:varchar(100);index"`
	Creator       *User  `json:"-" gorm:"foreignKey:CreatorUserID;references:UserID"`
}

// TableName pins the table name used by the schema.
func (BlogPost) TableName() string { return "blogs" }
