package models

// MaxAliasLength is the width of the users.alias column, in characters.
const MaxAliasLength = 16

// User owns logging events. Alias is the natural key used during submission;
// it is not declared unique in the schema.
type User struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Alias     string `json:"alias" gorm:"size:16;index"`
	FirstName string `json:"first_name,omitempty" gorm:"size:16"`
	LastName  string `json:"last_name,omitempty" gorm:"size:32"`
}

func (User) TableName() string {
	return "users"
}
