package auth

// UserRepository defines all database operations for accounts
type UserRepository interface {
	Save(user *User) error
	FindByEmail(email string) (*User, error)
	FindByID(id string) (*User, error)
	ExistsByEmail(email string) (bool, error)
	UpdatePreferredName(id, preferredName string) (*User, error)
}
