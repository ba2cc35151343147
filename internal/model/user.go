package model

// UserProfile is the account information returned for the logged-in user.
type UserProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Registration holds the fields submitted when creating an account.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
