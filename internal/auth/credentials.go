package auth

import "crypto/subtle"

// Credentials is the single identity allowed to log in.
type Credentials struct {
	Username string
	Password string
}

// Check reports whether username and password match. Both comparisons always
// run so the timing does not reveal which one failed.
func (c Credentials) Check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	return userOK && passOK && c.Password != ""
}
