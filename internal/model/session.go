package model

// Session records which user, if any, is authenticated in this process.
//
// It is not stored as one value: CurrentUser and IsAuthenticated live under
// two separate keys ("currentUser" and "isAuthenticated"), and
// RememberCredentials mirrors the "rememberCredentials" key.
//
// INVARIANT: IsAuthenticated implies CurrentUser != nil. Use Valid to check a
// session read back from storage.
type Session struct {
	CurrentUser         *User `json:"currentUser"`
	IsAuthenticated     bool  `json:"isAuthenticated"`
	RememberCredentials bool  `json:"rememberCredentials"`
}

// Valid reports whether the session describes a logged-in user.
func (s Session) Valid() bool {
	return s.IsAuthenticated && s.CurrentUser != nil
}

// RememberedCredentials is the optional login prefill written when the user
// opts in at login. It survives logout and is replaced by the next login.
type RememberedCredentials struct {
	Email    string `json:"rememberedEmail"`
	Password string `json:"rememberedPassword"`
	Remember bool   `json:"rememberCredentials"`
}
