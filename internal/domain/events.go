package domain

// Event is a domain occurrence published on the in-process bus.
// Callers observe which events an operation produced instead of
// relying on globally registered listeners.
type Event interface {
	EventName() string
}

// AuthenticationLinkWasRequested fires when a user asks for a login
// link. Token carries the raw value so a subscriber can deliver it.
type AuthenticationLinkWasRequested struct {
	User  *User
	Token string
}

func (AuthenticationLinkWasRequested) EventName() string { return "auth.link_requested" }

// UserLoggedIn fires after a token was successfully consumed.
type UserLoggedIn struct {
	User *User
}

func (UserLoggedIn) EventName() string { return "auth.logged_in" }

// UserProfileWasViewed fires on every successful profile render,
// self-views included.
type UserProfileWasViewed struct {
	User *User
}

func (UserProfileWasViewed) EventName() string { return "user.profile_viewed" }

// UserRegistered fires when a new account is created. Token carries
// the raw activation link value.
type UserRegistered struct {
	User  *User
	Token string
}

func (UserRegistered) EventName() string { return "user.registered" }

// AccountWasActivated fires when an activation link is consumed.
type AccountWasActivated struct {
	User *User
}

func (AccountWasActivated) EventName() string { return "user.activated" }
