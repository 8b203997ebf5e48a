package handler

// Flash keys shared across the redirect-heavy auth flows.
const (
	flashLinkSent         = "link.sent"
	flashTokenExpired     = "token.expired"
	flashAccountCreated   = "account.created"
	flashAccountActivated = "account.activated"
	flashEmailError       = "error.email"
	flashMonikerError     = "error.moniker"
)

const (
	errEmailInvalid = "Enter a valid email address"
	errUnknownEmail = "That email does not match an existing account"
	errEmailTaken   = "That email is already registered"
	errMonikerBlank = "Pick a moniker"
	errInternal     = "Something went wrong, please try again"
)
