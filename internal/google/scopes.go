package google

// DefaultOAuthScopes are the Google OAuth scopes schedly requests.
//
// Read access to calendars and events is enough to collect busy ranges and
// build availability grids; schedly never writes to a calendar.
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Calendar scopes
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/calendar.events.readonly",
}
