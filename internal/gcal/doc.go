// Package gcal provides a read-only Google Calendar client and a Store that
// adapts it to the timetable collector interfaces.
//
// The client wraps the Google Calendar API with OAuth2 authentication and
// per-account token management. The Store maps scheduling participants onto
// calendars: the authenticated account's calendar list yields owned and
// member calendars, while other participants are addressed by their calendar
// ID (their email address). Personal busy ranges come from the freebusy API.
package gcal
