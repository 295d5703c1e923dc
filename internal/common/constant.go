package common

// SessionCookieName is the cookie carrying the signed session credential.
const SessionCookieName = "token"
