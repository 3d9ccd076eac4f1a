// Package web is the HTTP driving adapter: server-rendered pages for
// participants and admins, and the JSON API behind them.
//
// Handlers translate requests into calls on the driving ports and map
// domain errors to status codes in one place (errors.go). Sessions are
// carried in the waiverdesk_session cookie.
package web
