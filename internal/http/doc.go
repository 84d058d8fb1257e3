// Package http provides HTTP handlers and middleware for the deputy
// schedule API.
//
// The router exposes the following endpoints:
//   - POST /auth: credential and token operations selected by the
//     "action" field of the JSON body. "login" exchanges {"login",
//     "password"} for {"token","user"}; "verify" resolves the X-Auth-Token
//     header to {"user"}; "logout" revokes the header token.
//   - GET /events: lists every event as {"events":[...]}; with ?id= it
//     returns a single {"event":...}. POST creates, PUT ?id= updates,
//     DELETE ?id= removes (administrators only). Events are exchanged in
//     the camelCase wire form defined in the schedule package.
//   - GET /events/export: the schedule rendered as an iCalendar file.
//   - GET /users, POST /users, PUT /users?id=, DELETE /users?id=:
//     administrator controlled directory management.
//   - GET /bookings, POST /bookings: pending booking requests and
//     submission. PUT /bookings carries {"id","action"} where action is
//     "approve" or "reject"; approval answers with the created event.
//
// All endpoints except POST /auth require a valid X-Auth-Token header.
// Errors are answered as {"error":"..."}; validation failures add a
// per-field "details" object.
package http
