// Package http provides HTTP handlers and middleware for the room booking API.
//
// The router exposes the following endpoints:
//   - POST /register, POST /login: create an account or a session. Both respond
//     with {"token","expiresAt","user"} and surface the token via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - POST /logout: revokes the current session token extracted from the
//     Authorization header or session cookie. Returns 204 and clears the cookie.
//   - GET /me: echoes the account resolved from the session token.
//   - GET /bookings, POST /bookings, DELETE /bookings/{id}: booking management
//     exchanging the `bookingPayload` defined in payloads.go. Listing covers the
//     caller's bookings, or one room's day when roomId and date are supplied.
//   - POST /bookings/availability: reports whether a slot is free together with
//     the conflicting bookings, including room and bookee display names.
//   - GET /priority-requests, POST /priority-requests: the caller's escalation
//     requests against conflicting bookings.
//   - GET /rooms, GET /teams: catalog listings for any authenticated principal.
//   - /admin/...: administrator endpoints for room and team mutations, account
//     role and status changes, the notification inbox, and priority request
//     approve/reject decisions.
//
// Request/response DTOs live in payloads.go and alongside their handlers so
// tests and documentation share the same ground truth.
package http
