// Package http serves the Easy Ride site: server rendered pages, their form
// posts and a small JSON API used by the map page.
//
// Pages (text/html):
//   - GET /: landing page with scooter models, pricing tiers and testimonials.
//   - GET /auth: sign-in form, or the sign-up form with ?mode=register.
//     POST /auth/login, POST /auth/register and POST /auth/logout update the
//     client's session and redirect with 303 See Other on success. Rejected
//     attempts re-render the form with a single banner message.
//   - GET /rent, POST /rent: rental request form. Invalid posts re-render with
//     inline field errors and status 422; valid posts wait the simulated
//     delay and render the confirmation with its order id and QR code.
//   - GET /map: live map of the main store. The browser posts its position
//     to /api/distance when geolocation is granted.
//   - GET /contact, POST /contact: contact form, same flow as the rental form.
//   - anything else renders the 404 page with status 404.
//
// JSON API (application/json):
//   - GET /api/session: {"logged_in","user"} for the calling client.
//   - GET /api/storage: {"items"} listing the calling client's local storage
//     entries as key, value and updated_at.
//   - GET /api/pricing: the pricing tiers.
//   - POST /api/distance: body {"lat","lon"}; response
//     {"distance_km","label","store"} where distance_km is rounded to one
//     decimal.
//   - GET /healthz: {"status":"ok","schema"} once storage answers; schema is
//     the applied migration version and is omitted for in-process storage.
//
// Errors use the envelope {"error_code","message","errors"} defined in
// responder.go. Every request carries an easyride_client cookie naming the
// client's local storage namespace; see ClientIdentity.
package http
