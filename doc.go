// Package otpgate is the one-time-passcode verification and
// abuse-prevention engine gating registration, login, and password reset.
//
// The engine coordinates three time-windowed locks, a one-shot secret (the
// OTP itself), and a durable user record through a Redis-backed key-value
// store. Abusive callers are throttled by an issuance budget that
// escalates to a spam lock, and verification failures degrade into a
// timed account lock rather than unbounded retry. Every lock and secret
// self-expires via TTL; the application process runs no timers.
//
// # Architecture boundaries
//
// otpgate is the core, not the service. HTTP routing, request parsing,
// and email template hosting stay outside; the engine is built through
// [Builder] with an injected Redis client, a [UserStore] implementation,
// and an optional [Mailer] and [AuditSink]. Engine methods are safe for
// concurrent use after [Builder.Build].
//
// Expected failures are typed [*Error] values carrying a message, a
// status code, and an operational flag; [Envelope] renders any error into
// the boundary response shape, collapsing unexpected failures to a
// detail-free internal error.
//
// # Delivery contract
//
// Passcode delivery is fire-and-forget: issuance succeeds once the secret
// is persisted, and delivery runs on a detached worker whose failures
// reach the audit sink only.
package otpgate
