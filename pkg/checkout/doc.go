// Package checkout is the top-level controller for plan-change requests.
//
// The UI layer produces explicit Intent values; the Orchestrator consumes
// them and returns an Outcome describing what happened: a redirect to
// perform, a hosted payment flow that was opened, a completed charge, a
// guard rejection, or a failure message. No error escapes the orchestrator
// boundary; every failure settles into a single-line status message.
//
// A checkout pass walks a fixed sequence: configuration validation, session
// resolution, the plan-transition guard, and finally one billing dispatch.
// Free plans bypass session gating and settle into a redirect. Paid plans
// either open a new card-registration flow or, for an upgrade from basic to
// pro, charge the stored card directly, falling back to card registration
// when the backend reports no card on file.
//
// All mutable checkout state (the 30-second per-user plan cache and the
// per-trigger busy markers) lives in an explicit Flow object passed into
// each call; the package keeps no globals.
package checkout
