// Package core defines the domain types shared by every interview stage:
// the intake profile, observer reports, the skill matrix, turn records,
// expert evaluations, final feedback, and the Session state record itself.
//
// State discipline: stages never mutate a Session directly. Each stage
// receives a read-only View and returns a Patch; Session.Apply is the single
// merge step and the only code path that writes session fields. Every field
// has exactly one stage that is allowed to patch it.
package core
