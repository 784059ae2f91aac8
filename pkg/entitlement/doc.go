// Package entitlement decides, for every attempted user action, whether the
// action is permitted under the user's current plan, and records consumption
// after the action succeeds.
//
// The package splits the two responsibilities on purpose:
//
//   - Gate is read-only: it evaluates an ordered list of budget checks
//     (plan quota, then daily throttle) and returns a Decision. It never
//     mutates a counter, so repeated checks are idempotent.
//   - Tracker is write-only: one call per successful domain event, no
//     gating. A request that dies before tracking leaves counters untouched
//     and needs no compensation.
//
// Callers follow check-then-act-then-track:
//
//	d, err := gate.Check(ctx, userID, plan.FeatureRecipeGeneration)
//	if err != nil {
//	    return err // fail closed: no action without a successful check
//	}
//	if !d.Allowed {
//	    return render(d) // terminal, user-visible outcome; no retry
//	}
//	recipe, err := recipes.Generate(ctx, req)
//	if err != nil {
//	    return err
//	}
//	_ = tracker.TrackRecipeGeneration(ctx, userID)
//
// Concurrent check/act/track sequences for one user are not serialized:
// the quota is a soft limit that can be exceeded by at most the number of
// in-flight requests. The stores keep their own writes atomic, so counters
// never drift from lost updates.
package entitlement
