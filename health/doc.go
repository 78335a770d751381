// Package health provides preflight checking primitives.
//
// A Checker reports a Status (Healthy, Degraded or Unhealthy) with a short
// message. An Aggregator runs a set of checkers concurrently and reports the
// results in registration order together with an overall status:
//
//	agg := health.NewAggregator()
//	agg.Register(signing.CompletenessChecker(res))
//	agg.Register(signing.KeystoreChecker(res, "android/app"))
//
//	results := agg.CheckAll(ctx)
//	if health.OverallStatus(results) == health.StatusUnhealthy {
//	    os.Exit(1)
//	}
package health
