// Package oracle queries the fortune-telling sites.
//
// Two layers are involved. A Source performs the HTTP request and extracts
// the verdicts, and reports every problem as an error. An Oracle is what
// the analysis engine uses: its Fetch never fails, and a problem with the
// site becomes an empty Verdicts after being logged. FailSoft turns a
// Source into an Oracle; Cached puts the verdict cache in front of a Source.
//
//	src := oracle.NewEnamae(fetcher, baseURL)
//	o := oracle.FailSoft(oracle.Cached(src, store, ttl), oracle.WithLogger(logger))
//	verdicts := o.Fetch(ctx, model.Query{Surname: "田中", GivenName: "兄博", Gender: model.GenderMale})
//
// Design decision: a candidate with one oracle down still gets a composite
// score, so a flaky site degrades the ranking instead of aborting a run that
// may have been going for an hour.
package oracle
