// Package normalize turns raw Semgrep dependency records into flat report
// rows.
//
// Raw records are schema-unstable JSON objects. Every field is read
// defensively with [Field], which walks dotted paths ("package.name") and
// returns a default for anything missing. Historical field-name variants
// are tried in order with [FirstField].
//
// A [Processor] accumulates [Dependency] and [Vulnerability] rows across a
// stream of records together with running [Stats]. Records that cannot be
// normalized are counted and dropped; they never abort a batch:
//
//	p := normalize.NewProcessor(normalize.Options{
//	    Bad:    []string{"GPL-3.0"},
//	    Review: []string{"MIT"},
//	})
//	deps, vulns, err := p.ProcessAll(client.Dependencies(ctx))
//
// Call [Processor.Reset] before reusing a processor for another filtered
// pass.
package normalize
