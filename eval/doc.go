// Package eval is the districting-plan ensemble tabulator core.
//
// # Reading Guide
//
// Start with these three files to understand the pipeline:
//   - unit.go: UnitRecord, the compound (county, precinct) identity, and the
//     Registry that owns the ordered unit collection plus its identity index
//   - plan.go: plan-stream record decoding and the encoded assignment-key
//     contract (bracketed, quoted token lists)
//   - driver.go: the run lifecycle (LoadingBaseline → StreamingPlans → Done),
//     wiring decode → resolve → tabulate → tally → sink per plan
//
// # Architecture
//
// The eval package holds the run state and the per-plan pipeline;
// sub-packages keep the edges separate:
//   - eval/sink/: destinations for per-plan tallies (console, JSONL, SQLite)
//   - eval/scores/: partisan summary statistics over district totals
//   - eval/archive/: compressed assignment archive reader/writer
//
// # Error policy
//
// The pipeline is strict at the record level and permissive at the entry
// level. A baseline row that does not parse (LoadError), a plan line that is
// not well-formed (DecodeError), or an out-of-range district under the fail
// policy (IndexRangeError) each abort the run. Within a valid plan, a bad
// key shape is a no-op, an unknown unit reference is a no-op, and an
// unparseable district value defaults to district 0; per-entry noise never
// fails a plan.
package eval
