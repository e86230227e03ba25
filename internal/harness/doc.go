// Package harness runs Westworld scenarios as executable tests.
//
// A scenario fixes the run configuration, runs the simulation in memory
// and checks assertions against the recorded trace and the final state
// of each resident.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: stew_round_trip
//	description: "Bob comes home and Elsa's stew reaches him"
//	config:
//	  ticks: 20
//	  seed: 7
//	  stew_delay: 1.5
//	assertions:
//	  - type: trace_contains
//	    match: { kind: delivered, entity: 1, msg: 2 }
//	  - type: trace_order
//	    events:
//	      - { kind: transition, entity: 1, to: GoHomeAndSleepTillRested }
//	      - { kind: transition, entity: 1, to: EatStew }
//	  - type: trace_count
//	    match: { kind: tick }
//	    count: 20
//	  - type: final_state
//	    entity: 1
//	    state: GoHomeAndSleepTillRested
//	    expect: { wealth: 5, location: shack }
//
// Config keys are those of a run config file; anything left out keeps
// its default.
//
// # Assertion Types
//
//   - trace_contains: some event matches
//   - trace_order: the first match of each pattern appears in the given order
//   - trace_count: exactly count events match
//   - final_state: an entity ends in the named state and its fields match
//
// A match pattern only checks the fields it names.
//
// # Determinism
//
// Every run uses the simulation clock, a run id derived from the scenario
// name and a random source seeded from config.seed, so a scenario always
// produces the same trace. RunWithGolden compares that trace against
// testdata/golden/<name>.golden.
package harness
