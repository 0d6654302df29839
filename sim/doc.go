// Package sim implements the discrete-event railway simulation engine.
//
// The engine advances in fixed timesteps. Each tick has two phases:
//
//  1. Mutation phase - every train is updated (departure trigger, segment
//     traversal, arrival bookkeeping) and incident activations and
//     deactivations are processed.
//
//  2. Observation phase - the conflict detector inspects the resulting
//     track and platform occupancy, utilization snapshots are taken, and
//     progress observers are notified.
//
// All state for one run is exclusively owned by its Engine; nothing is
// shared across runs. Capacity violations are reported as conflicts, never
// prevented: the detector observes the invariant, it does not enforce it.
package sim
