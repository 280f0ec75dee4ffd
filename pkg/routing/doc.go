// Package routing selects models and providers for generation requests.
//
// A MultiModelRouter holds registered providers, per-model capability and
// pricing records, a routing strategy, and a fallback chain. Every request
// passes a budget gate first, then strategy selection, then execution with
// transient-failure fallback. Spending is recorded into a cost.Tracker on
// success.
//
// Four strategies are available: round robin, cost optimized, capability
// based, and a deterministic experimental A/B split.
package routing
