// Package cache provides a content-addressed prompt cache for reuse of
// system prompts across conversations.
//
// Messages are keyed by the SHA-256 hash of their content. By default only
// system prompts are cached, since user and assistant messages are usually
// unique per request. The cache evicts by LRU at capacity and sweeps expired
// entries on insert; it keeps hit, miss, eviction and token-savings counters
// for reporting.
package cache
