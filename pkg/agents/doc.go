// Package agents implements the generation stages that turn task
// templates into benchmark tasks.
//
// Each stage calls the router with a hint derived from its input and
// retries the whole attempt, response parsing included, up to three
// times. Every call a stage makes is attributed to the task's UUID in
// the cost tracker.
package agents
