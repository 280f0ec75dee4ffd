// Taskforge generates synthetic benchmark tasks through a cost-governed,
// multi-model LLM routing layer.
//
// It routes generation requests across configured models using pluggable
// strategies, enforces daily and monthly budgets, deduplicates repeated
// prompts in an LRU cache, and persists usage history to a SQLite ledger.
//
// Usage:
//
//	# Generate tasks from the configured templates
//	taskforge run
//
//	# Generate from one template, three tasks
//	taskforge run --template code-review --count 3
//
//	# Validate the configuration file
//	taskforge validate
//
//	# Print a spending report from the ledger
//	taskforge report --since 720h
//
//	# Show version information
//	taskforge version
package main

func main() {
	Execute()
}
