// Package templates loads task templates from YAML files and keeps them
// hot-reloadable.
//
// A template describes one category of benchmark task and carries the
// routing hint the task's generation requests should be routed with. The
// Registry indexes templates by name; the Watcher reloads the registry
// when template files change on disk.
package templates
