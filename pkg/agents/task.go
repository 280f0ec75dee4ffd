package agents

import "time"

// TaskIdea is the output of the ideation stage: one proposed benchmark
// task, not yet backed by any code.
type TaskIdea struct {
	// ID uniquely identifies the task (UUID v4). Cost records made on the
	// task's behalf carry this ID.
	ID string

	// TemplateName is the name of the template the idea was generated from.
	TemplateName string

	// Title is a short descriptive title.
	Title string

	// Description describes the task scenario and its objectives.
	Description string

	// Difficulty is the model's difficulty estimate.
	Difficulty string

	// Skills lists the skills the task exercises.
	Skills []string

	// AntiPatterns lists solution approaches the task should resist.
	AntiPatterns []string

	// CreatedAt is when the idea was generated, in UTC.
	CreatedAt time.Time
}

// GeneratedTask is the output of the code generation stage: a task idea
// together with the code artifact that realizes it.
type GeneratedTask struct {
	// Idea is the task the code was generated for.
	Idea TaskIdea

	// Code is the generated source, with surrounding fences stripped.
	Code string

	// Model is the model identifier that produced the code.
	Model string

	// CreatedAt is when the code was generated, in UTC.
	CreatedAt time.Time
}
