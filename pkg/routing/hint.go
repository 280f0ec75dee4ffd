package routing

// Difficulty levels with routing significance. Other strings are accepted
// and simply carry no weight.
const (
	DifficultyEasy   = "easy"
	DifficultySimple = "simple"
	DifficultyHard   = "hard"
	DifficultyExpert = "expert"
)

// TaskHint carries optional knowledge about the task being routed so that
// selection strategies can make better choices. The zero value is a valid
// "no hints" value.
type TaskHint struct {
	// Category is the task category (e.g. "code_generation").
	Category string

	// Difficulty is the task difficulty level (e.g. "easy", "hard").
	Difficulty string

	// EstimatedTokens is the expected response length in tokens.
	// Zero means unknown; strategies then assume DefaultOutputTokens.
	EstimatedTokens int

	// RequiresLongContext marks tasks needing a large context window.
	RequiresLongContext bool

	// RequiresCodeGeneration marks tasks needing code generation quality.
	RequiresCodeGeneration bool
}

// NewTaskHint creates an empty hint.
func NewTaskHint() TaskHint {
	return TaskHint{}
}

// WithCategory returns a copy of the hint with the category set.
func (h TaskHint) WithCategory(category string) TaskHint {
	h.Category = category
	return h
}

// WithDifficulty returns a copy of the hint with the difficulty set.
func (h TaskHint) WithDifficulty(difficulty string) TaskHint {
	h.Difficulty = difficulty
	return h
}

// WithEstimatedTokens returns a copy of the hint with the expected response
// length set.
func (h TaskHint) WithEstimatedTokens(tokens int) TaskHint {
	h.EstimatedTokens = tokens
	return h
}

// WithLongContext returns a copy of the hint marked as long context.
func (h TaskHint) WithLongContext() TaskHint {
	h.RequiresLongContext = true
	return h
}

// WithCodeGeneration returns a copy of the hint marked as code generation.
func (h TaskHint) WithCodeGeneration() TaskHint {
	h.RequiresCodeGeneration = true
	return h
}

// isHardTask reports whether the difficulty justifies weighting reasoning.
func (h TaskHint) isHardTask() bool {
	return h.Difficulty == DifficultyHard || h.Difficulty == DifficultyExpert
}

// isEasyTask reports whether the difficulty justifies weighting speed.
func (h TaskHint) isEasyTask() bool {
	return h.Difficulty == DifficultyEasy || h.Difficulty == DifficultySimple
}
