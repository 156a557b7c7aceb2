package domain

// Question is one quiz question. Options 3 and 4 are optional: a question
// legitimately has either 2 or 4 options. Questions are immutable once
// loaded into a session.
type Question struct {
	ID          int64
	SubjectID   int64
	Level       int
	Prompt      string
	Options     []string
	Solution    int // 1-based option number of the correct answer
	Explanation string
}

// OptionCount returns the number of answer options.
func (q *Question) OptionCount() int {
	return len(q.Options)
}

// IsCorrect reports whether the given 1-based option number is the solution.
func (q *Question) IsCorrect(option int) bool {
	return option == q.Solution
}
