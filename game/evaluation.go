package game

// evaluationBand maps a reaction-time upper bound to a grade message
type evaluationBand struct {
	maxMs   int
	message string
}

// bands are checked in order; the first band whose bound exceeds the
// reaction time wins
var evaluationBands = []evaluationBand{
	{200, "⚡ 超人的！"},
	{250, "🔥 素晴らしい！"},
	{300, "👍 良い反応！"},
	{400, "😊 まずまず"},
	{500, "😅 もう少し"},
}

const evaluationFallback = "😴 練習あるのみ！"

// Evaluation returns the grade message for a reaction time in
// milliseconds
func Evaluation(reactionMs int) string {
	for _, band := range evaluationBands {
		if reactionMs < band.maxMs {
			return band.message
		}
	}
	return evaluationFallback
}
