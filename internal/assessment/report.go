package assessment

import (
	"fmt"
	"strings"
)

// ReportText holds the wording of a test report.
type ReportText struct {
	Header        string
	Score         string // format verbs: correct, total, percentage
	Details       string
	YourAnswer    string
	CorrectAnswer string
}

// DefaultReportText is the English report wording.
var DefaultReportText = ReportText{
	Header:        "Test finished!",
	Score:         "Score: %d/%d (%d%%)",
	Details:       "Detailed answers:",
	YourAnswer:    "Your answer:",
	CorrectAnswer: "Correct answer:",
}

// Report renders the score and every (question, answer, correct) triple in
// the order asked.
func Report(ts *TestSession, text ReportText) string {
	var b strings.Builder
	b.WriteString(text.Header)
	b.WriteString("\n")
	fmt.Fprintf(&b, text.Score, ts.Correct, ts.Total(), Percentage(ts.Correct, ts.Total()))
	b.WriteString("\n\n")
	b.WriteString(text.Details)
	b.WriteString("\n")
	for i, r := range ts.Log {
		fmt.Fprintf(&b, "\n%d. %s\n%s %s\n%s %s\n", i+1, r.Question, text.YourAnswer, r.UserAnswer, text.CorrectAnswer, r.Correct)
	}
	return b.String()
}
