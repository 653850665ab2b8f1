package report

import (
	"strings"
	"testing"

	"gotreat/domain/treatment"
)

func sampleScores() treatment.ScoreFrame {
	return treatment.ScoreFrame{
		{Variable: "usage_clean", Origin: "usage", Code: treatment.CodeClean,
			RSquared: 0.31, Significance: 1e-9, Moves: true, Threshold: 0.25, Recommended: true},
		{Variable: "noise_clean", Origin: "noise", Code: treatment.CodeClean,
			RSquared: 0.002, Significance: 0.6, Moves: true, Threshold: 0.25},
		{Variable: "plan_catB", Origin: "plan", Code: treatment.CodeCatB,
			RSquared: 0.18, Significance: 1e-5, Moves: true, Threshold: 0.25, Recommended: true},
	}
}

func TestMarkdown_SortedBySignificance(t *testing.T) {
	out := Markdown("Churn treatment", sampleScores())

	if !strings.HasPrefix(out, "# Churn treatment\n") {
		t.Error("report must open with the title heading")
	}
	if !strings.Contains(out, "3 derived variables, 2 recommended.") {
		t.Errorf("summary line missing or wrong:\n%s", out)
	}

	// Most significant first
	usage := strings.Index(out, "usage_clean")
	plan := strings.Index(out, "plan_catB")
	noise := strings.Index(out, "noise_clean")
	if usage == -1 || plan == -1 || noise == -1 {
		t.Fatal("all variables must appear in the table")
	}
	if !(usage < plan && plan < noise) {
		t.Error("rows must be ordered by ascending significance")
	}
}

func TestMarkdown_EmptyScoreFrame(t *testing.T) {
	out := Markdown("Empty", nil)
	if !strings.Contains(out, "0 derived variables, 0 recommended.") {
		t.Errorf("empty score frame should still render the summary:\n%s", out)
	}
}

func TestHTML_RendersTable(t *testing.T) {
	out := string(HTML("Churn treatment", sampleScores()))
	if !strings.Contains(out, "<table>") {
		t.Error("HTML report must contain a rendered table")
	}
	if !strings.Contains(out, "usage_clean") {
		t.Error("HTML report must carry the variable names")
	}
	if !strings.Contains(out, "<h1") {
		t.Error("HTML report must carry the title heading")
	}
}
