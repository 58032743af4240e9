package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/unitematch/unitematch-api/internal/models"
)

func reportMarkdown(r *models.TrainingReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Training run %s\n\n", r.RunID)
	fmt.Fprintf(&sb, "- Model version: `%s`\n", r.ModelVersion)
	fmt.Fprintf(&sb, "- Algorithm: %s (tuned: %t)\n", r.Algorithm, r.Tuned)
	fmt.Fprintf(&sb, "- Trained at: %s\n", r.TrainedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "- Duration: %s\n\n", r.Duration)

	sb.WriteString("## Metrics\n\n| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Accuracy | %.4f |\n", r.Accuracy)
	fmt.Fprintf(&sb, "| Weighted F1 | %.4f |\n", r.F1Weighted)
	if r.Tuned {
		fmt.Fprintf(&sb, "| CV score | %.4f |\n", r.CVScore)
	}
	fmt.Fprintf(&sb, "| Synergy R² (%s) | %.4f |\n\n", r.SynergyMethod, r.SynergyR2)

	sb.WriteString("## Hyperparameters\n\n| Name | Value |\n|---|---|\n")
	keys := make([]string, 0, len(r.BestParams))
	for k := range r.BestParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "| %s | %v |\n", k, r.BestParams[k])
	}

	sb.WriteString("\n## Class balance\n\n| Label | Train | Balanced | Test |\n|---|---|---|---|\n")
	for _, l := range r.Labels {
		fmt.Fprintf(&sb, "| %s | %d | %d | %d |\n", l, r.TrainClassCounts[l], r.BalancedClassCounts[l], r.TestClassCounts[l])
	}

	sb.WriteString("\n## Feature importances\n\n| Feature | Splits |\n|---|---|\n")
	for _, fi := range r.FeatureImportances {
		fmt.Fprintf(&sb, "| %s | %g |\n", fi.Feature, fi.Importance)
	}

	sb.WriteString("\n![Feature importances](feature_importance.svg)\n\n![Confusion matrix](confusion_matrix.svg)\n")
	return sb.String()
}

func renderReport(r *models.TrainingReport) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Training run " + r.RunID,
	})
	return markdown.ToHTML([]byte(reportMarkdown(r)), p, renderer)
}
