package analysis

import (
	_ "embed"
	"strings"
)

//go:embed prompts/batch_analysis.txt
var batchPromptTemplate string

const (
	firstAttemptInstruction = "Follow the schema exactly for every product."
	retryInstruction        = "This is a retry because the previous response was not valid JSON. Ensure the output is a JSON object that matches the schema exactly."
)

// buildBatchPrompt renders the analysis prompt for one chunk. Attempts
// after the first carry an explicit invalid-JSON correction instruction.
func buildBatchPrompt(query string, productBlocks []string, attempt int) string {
	extra := firstAttemptInstruction
	if attempt > 0 {
		extra = retryInstruction
	}
	replacer := strings.NewReplacer(
		"{{QUERY}}", query,
		"{{PRODUCT_BLOCKS}}", strings.Join(productBlocks, "\n\n"),
		"{{EXTRA_INSTRUCTIONS}}", extra,
	)
	return replacer.Replace(batchPromptTemplate)
}
