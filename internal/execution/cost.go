package execution

// Token accounting is a flat estimate: a full report+blog generation runs
// around 15K tokens, billed at an averaged input/output rate.
const (
	EstimatedTokensPerJob = 15000

	// USD per 1K tokens, averaged across input and output pricing.
	costPerThousandTokens = 0.045
)

// EstimateCost maps a token count to an estimated cost in USD. Pure and
// deterministic; the result is persisted on completed jobs and aggregated by
// the reporting endpoints.
func EstimateCost(tokens int) float64 {
	return float64(tokens) / 1000 * costPerThousandTokens
}
