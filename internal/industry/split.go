package industry

// splitRuns splits a node's total runs into job batches. Two limits
// apply: a per-blueprint cap on runs per job (0 = uncapped) and the
// project-wide wall-clock limit per job.
//
// When a single run already exceeds the wall-clock limit the time-based
// limit degrades to one run per batch rather than failing the node.
func splitRuns(totalRuns, timePerRun, maxRunsPerBlueprint, maxJobDuration int64) []int64 {
	if totalRuns <= 0 {
		return nil
	}

	perBatch := totalRuns
	if timePerRun > 0 && maxJobDuration > 0 {
		byTime := maxJobDuration / timePerRun
		if byTime < 1 {
			byTime = 1
		}
		if byTime < perBatch {
			perBatch = byTime
		}
	}
	if maxRunsPerBlueprint > 0 && maxRunsPerBlueprint < perBatch {
		perBatch = maxRunsPerBlueprint
	}

	batches := make([]int64, 0, totalRuns/perBatch+1)
	for remaining := totalRuns; remaining > 0; {
		n := perBatch
		if remaining < n {
			n = remaining
		}
		batches = append(batches, n)
		remaining -= n
	}
	return batches
}
