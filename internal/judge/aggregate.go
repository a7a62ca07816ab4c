package judge

import "algoforge/internal/domain/model"

const fallbackErrorMessage = "Execution Error"

// Outcome is the reduction of one batch's terminal results into a single
// submission verdict.
type Outcome struct {
	Status          model.SubmissionStatus
	TestCasesPassed int
	Runtime         float64 // max elapsed seconds among passed cases
	Memory          int     // max KB among passed cases
	ErrorMessage    *string
}

// Aggregate reduces the per-case results of one submission attempt. Runtime
// and memory report the worst case among passed entries, not a sum. The
// first non-passing case fixes the verdict and message; later failures never
// overwrite it. Callers guarantee at least one result (problems cannot be
// created without test cases).
func Aggregate(results []Result) Outcome {
	out := Outcome{Status: model.StatusAccepted}

	for _, r := range results {
		if r.StatusID == StatusAccepted {
			out.TestCasesPassed++
			if r.Time > out.Runtime {
				out.Runtime = r.Time
			}
			if r.Memory > out.Memory {
				out.Memory = r.Memory
			}
			continue
		}

		if out.Status != model.StatusAccepted {
			continue
		}
		if r.StatusID == StatusWrongAnswer {
			out.Status = model.StatusWrong
		} else {
			out.Status = model.StatusError
		}
		msg := firstNonEmpty(r.Stderr, r.CompileOutput, r.Message, fallbackErrorMessage)
		out.ErrorMessage = &msg
	}

	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
