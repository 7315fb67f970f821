package suite

import (
	"time"

	"cfgprobe/internal/trial"
)

// Results is the ordered outcome of a suite run.
type Results struct {
	RunID      string
	Family     trial.Family
	Models     []string
	StartedAt  time.Time
	FinishedAt time.Time
	Trials     []Trial
	Summary    Summary
}

// Trial is one slot of the models × cases grid. Model is the requested
// model; Result.Model may name the resolved variant instead.
type Trial struct {
	trial.Result
	RequestedModel string
	CaseIndex      int
}

// ModelSummary aggregates the trials of one model. Latency is the sum of
// the per-trial latencies.
type ModelSummary struct {
	Model     string
	Trials    int
	Parsed    int
	Checked   int
	Passed    int
	TokensIn  int
	TokensOut int
	Latency   time.Duration
}

// PassRate is Passed over Checked, or zero when nothing was checked.
func (s ModelSummary) PassRate() float64 {
	if s.Checked == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Checked)
}

// Summary holds per-model rows in model order plus a grand total.
type Summary struct {
	Models []ModelSummary
	Total  ModelSummary
}

// Summarize reduces trials into per-model counts. Models with no trials
// still get a zero row.
func Summarize(models []string, trials []Trial) Summary {
	rows := make([]ModelSummary, len(models))
	index := make(map[string]int, len(models))
	for i, model := range models {
		rows[i] = ModelSummary{Model: model}
		if _, seen := index[model]; !seen {
			index[model] = i
		}
	}
	total := ModelSummary{Model: "total"}
	for _, t := range trials {
		i, ok := index[t.RequestedModel]
		if !ok {
			rows = append(rows, ModelSummary{Model: t.RequestedModel})
			i = len(rows) - 1
			index[t.RequestedModel] = i
		}
		add(&rows[i], t.Result)
		add(&total, t.Result)
	}
	return Summary{Models: rows, Total: total}
}

func add(s *ModelSummary, r trial.Result) {
	s.Trials++
	if r.Parse.Accepted() {
		s.Parsed++
	}
	if pass, checked := r.Passed(); checked {
		s.Checked++
		if pass {
			s.Passed++
		}
	}
	s.TokensIn += r.TokensIn()
	s.TokensOut += r.TokensOut()
	s.Latency += r.Latency
}
