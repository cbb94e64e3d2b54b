package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lixenwraith/courier/render"
	"github.com/lixenwraith/courier/session"
	"github.com/lixenwraith/courier/tracking"
)

// printSummary writes one block per agent with its aggregated telemetry
func printSummary(w io.Writer, runner *session.Runner, outcomes []session.Outcome, elapsed time.Duration) {
	solved := make(map[string]int)
	fallbacks := make(map[string]int)
	fitness := make(map[string]float64)
	played := make(map[string]int)
	var gaTotal time.Duration
	for _, o := range outcomes {
		if o.Telemetry.Solved {
			solved[o.Agent]++
		}
		if o.Fallback {
			fallbacks[o.Agent]++
		}
		fitness[o.Agent] += o.Fitness
		played[o.Agent]++
		gaTotal += o.Elapsed
	}

	fmt.Fprintf(w, "run %s: %s outcomes in %v (GA %v)\n",
		runner.RunID(), humanize.Comma(int64(len(outcomes))), elapsed.Round(time.Millisecond), gaTotal.Round(time.Millisecond))

	summary := runner.Summary()
	levels := runner.Levels()
	for i, name := range runner.Agents() {
		b := summary[name]
		runs := int64(b.Get(tracking.MetricRuns, 0))
		avgFitness := 0.0
		if n := played[name]; n > 0 {
			avgFitness = fitness[name] / float64(n)
		}
		fmt.Fprintf(w, "  %-9s level %2d  solved %s/%s  avg steps %s  avg attempts %s  avg fitness %s",
			name,
			levels[i],
			humanize.Comma(int64(solved[name])),
			humanize.Comma(runs),
			humanize.FtoaWithDigits(b.Get("avg_"+tracking.MetricSteps, 0), 1),
			humanize.FtoaWithDigits(b.Get("avg_"+tracking.MetricAttempts, 0), 2),
			humanize.FtoaWithDigits(avgFitness, 3),
		)
		if n := fallbacks[name]; n > 0 {
			fmt.Fprintf(w, "  fallback %d", n)
		}
		fmt.Fprintln(w)
	}
}

// printMaps writes every agent's next map
func printMaps(w io.Writer, runner *session.Runner) {
	levels := runner.Levels()
	maps := runner.Maps()
	for i, name := range runner.Agents() {
		fmt.Fprintf(w, "\n%s (difficulty %d)\n%s\n", name, levels[i], render.Text(maps[i], nil))
	}
}
