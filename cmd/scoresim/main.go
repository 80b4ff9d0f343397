// scoresim scores a batch of raw records offline and prints the assessment
// breakdown. Useful for tuning lexicon weights and baselines against a
// captured sample without running the service.
//
// Input is a JSON array of raw records on stdin or via -input:
//
//	[{"title": "...", "published_at": "2026-08-25T10:00:00Z", "source_name": "Reuters"}, ...]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/asifah/stormwatch/internal/config"
	"github.com/asifah/stormwatch/internal/models"
	"github.com/asifah/stormwatch/internal/normalize"
	"github.com/asifah/stormwatch/internal/scoring"
)

var (
	inputPath  = flag.String("input", "-", "Path to JSON array of raw records, - for stdin")
	target     = flag.String("target", "poland", "Target to score against")
	configPath = flag.String("config", "", "Optional config file; built-in tables used when empty")
)

func main() {
	flag.Parse()

	cfg := &config.Config{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	} else {
		cfg.Sources = config.DefaultSources()
		cfg.Severity = config.DefaultSeverity()
		cfg.Baselines = config.DefaultBaselines()
	}

	cred, err := cfg.BuildCredibilityTable()
	if err != nil {
		fatalf("invalid credibility table: %v", err)
	}
	lex, err := cfg.BuildLexicon()
	if err != nil {
		fatalf("invalid severity lexicon: %v", err)
	}
	base, err := cfg.BuildBaselineTable()
	if err != nil {
		fatalf("invalid baseline table: %v", err)
	}

	raws, err := readRecords(*inputPath)
	if err != nil {
		fatalf("failed to read records: %v", err)
	}

	now := time.Now().UTC()
	events, skipped := normalize.NormalizeBatch(raws, "", *target, now)
	events = normalize.Dedupe(events)

	aggregator := scoring.NewAggregator(cred, lex, base, scoring.Options{
		HalfLife:        cfg.Scoring.HalfLife,
		Cutoff:          cfg.Scoring.Cutoff,
		MomentumEpsilon: cfg.Scoring.MomentumEpsilon,
	})

	assessment, err := aggregator.Assess(*target, events, nil)
	if err != nil {
		fatalf("assessment failed: %v", err)
	}

	printAssessment(assessment, len(raws), skipped)
}

func readRecords(path string) ([]models.RawRecord, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var raws []models.RawRecord
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("invalid JSON input: %w", err)
	}
	return raws, nil
}

func printAssessment(a *models.ThreatAssessment, total, skipped int) {
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("TARGET: %s\n", strings.ToUpper(a.Target))
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("Score:      %.1f\n", a.Score)
	fmt.Printf("Momentum:   %s\n", a.Momentum)
	fmt.Printf("Timeline:   %s\n", a.Timeline)
	fmt.Printf("Confidence: %s\n", a.Confidence)
	fmt.Printf("Raw signal: %.2f\n", a.RawSignal)
	fmt.Printf("Events:     %d scored (%d input, %d skipped as malformed)\n", a.EventCount, total, skipped)
	fmt.Println()

	if len(a.Contributors) == 0 {
		fmt.Println("No contributing events; score is the quiescent baseline.")
		return
	}

	fmt.Println("Top contributors:")
	for i, c := range a.Contributors {
		marker := "+"
		if c.IsDeescalation {
			marker = "-"
		}
		text := c.Event.Text
		if len(text) > 70 {
			text = text[:70] + "..."
		}
		fmt.Printf("%2d. [%s] %-22s w=%.2f sev=%.1f decay=%.2f net=%+.2f\n",
			i+1, marker, c.Event.SourceID, c.SourceWeight, c.SeveritySum, c.Decay,
			c.Contribution+c.Deescalation)
		fmt.Printf("      %s\n", text)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
