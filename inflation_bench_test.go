package inflation

import (
	"context"
	"os"
	"testing"

	"github.com/goccy/go-json"
	"github.com/pkg/profile"

	"github.com/aouyang1/go-inflation/config"
)

var benchAnalysis *Analysis

func BenchmarkComputeDataset(b *testing.B) {
	p := offlinePipeline()
	cfg := config.Default()

	b.ResetTimer()
	for b.Loop() {
		if _, err := p.ComputeDataset(context.Background(), cfg, nil); err != nil {
			panic(err)
		}
	}
}

func BenchmarkAnalyze(b *testing.B) {
	ds, err := offlinePipeline().ComputeDataset(context.Background(), config.Default(), nil)
	if err != nil {
		panic(err)
	}

	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for b.Loop() {
		benchAnalysis, err = Analyze(ds)
		if err != nil {
			panic(err)
		}
	}

	bytes, err := json.MarshalIndent(benchAnalysis.Fits, "", "  ")
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile("benchmark_fits.json", bytes, 0o644); err != nil {
		panic(err)
	}
}
