package integration

import (
	"sync"
	"testing"
	"time"

	"github.com/iwvelando/dcf-valuation/internal/valuation"
	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/testutil"
	"go.uber.org/zap"
)

// TestPerformanceLongHorizon checks that long projection periods stay cheap.
func TestPerformanceLongHorizon(t *testing.T) {
	service := valuation.NewService(zap.NewNop(), dcf.Bounds{}, nil)
	input := testutil.InputWith(map[string]interface{}{constants.FieldYears: 1000})

	start := time.Now()
	for i := 0; i < 1000; i++ {
		report, err := service.Value(input)
		if err != nil {
			t.Fatalf("Value() error = %v", err)
		}
		if len(report.Result.Projections) != 1000 {
			t.Fatalf("expected 1000 projections, got %d", len(report.Result.Projections))
		}
	}
	elapsed := time.Since(start)

	if elapsed > 10*time.Second {
		t.Errorf("1000 valuations of 1000 years took %v", elapsed)
	}
	t.Logf("1000 valuations of 1000 years took %v", elapsed)
}

// TestConcurrentValuations shares one service across goroutines.
func TestConcurrentValuations(t *testing.T) {
	service := valuation.NewService(zap.NewNop(), dcf.Bounds{}, nil)
	baseline, err := service.Value(testutil.ReferenceInput())
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	want := baseline.Result.EnterpriseValue

	const workers = 16
	const perWorker = 200

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	results := make(chan float64, workers*perWorker)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				report, err := service.Value(testutil.ReferenceInput())
				if err != nil {
					errs <- err
					return
				}
				results <- report.Result.EnterpriseValue
			}
		}()
	}
	wg.Wait()
	close(errs)
	close(results)

	for err := range errs {
		t.Fatalf("Value() error = %v", err)
	}
	count := 0
	for ev := range results {
		count++
		if ev != want {
			t.Fatalf("expected bit-identical enterprise value %v, got %v", want, ev)
		}
	}
	if count != workers*perWorker {
		t.Fatalf("expected %d results, got %d", workers*perWorker, count)
	}
}

func BenchmarkServiceValue(b *testing.B) {
	service := valuation.NewService(zap.NewNop(), dcf.Bounds{}, nil)
	input := testutil.ReferenceInput()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := service.Value(input); err != nil {
			b.Fatal(err)
		}
	}
}
