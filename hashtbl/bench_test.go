package hashtbl

import (
	"testing"
	"time"

	"github.com/aclements/go-perfevent/perfbench"
	"github.com/zeebo/mwc"

	"github.com/qrtrack/qrtrack/num"
	"github.com/qrtrack/qrtrack/testhelp"
)

func BenchmarkSearch(b *testing.B) {
	run := func(b *testing.B, n int, load float64) {
		fs := testhelp.FS(b)
		tb, err := Open[num.U64, *num.U64](fs, Options{Capacity: n, Path: "bench.bin"})
		if err != nil {
			b.Fatal(err)
		}

		rng := mwc.New(1, 1)
		keys := make([]num.U64, int(float64(n)*load))
		for i := range keys {
			keys[i] = num.U64(rng.Uint64())
		}
		if _, err := tb.Fill(keys); err != nil {
			b.Fatal(err)
		}

		now := time.Now()
		perfbench.Open(b)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			tb.Search(keys[i%len(keys)])
		}

		b.ReportMetric(float64(time.Since(now))/float64(b.N), "ns/search")
	}

	b.Run("365/0.5", func(b *testing.B) { run(b, 365, 0.5) })
	b.Run("365/0.9", func(b *testing.B) { run(b, 365, 0.9) })
	b.Run("1e5/0.5", func(b *testing.B) { run(b, 1e5, 0.5) })
	b.Run("1e5/0.9", func(b *testing.B) { run(b, 1e5, 0.9) })
}
