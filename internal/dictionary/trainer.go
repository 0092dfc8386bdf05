// Package dictionary collects file samples from a pack build and turns
// them into a shared zstd dictionary for the archive writer.
//
// klauspost/compress/zstd does not expose the COVER training algorithm
// that reference zstd ships (ZDICT_trainFromBuffer); it only consumes
// dictionaries, via zstd.WithEncoderDict / zstd.WithDecoderDicts. This
// package therefore builds a "raw content" dictionary instead of a
// statistically trained one: it concatenates a byte-budgeted, randomly
// ordered sample of file contents, which zstd accepts as raw-content
// history (zstd.WithEncoderDictRaw / zstd.WithDecoderDictRaw, as used by
// internal/zstdcodec). See DESIGN.md for why this substitution was
// necessary.
package dictionary

import (
	"hash/fnv"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
)

// Sample is one candidate file payload for dictionary training,
// identified by its archive-relative path for deterministic seeding.
type Sample struct {
	Path string
	Data []byte
}

// minTrainableBytes is the floor below which training is skipped
// entirely and the writer proceeds with no dictionary (§4.2 step 3).
const minTrainableBytes = 100

// Train selects samples in a deterministic, seeded pseudo-random order
// until the cumulative size reaches trainSize (or the samples are
// exhausted), then returns the concatenation, truncated to dictSize, as
// the dictionary blob. It returns (nil, false) when the sample is too
// small to bother training from.
//
// The random order is seeded from the sorted sample paths, so two
// independent runs over the same input tree pick the same order and
// therefore the same dictionary bytes — required for the hash-stability
// property (§8.3).
func Train(samples []Sample, trainSize, dictSize int) ([]byte, bool) {
	if len(samples) == 0 {
		return nil, false
	}

	ordered := append([]Sample(nil), samples...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Path < ordered[j].Path })

	seed := seedFromPaths(ordered)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(ordered), func(i, j int) { ordered[i], ordered[j] = ordered[j], ordered[i] })

	var total int
	var picked [][]byte
	for _, s := range ordered {
		if total >= trainSize {
			break
		}
		picked = append(picked, s.Data)
		total += len(s.Data)
	}

	if total < minTrainableBytes {
		logrus.WithField("sampled_bytes", total).Warn("dictionary: sample too small, packing without a dictionary")
		return nil, false
	}

	dict := make([]byte, 0, min(total, dictSize))
	for _, d := range picked {
		if len(dict) >= dictSize {
			break
		}
		room := dictSize - len(dict)
		if len(d) > room {
			d = d[:room]
		}
		dict = append(dict, d...)
	}

	return dict, true
}

func seedFromPaths(samples []Sample) int64 {
	h := fnv.New64a()
	for _, s := range samples {
		_, _ = h.Write([]byte(s.Path))
		_, _ = h.Write([]byte{0})
	}
	return int64(h.Sum64())
}
