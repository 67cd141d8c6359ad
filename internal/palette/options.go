package palette

import "runtime"

const (
	defaultWorkerCap = 8
	maxWorkerCap     = 12
)

var defaultQuantizeOptions = QuantizeOptions{
	MaxDimension:     220,
	Quality:          2,
	CandidateCount:   24,
	QuantizationBits: 5,
	AlphaThreshold:   16,
	MinDelta:         0.08,
	WorkerCount:      0,
}

// QuantizeOptions tunes the median-cut pass. Zero values pick defaults.
type QuantizeOptions struct {
	MaxDimension     int     `json:"maxDimension"`
	Quality          int     `json:"quality"`
	CandidateCount   int     `json:"candidateCount"`
	QuantizationBits int     `json:"quantizationBits"`
	AlphaThreshold   int     `json:"alphaThreshold"`
	IgnoreNearWhite  bool    `json:"ignoreNearWhite"`
	IgnoreNearBlack  bool    `json:"ignoreNearBlack"`
	MinDelta         float64 `json:"minDelta"`
	WorkerCount      int     `json:"workerCount"`
}

func DefaultQuantizeOptions() QuantizeOptions {
	return defaultQuantizeOptions
}

func NormalizeQuantizeOptions(options QuantizeOptions) QuantizeOptions {
	return options.normalized()
}

func (o QuantizeOptions) normalized() QuantizeOptions {
	normalized := o

	if normalized.MaxDimension <= 0 {
		normalized.MaxDimension = defaultQuantizeOptions.MaxDimension
	}
	normalized.MaxDimension = clampInt(normalized.MaxDimension, 32, 1024)

	if normalized.Quality <= 0 {
		normalized.Quality = defaultQuantizeOptions.Quality
	}
	normalized.Quality = clampInt(normalized.Quality, 1, 12)

	if normalized.CandidateCount <= 0 {
		normalized.CandidateCount = defaultQuantizeOptions.CandidateCount
	}
	normalized.CandidateCount = clampInt(normalized.CandidateCount, 2, 128)

	if normalized.QuantizationBits <= 0 {
		normalized.QuantizationBits = defaultQuantizeOptions.QuantizationBits
	}
	normalized.QuantizationBits = clampInt(normalized.QuantizationBits, 4, 6)

	normalized.AlphaThreshold = clampInt(normalized.AlphaThreshold, 0, 254)

	if normalized.MinDelta <= 0 {
		normalized.MinDelta = defaultQuantizeOptions.MinDelta
	}
	normalized.MinDelta = clampFloat(normalized.MinDelta, 0.01, 0.45)

	if normalized.WorkerCount <= 0 {
		defaultWorkers := runtime.GOMAXPROCS(0) - 1
		if defaultWorkers < 1 {
			defaultWorkers = 1
		}
		normalized.WorkerCount = minInt(defaultWorkers, defaultWorkerCap)
	}
	maxWorkers := maxInt(1, minInt(runtime.GOMAXPROCS(0), maxWorkerCap))
	normalized.WorkerCount = clampInt(normalized.WorkerCount, 1, maxWorkers)

	return normalized
}
