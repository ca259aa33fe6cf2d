package aggregate

import (
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

// Bucket is one stop-count range. Max is exclusive; the last bucket has none.
type Bucket struct {
	Label      string  `json:"label"`
	Min        int     `json:"min"`
	Max        *int    `json:"max,omitempty"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

var bucketBounds = []int{0, 80, 100, 120}

var bucketLabels = []string{"0-79", "80-99", "100-119", "120+"}

// Bucketize counts records per stop range. The ranges are fixed and do not
// follow the configured cutoff.
func Bucketize(records []workday.Record) []Bucket {
	buckets := make([]Bucket, len(bucketBounds))

	for i, lo := range bucketBounds {
		buckets[i] = Bucket{Label: bucketLabels[i], Min: lo}
		if i+1 < len(bucketBounds) {
			hi := bucketBounds[i+1]
			buckets[i].Max = &hi
		}
	}

	for _, r := range records {
		buckets[bucketIndex(r.Stops)].Count++
	}

	if len(records) == 0 {
		return buckets
	}

	for i := range buckets {
		buckets[i].Percentage = float64(buckets[i].Count) / float64(len(records)) * 100
	}

	return buckets
}

// bucketIndex puts negative counts, which validation never lets through, in
// the first bucket.
func bucketIndex(stops int) int {
	for i := len(bucketBounds) - 1; i > 0; i-- {
		if stops >= bucketBounds[i] {
			return i
		}
	}

	return 0
}
