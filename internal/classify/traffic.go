package classify

import "sort"

// TopPerBucket is how many domains per traffic bucket get the priority flag.
const TopPerBucket = 25

// TrafficMetric is one domain's fitted traffic-trend row. Rows are already
// filtered upstream to buckets of interest with a meaningful mean.
type TrafficMetric struct {
	CompanyID       int64
	Domain          string
	Bucket          string
	RSquared        float64
	Last3MonthsMean float64
}

// TrafficFlag is the ranked output for one domain.
type TrafficFlag struct {
	TrafficMetric
	Rank       int
	IsPriority bool
}

// RankTraffic ranks domains within each traffic bucket by goodness of fit
// (r², descending) and flags the top TopPerBucket of each bucket as
// traffic priorities. Ties share the minimum rank, so a bucket can flag
// more than TopPerBucket domains when the boundary is tied.
func RankTraffic(metrics []TrafficMetric) []TrafficFlag {
	byBucket := make(map[string][]TrafficMetric)
	for _, m := range metrics {
		byBucket[m.Bucket] = append(byBucket[m.Bucket], m)
	}

	flags := make([]TrafficFlag, 0, len(metrics))
	for _, bucket := range byBucket {
		ranked := make([]TrafficMetric, len(bucket))
		copy(ranked, bucket)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].RSquared > ranked[j].RSquared
		})

		for _, m := range ranked {
			// Minimum rank: 1 + number of strictly better fits.
			rank := 1
			for _, other := range ranked {
				if other.RSquared > m.RSquared {
					rank++
				}
			}
			flags = append(flags, TrafficFlag{
				TrafficMetric: m,
				Rank:          rank,
				IsPriority:    rank <= TopPerBucket,
			})
		}
	}

	sort.SliceStable(flags, func(i, j int) bool {
		if flags[i].Bucket != flags[j].Bucket {
			return flags[i].Bucket < flags[j].Bucket
		}
		return flags[i].Rank < flags[j].Rank
	})
	return flags
}
