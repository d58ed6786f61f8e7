package constants

const (
	// Rating bounds shared by every check-in field
	RatingMin     = 1.0
	RatingMax     = 10.0
	RatingStep    = 0.5
	DefaultRating = 5.0

	// StressMaxPenalty is the share of the score removed at stress=10.
	// stress=1 keeps the full score, stress=10 keeps 1-StressMaxPenalty of it.
	StressMaxPenalty = 0.35

	// Session length bounds for the check-in flow, in minutes
	MinSessionMin     = 15
	MaxSessionMin     = 180
	DefaultSessionMin = 60

	// Legacy consolidation: old entries were written every 15 minutes of a session
	LegacyMergeMinGapMin = 10.0
	LegacyMergeMaxGapMin = 20.0
	RatingEpsilon        = 1e-9

	// Insight thresholds
	MaxBestWindows        = 3
	PeakEfficiency        = 8.0
	StrongEfficiency      = 6.5
	SecondaryWindowMinGap = 120 // minutes between the top two windows before suggesting a split day
	// Reliability grows in tenths from 0.5 for one session; five or more sessions are fully reliable
	BaseReliabilityTenths   = 5
	FullReliabilitySessions = 5
	DefaultStartHour        = 12
	DefaultStartMinute      = 0
)

func init() {
	// Runtime validation: the stress factor must stay positive
	if StressMaxPenalty <= 0 || StressMaxPenalty >= 1 {
		panic("StressMaxPenalty must be in (0, 1)")
	}
	if LegacyMergeMinGapMin > LegacyMergeMaxGapMin {
		panic("LegacyMergeMinGapMin must not exceed LegacyMergeMaxGapMin")
	}
}
