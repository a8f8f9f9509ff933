package dealscore

import (
	"testing"

	"dealstack-api/internal/models"
)

func TestScore_FlatOutranksSmallPercent(t *testing.T) {
	flat := Score("$60 back on your next purchase")
	pct := Score("2% back on groceries")

	if flat.FinalScore <= pct.FinalScore {
		t.Errorf("Expected $60 flat (%v) to outrank 2%% (%v)", flat.FinalScore, pct.FinalScore)
	}
}

func TestScore_MinSpendPenalty(t *testing.T) {
	noThreshold := Score("$60 back")
	withThreshold := Score("$60 back on $300+ spend")

	if withThreshold.FinalScore >= noThreshold.FinalScore {
		t.Errorf("Expected min-spend offer (%v) to score below unconditional offer (%v)",
			withThreshold.FinalScore, noThreshold.FinalScore)
	}
}

func TestScore_SpendThresholdNotScoredAsFlatReward(t *testing.T) {
	got := Score("Spend $100, get 10% back")

	// 10% scores on the percent track only; $100 is the threshold,
	// not a flat reward.
	if got.FinalScore != 25 {
		t.Errorf("Expected score 25 for a 10%% offer, got %v", got.FinalScore)
	}
	if got.Band != models.BandLow {
		t.Errorf("Expected band Low, got %s", got.Band)
	}
}

func TestScore_BoundedAndBanded(t *testing.T) {
	cases := []string{
		"$60 back (20%) on $300+ spend",
		"$5,000 back",
		"100% off everything",
		"2% back",
		"earn $1 with $10,000+ spend",
		"nonsense marketing copy",
		"",
	}

	for _, raw := range cases {
		got := Score(raw)
		if got.FinalScore < 0 || got.FinalScore > 100 {
			t.Errorf("Score(%q) = %v, outside [0,100]", raw, got.FinalScore)
		}
		if got.Band != BandFor(got.FinalScore) {
			t.Errorf("Score(%q): band %s does not match score %v", raw, got.Band, got.FinalScore)
		}
	}
}

func TestBandFor_CutPoints(t *testing.T) {
	cases := []struct {
		score float64
		want  models.ScoreBand
	}{
		{100, models.BandElite},
		{80, models.BandElite},
		{79.9, models.BandStrong},
		{60, models.BandStrong},
		{59.9, models.BandDecent},
		{40, models.BandDecent},
		{39.9, models.BandLow},
		{0, models.BandLow},
	}

	for _, tc := range cases {
		if got := BandFor(tc.score); got != tc.want {
			t.Errorf("BandFor(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestScore_UnknownFallsBackToZeroLow(t *testing.T) {
	got := Score("limited time only!")

	if got.FinalScore != 0 {
		t.Errorf("Expected score 0 for unparseable offer, got %v", got.FinalScore)
	}
	if got.Band != models.BandLow {
		t.Errorf("Expected band Low, got %s", got.Band)
	}
}
