package credibility

import "testing"

func testProfiles() map[Tier]Profile {
	return map[Tier]Profile{
		TierPremium:    {Weight: 1.0, Sources: []string{"Reuters", "BBC News", "Le Monde"}},
		TierThinkTank:  {Weight: 0.9, Sources: []string{"ISW", "RUSI"}},
		TierRegional:   {Weight: 0.85, Sources: []string{"Kyiv Independent", "Meduza", "Arctic Today"}},
		TierStandard:   {Weight: 0.6, Sources: []string{"CNN", "Sky News"}},
		TierAggregator: {Weight: 0.4, Sources: []string{"GDELT"}},
		TierSocial:     {Weight: 0.3, Sources: []string{"Reddit", "r/"}},
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		profiles map[Tier]Profile
		wantErr  bool
	}{
		{
			name:     "valid profiles",
			profiles: testProfiles(),
			wantErr:  false,
		},
		{
			name:     "empty table",
			profiles: map[Tier]Profile{},
			wantErr:  true,
		},
		{
			name: "weight above 1",
			profiles: map[Tier]Profile{
				TierPremium: {Weight: 1.5, Sources: []string{"Reuters"}},
			},
			wantErr: true,
		},
		{
			name: "zero weight",
			profiles: map[Tier]Profile{
				TierSocial: {Weight: 0.0, Sources: []string{"Reddit"}},
			},
			wantErr: true,
		},
		{
			name: "non-monotonic tiers",
			profiles: map[Tier]Profile{
				TierPremium: {Weight: 0.5, Sources: []string{"Reuters"}},
				TierSocial:  {Weight: 0.9, Sources: []string{"Reddit"}},
			},
			wantErr: true,
		},
		{
			name: "unknown tier",
			profiles: map[Tier]Profile{
				Tier("tabloid"): {Weight: 0.2, Sources: []string{"The Daily Blah"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.profiles)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWeightFor(t *testing.T) {
	table, err := New(testProfiles())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name     string
		sourceID string
		want     float64
	}{
		{"exact premium", "Reuters", 1.0},
		{"case-insensitive", "reuters", 1.0},
		{"feed-reported long name", "BBC News Europe", 1.0},
		{"think tank", "ISW", 0.9},
		{"regional", "Meduza", 0.85},
		{"aggregator domain", "GDELT", 0.4},
		{"subreddit", "r/ukraine", 0.3},
		{"unknown source falls back", "Random Blog Online", 0.5},
		{"empty source gets lowest weight", "", 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.WeightFor(tt.sourceID); got != tt.want {
				t.Errorf("WeightFor(%q) = %v, want %v", tt.sourceID, got, tt.want)
			}
		})
	}
}

func TestWeightMonotonicDownTierOrder(t *testing.T) {
	table, err := New(testProfiles())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	representatives := []string{"Reuters", "ISW", "Meduza", "CNN", "GDELT", "Reddit"}
	prev := 1.0
	for _, src := range representatives {
		w := table.WeightFor(src)
		if w > prev {
			t.Errorf("weight for %s (%v) exceeds higher tier weight (%v)", src, w, prev)
		}
		prev = w
	}
}

func TestTierFor(t *testing.T) {
	table, err := New(testProfiles())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if tier, ok := table.TierFor("Kyiv Independent"); !ok || tier != TierRegional {
		t.Errorf("TierFor(Kyiv Independent) = %v, %v; want regional, true", tier, ok)
	}
	if _, ok := table.TierFor("Unheard Of Gazette"); ok {
		t.Error("TierFor should not match unknown sources")
	}
}
