package scoring

import (
	"testing"
	"time"
)

func TestDecayAtZeroIsOne(t *testing.T) {
	if got := Decay(0, DefaultHalfLife); got != 1.0 {
		t.Errorf("Decay(0) = %v, want 1.0", got)
	}
}

func TestDecayHalfLife(t *testing.T) {
	got := Decay(48*time.Hour, 48*time.Hour)
	if got < 0.499 || got > 0.501 {
		t.Errorf("Decay(one half-life) = %v, want 0.5", got)
	}

	got = Decay(96*time.Hour, 48*time.Hour)
	if got < 0.249 || got > 0.251 {
		t.Errorf("Decay(two half-lives) = %v, want 0.25", got)
	}
}

func TestDecayMonotonicallyNonIncreasing(t *testing.T) {
	prev := 1.0
	for age := time.Duration(0); age <= 20*24*time.Hour; age += 6 * time.Hour {
		d := Decay(age, DefaultHalfLife)
		if d > prev {
			t.Fatalf("Decay(%v) = %v exceeds Decay at younger age %v", age, d, prev)
		}
		if d <= 0 || d > 1 {
			t.Fatalf("Decay(%v) = %v outside (0,1]", age, d)
		}
		prev = d
	}
}

func TestDecayNegativeAgeClamped(t *testing.T) {
	if got := Decay(-time.Hour, DefaultHalfLife); got != 1.0 {
		t.Errorf("Decay(negative age) = %v, want 1.0", got)
	}
}

func TestDecayZeroHalfLifeUsesDefault(t *testing.T) {
	if got, want := Decay(48*time.Hour, 0), Decay(48*time.Hour, DefaultHalfLife); got != want {
		t.Errorf("Decay with zero half-life = %v, want default behavior %v", got, want)
	}
}
