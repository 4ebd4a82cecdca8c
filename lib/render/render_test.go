// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"testing"
	"time"

	"github.com/jsonlens/jsonlens/lib/analysis"
)

const mibTest = 1 << 20

func TestModeSelection(t *testing.T) {
	tests := []struct {
		name    string
		profile analysis.Profile
		want    Mode
	}{
		{
			name:    "huge document always virtualized",
			profile: analysis.Profile{Size: 101 * mibTest},
			want:    ModeVirtualized,
		},
		{
			name:    "large document virtualized",
			profile: analysis.Profile{Size: 21 * mibTest},
			want:    ModeVirtualized,
		},
		{
			name:    "node count alone virtualizes",
			profile: analysis.Profile{Size: 1 * mibTest, NodeCount: 500_001},
			want:    ModeVirtualized,
		},
		{
			name: "large array virtualizes a small document",
			profile: analysis.Profile{
				Size:        1 * mibTest,
				LargeArrays: []analysis.ArrayStat{{Path: ".data", Length: 5000}},
			},
			want: ModeVirtualized,
		},
		{
			name: "deep container virtualizes a small document",
			profile: analysis.Profile{
				Size:        1 * mibTest,
				DeepObjects: []analysis.ObjectStat{{Path: ".a.b", Depth: 12}},
			},
			want: ModeVirtualized,
		},
		{
			name:    "moderate document without heavy structure stays simple",
			profile: analysis.Profile{Size: 6 * mibTest, NodeCount: 10_000},
			want:    ModeSimple,
		},
		{
			name:    "small document stays simple",
			profile: analysis.Profile{Size: 4 * mibTest},
			want:    ModeSimple,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Select(&tt.profile, 100*time.Millisecond)
			if d.Mode != tt.want {
				t.Errorf("Mode = %v, want %v", d.Mode, tt.want)
			}
		})
	}
}

func TestLevelSelection(t *testing.T) {
	tests := []struct {
		name    string
		size    int64
		elapsed time.Duration
		want    Level
	}{
		{"tiny and fast", 1 * mibTest, 100 * time.Millisecond, LevelExcellent},
		{"moderate size", 6 * mibTest, 100 * time.Millisecond, LevelGood},
		{"large size", 21 * mibTest, 100 * time.Millisecond, LevelGood},
		{"very large size", 101 * mibTest, 100 * time.Millisecond, LevelWarning},
		{"huge size dominates fast analysis", 600 * mibTest, 200 * time.Millisecond, LevelCritical},
		{"slow analysis dominates small size", 1 * mibTest, 6 * time.Second, LevelCritical},
		{"slightly slow", 1 * mibTest, 700 * time.Millisecond, LevelGood},
		{"slow", 1 * mibTest, 1500 * time.Millisecond, LevelGood},
		{"quite slow", 1 * mibTest, 3 * time.Second, LevelWarning},
		{"worse axis wins", 600 * mibTest, 3 * time.Second, LevelCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Select(&analysis.Profile{Size: tt.size}, tt.elapsed)
			if d.Level != tt.want {
				t.Errorf("Level = %v, want %v", d.Level, tt.want)
			}
		})
	}
}

func TestLevelBoundariesExclusive(t *testing.T) {
	// Scores use strict inequalities: exactly at a breakpoint stays in
	// the lower band.
	tests := []struct {
		size    int64
		elapsed time.Duration
		want    Level
	}{
		{5 * mibTest, 0, LevelExcellent},
		{5*mibTest + 1, 0, LevelGood},
		{0, 500 * time.Millisecond, LevelExcellent},
		{0, 500*time.Millisecond + 1, LevelGood},
		{100 * mibTest, 0, LevelGood},
		{500 * mibTest, 0, LevelWarning},
		{0, 5 * time.Second, LevelWarning},
	}
	for _, tt := range tests {
		d := Select(&analysis.Profile{Size: tt.size}, tt.elapsed)
		if d.Level != tt.want {
			t.Errorf("size %d elapsed %v: Level = %v, want %v", tt.size, tt.elapsed, d.Level, tt.want)
		}
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	profile := &analysis.Profile{Size: 30 * mibTest, NodeCount: 100_000}
	first := Select(profile, 800*time.Millisecond)
	second := Select(profile, 800*time.Millisecond)
	if first != second {
		t.Errorf("identical inputs produced %+v and %+v", first, second)
	}
}
