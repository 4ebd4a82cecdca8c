// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package render decides how a document should be presented: the
// rendering mode (full tree or virtualized windowing) and a
// performance level that front ends surface as a badge. The decision
// is a pure function of the structural profile and the measured
// analysis duration, so the same document always gets the same
// strategy.
package render

import (
	"time"

	"github.com/jsonlens/jsonlens/lib/analysis"
)

// Mode selects the rendering path.
type Mode uint8

const (
	// ModeSimple renders the whole tree at once.
	ModeSimple Mode = iota
	// ModeVirtualized renders a window over the tree, materializing
	// nodes on demand.
	ModeVirtualized
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case ModeSimple:
		return "simple"
	case ModeVirtualized:
		return "virtualized"
	default:
		return "unknown"
	}
}

// Level grades how well the document is expected to perform in the
// viewer, from Excellent (no concerns) to Critical (expect visible
// lag even virtualized).
type Level uint8

const (
	// LevelExcellent marks documents with no performance concerns.
	LevelExcellent Level = iota
	// LevelGood marks documents with minor weight.
	LevelGood
	// LevelWarning marks documents likely to feel sluggish.
	LevelWarning
	// LevelCritical marks documents expected to lag noticeably.
	LevelCritical
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelExcellent:
		return "excellent"
	case LevelGood:
		return "good"
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Decision is the selected rendering strategy.
type Decision struct {
	// Mode is the rendering path.
	Mode Mode

	// Level is the performance grade.
	Level Level
}

const mib = 1 << 20

// Mode selection boundaries. Size alone above forceVirtualizeSize
// always virtualizes; above virtualizeSize, or with heavy structure,
// virtualization kicks in too.
const (
	forceVirtualizeSize = 100 * mib
	virtualizeSize      = 20 * mib
	virtualizeNodeCount = 500_000
)

// Select decides the rendering strategy for a profiled document.
// elapsed is the measured analysis duration; it stands in for how
// expensive the document is to process, so a slow analysis degrades
// the level even for a modest-sized document.
func Select(profile *analysis.Profile, elapsed time.Duration) Decision {
	return Decision{
		Mode:  selectMode(profile),
		Level: selectLevel(profile.Size, elapsed),
	}
}

func selectMode(profile *analysis.Profile) Mode {
	if profile.Size > forceVirtualizeSize {
		return ModeVirtualized
	}
	if profile.Size > virtualizeSize ||
		profile.NodeCount > virtualizeNodeCount ||
		len(profile.LargeArrays) > 0 ||
		len(profile.DeepObjects) > 0 {
		return ModeVirtualized
	}
	return ModeSimple
}

// selectLevel grades size and analysis time on matching four-point
// scales and takes the worse of the two.
func selectLevel(size int64, elapsed time.Duration) Level {
	sizeScore := 0
	switch {
	case size > 500*mib:
		sizeScore = 4
	case size > 100*mib:
		sizeScore = 3
	case size > 20*mib:
		sizeScore = 2
	case size > 5*mib:
		sizeScore = 1
	}

	timeScore := 0
	switch {
	case elapsed > 5*time.Second:
		timeScore = 4
	case elapsed > 2*time.Second:
		timeScore = 3
	case elapsed > time.Second:
		timeScore = 2
	case elapsed > 500*time.Millisecond:
		timeScore = 1
	}

	score := sizeScore
	if timeScore > score {
		score = timeScore
	}
	switch score {
	case 4:
		return LevelCritical
	case 3:
		return LevelWarning
	case 2, 1:
		return LevelGood
	default:
		return LevelExcellent
	}
}
