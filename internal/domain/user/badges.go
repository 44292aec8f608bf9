package user

import "github.com/forgeline/reward-engine/internal/domain/shared"

// ══════════════════════════════════════════════════════════════════════════════
// BADGES
// ══════════════════════════════════════════════════════════════════════════════

// BadgeID identifies an earned badge.
type BadgeID string

const (
	// BadgeBigEarner marks a single coin transaction above the big-earner
	// threshold.
	BadgeBigEarner BadgeID = "big_earner"
	// BadgeLevel5 marks reaching level 5.
	BadgeLevel5 BadgeID = "level_5"
	// BadgeLevel10 marks reaching level 10.
	BadgeLevel10 BadgeID = "level_10"
)

// BadgeDefinition describes a badge in the catalog.
type BadgeDefinition struct {
	ID          BadgeID
	Name        string
	Description string

	// Level is the milestone that grants the badge, 0 when the badge is
	// not level-gated.
	Level int
}

// BadgeCatalog returns every badge the engine can grant.
func BadgeCatalog() []BadgeDefinition {
	return []BadgeDefinition{
		{ID: BadgeBigEarner, Name: "Big Earner", Description: "Earned over 100 coins in a single transaction"},
		{ID: BadgeLevel5, Name: "Apprentice", Description: "Reached level 5", Level: 5},
		{ID: BadgeLevel10, Name: "Master", Description: "Reached level 10", Level: 10},
	}
}

// LevelBadge returns the milestone badge for a level, if the catalog
// defines one.
func LevelBadge(l shared.Level) (BadgeID, bool) {
	for _, def := range BadgeCatalog() {
		if def.Level != 0 && def.Level == l.Int() {
			return def.ID, true
		}
	}
	return "", false
}
