// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import "time"

const (
	// ProtectionStartOffset is how long after a shot the protection starts dropping (3h40m)
	ProtectionStartOffset = 220 * time.Minute

	// ProtectionEndOffset is how long after a shot the combatant is open again (4h20m)
	ProtectionEndOffset = 260 * time.Minute

	// SkillCooldown is the fixed cooldown after a skill is used
	SkillCooldown = 24 * time.Hour
)

// Window is the dropping interval [Start, End) that follows a shot
type Window struct {
	Start time.Time
	End   time.Time
}

// ComputeWindow maps a trigger instant to its protection window
func ComputeWindow(trigger time.Time) Window {
	return Window{
		Start: trigger.Add(ProtectionStartOffset),
		End:   trigger.Add(ProtectionEndOffset),
	}
}

// CooldownExpiry returns the instant a skill used at trigger becomes available again
func CooldownExpiry(trigger time.Time) time.Time {
	return trigger.Add(SkillCooldown)
}
