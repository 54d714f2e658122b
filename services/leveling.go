package services

// Leveling follows a triangular curve: each level-up costs 100 XP more than
// the previous one (L1→L2 = 100, L2→L3 = 200, ...), so the total XP required
// to reach level N is 100 * (N-1) * N / 2. XP never resets on level-up; the
// level is always derived from the lifetime total.

// LevelThreshold returns the total XP required to reach level n.
func LevelThreshold(n int) int {
	if n <= 1 {
		return 0
	}
	return 100 * (n - 1) * n / 2
}

// LevelForXP returns the highest level whose threshold is at or below xp.
// Minimum level is 1, even at zero XP.
func LevelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	level := 1
	threshold := 0
	for xp >= threshold {
		threshold += level * 100
		level++
	}
	return level - 1
}
