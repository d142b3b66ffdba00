package matrix

// NextFreeYear returns the smallest year in MinYear..MaxYear not present in used
// the scan is ascending and the first gap wins, so {1,2,4} yields 3
func NextFreeYear(used map[int]bool) (int, bool) {
	for y := MinYear; y <= MaxYear; y++ {
		if !used[y] {
			return y, true
		}
	}
	return 0, false
}
