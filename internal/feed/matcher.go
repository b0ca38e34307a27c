package feed

// Matched pairs an installs row with the white glove row sharing its order key.
type Matched struct {
	Install    Row
	WhiteGlove Row
}

// Match joins installs to whiteGlove on installKey = whiteGloveKey. Duplicate
// white glove keys keep the last row; unmatched installs are dropped.
func Match(installs, whiteGlove []Row, installKey, whiteGloveKey string) []Matched {
	index := make(map[string]Row, len(whiteGlove))
	for _, row := range whiteGlove {
		key := row.Get(whiteGloveKey)
		if key == "" {
			continue
		}
		index[key] = row
	}

	matched := make([]Matched, 0, len(installs))
	for _, row := range installs {
		key := row.Get(installKey)
		if key == "" {
			continue
		}
		wg, ok := index[key]
		if !ok {
			continue
		}
		matched = append(matched, Matched{Install: row, WhiteGlove: wg})
	}
	return matched
}
