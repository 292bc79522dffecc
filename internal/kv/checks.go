package kv

// Invalid reports whether cur looks like a transient frame that should not
// be trusted within the race described by baseline and prev (the last
// emitted state). exception selects the rules for tracks whose rank numerals
// are only shown for finished players.
func Invalid(cur, prev, baseline Screen, exception bool) bool {
	if cur.NPlayers != baseline.NPlayers {
		return true
	}
	players := cur.Active()

	if exception {
		if cur.done() == 0 {
			return true
		}
	} else {
		for _, p := range players {
			if p.Place == 0 {
				return true
			}
		}
	}

	for i, p := range players {
		if prev.Players[i].Lap != 0 && p.Lap == 0 {
			return true
		}
	}

	for i, p := range players {
		for _, q := range players[i+1:] {
			if exception && (p.Lap != LapDone || q.Lap != LapDone) {
				continue
			}
			if p.Place == q.Place {
				return true
			}
		}
	}

	// A finished player can never rank behind one still racing. Seeing that
	// means a false finish reading.
	for _, p := range players {
		if p.Lap != LapDone {
			continue
		}
		for _, q := range players {
			if q.Lap != LapDone && q.Place != 0 && p.Place > q.Place {
				return true
			}
		}
	}
	return false
}

// Differ reports whether a and b describe different race situations. Track
// and character changes are ignored since those are only detected at the
// start. On exception tracks ranks are ignored until players finish.
func Differ(a, b Screen, exception, items bool) bool {
	for i, p := range a.Active() {
		q := b.Players[i]
		if p.Lap != q.Lap {
			return true
		}
		if !exception && p.Place != q.Place {
			return true
		}
		if items && p.ItemState != q.ItemState {
			return true
		}
	}
	return false
}

// itemsDiffer reports whether any player's item state changed.
func itemsDiffer(a, b Screen) bool {
	for i := range a.Players {
		if a.Players[i].ItemState != b.Players[i].ItemState {
			return true
		}
	}
	return false
}
