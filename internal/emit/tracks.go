package emit

// trackNames maps track mask ids to their in-game names.
var trackNames = map[string]string{
	"banshee": "Banshee Boardwalk",
	"beach":   "Koopa Troopa Beach",
	"bowser":  "Bowser's Castle",
	"choco":   "Choco Mountain",
	"desert":  "Kalimari Desert",
	"dk":      "DK's Jungle Parkway",
	"frappe":  "Frappe Snowland",
	"luigi":   "Luigi Raceway",
	"mario":   "Mario Raceway",
	"moo":     "Moo Moo Farm",
	"rainbow": "Rainbow Road",
	"royal":   "Royal Raceway",
	"sherbet": "Sherbet Land",
	"toad":    "Toad's Turnpike",
	"wario":   "Wario Raceway",
	"yoshi":   "Yoshi Valley",
}

// TrackName returns the display name of a track id. Unknown ids are
// returned unchanged and an empty id reads "Unknown Track".
func TrackName(id string) string {
	if id == "" {
		return "Unknown Track"
	}
	if name, ok := trackNames[id]; ok {
		return name
	}
	return id
}
