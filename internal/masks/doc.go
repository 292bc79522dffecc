// Package masks loads the reference templates used to classify video frames.
//
// Each mask is a frame-sized image whose non-black pixels outline one on-screen
// element: a track title card, a character portrait, a rank numeral in a
// player's quadrant, an item box, or the start banner. The role of a mask is
// encoded in its file name and parsed once at load time into a Category and
// typed fields, so classification never re-parses names per frame.
//
// Supported names (any configured image extension):
//
//	track_<id>[_...]            track title, e.g. track_yoshi.png
//	char_<name>_<square>        character portrait in quadrant 1..4
//	pos<place>_square<square>   rank numeral; a _final suffix marks a finished player
//	item_<name>_<square>        item box contents
//	lakitu_start[...]           race start banner
package masks
