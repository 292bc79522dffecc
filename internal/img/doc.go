// Package img holds the decoded RGB raster used throughout kartvid and the
// pixel-difference scoring primitive that masks are tested with.
//
// An Image is a row-major array of 8-bit RGB triples plus the bounding box of
// its non-black content. Masks are Images whose near-black pixels are treated
// as transparent; Compare only walks a mask's bounding box and skips those
// pixels entirely, so a mask decides which part of a frame it inspects.
//
// The package also carries the still-image codecs (PPM, PNG, and through
// golang.org/x/image, WebP and BMP) and a couple of whole-image helpers used by
// the CLI tooling.
package img
