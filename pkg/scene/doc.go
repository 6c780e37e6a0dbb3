// Package scene assembles a laid-out lineup and its downloaded assets into
// a single composed field diagram.
//
// A [Scene] is format-agnostic: it records the background, the image
// overlays with their normalized positions and sizes, and one invisible
// [HitTarget] per player carrying the persistent label and the hover text.
// Package sink turns a Scene into SVG, PNG, JSON or PDF.
//
// # Coordinates
//
// Positions and sizes are normalized to [0, 1] on both canvas axes with y
// growing upward, matching the position map. Sinks convert to pixels with
// px = x*W and py = (1-y)*H.
//
// # Composition rules
//
// [Compose] walks players by ascending id, never in download order, so the
// same inputs always yield the same scene. For each player:
//
//   - photo decodable: photo centered on the player coordinate at 0.15 of
//     each axis, emblem anchored by its top-left corner at (x+0.01, y-0.015)
//     at 0.075;
//   - photo not decodable: the emblem alone, centered at 0.15.
//
// Every player gets exactly one hit target whatever happened to its images.
package scene
