// Package filename resolves filename patterns into ordered grids of names.
//
// A pattern is a base name containing literal text and "*" wildcards. Every
// wildcard matches one or more digits and captures them:
//
//	p, _ := filename.Compile("/data/scan_t*_z*.chnk")
//	grid, _ := filename.Select(ctx, p)
//
// Matches are ordered by the numeric value of their captures, so "img_9"
// sorts before "img_10". When the captures of a multi-wildcard pattern cover
// a complete cross product the result is reshaped into a grid whose axes are
// the wildcards in reverse order; otherwise a flat list is returned and a
// warning is logged.
//
// Directory listing goes through a Lister; the default lists the local
// filesystem through go-billy, and BlobLister lists object-store prefixes.
package filename
