// Package directmap provides a keyed store whose values live in off-heap
// directobj blocks.
//
// Put serializes a record into a block owned by the map; Get repopulates a
// record from it. Replacing, removing or clearing an entry frees its block,
// and Close frees whatever is left. Blocks sit in a slot table; vacated slots
// are tracked in a roaring bitmap and the lowest one is reused first.
//
// A Map is not safe for concurrent use. Wrap it with NewSynchronized when
// several goroutines share it.
package directmap
