// Package index implements the indexed layer described by the Devicetree
// Specification v0.3's zero-copy parsing model: a single-pass builder
// (Build) walks a blob.Blob once and packs a node or property record into a
// caller-supplied arena for every item, threading nodes together by byte
// offset instead of pointer so that a built Tree supports O(1) parent,
// sibling, and child navigation without reparsing.
//
// # Basic usage
//
//	layout, err := index.LayoutFor(b)
//	if err != nil {
//		return err
//	}
//	arena := make([]byte, layout.Size)
//	tree, err := index.Build(b, arena)
//	if err != nil {
//		return err
//	}
//
//	root := tree.Root()
//	for c := range root.AllChildren() {
//		name, _ := c.Name()
//		fmt.Println(name)
//	}
//
// # Records
//
// Node and Prop are small value types addressing records packed into the
// arena; neither copies anything out of the arena or the original blob.
// Build is the only allocating step the caller controls -- the arena itself
// -- and LayoutFor computes its exact required size in one streaming pass.
//
// # Thread safety
//
// A Tree is immutable once built and is safe for concurrent use by multiple
// readers. Individual iterators are not safe to share across goroutines
// without synchronization.
package index
