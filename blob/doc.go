// Package blob implements the zero-copy streaming layer described by the
// Devicetree Specification v0.3: a single forward pass over an FDT buffer
// with no auxiliary memory beyond the small cursor struct itself.
//
// # Basic usage
//
//	b, err := blob.Open(raw)
//	if err != nil {
//		return err
//	}
//
//	root, err := b.Root()
//	if err != nil {
//		return err
//	}
//
//	for prop, err := range root.AllProps() {
//		if err != nil {
//			return err
//		}
//		name, _ := prop.Name()
//		fmt.Println(name, prop.Length())
//	}
//
// # Handles
//
// Node and Prop are small value types: copying one is cheap, and neither
// allocates. A Node carries a cloned cursor positioned just past its own
// name, ready to decode its properties and children; a Prop carries only
// its raw value and enough state to resolve its name and its owning node on
// demand.
//
// # Thread safety
//
// A Blob is immutable once opened and is safe for concurrent use by
// multiple readers. Individual Node/Prop/Iter values are not safe to share
// across goroutines without synchronization, since advancing one mutates
// its own cursor state.
package blob
