package index

import "github.com/devicetree-go/fdt/blob"

// Layout describes the arena size an index of a given blob requires. Size is
// exact; Align is the byte alignment the caller's arena slice must satisfy
// (always recordAlign for this package's record layout).
type Layout struct {
	Size  int
	Align int
}

// LayoutFor walks b once, without allocating, to compute the exact arena
// size Build needs: one nodeRecordSize per node plus one propRecordSize per
// property, packed back-to-back in document order.
func LayoutFor(b blob.Blob) (Layout, error) {
	it := (&b).Iter()
	size := 0
	for {
		item, ok, err := it.NextItem()
		if err != nil {
			return Layout{}, err
		}
		if !ok {
			break
		}
		if _, isNode := item.AsNode(); isNode {
			size += nodeRecordSize
		} else {
			size += propRecordSize
		}
	}

	return Layout{Size: size, Align: recordAlign}, nil
}
