package index

import (
	"github.com/devicetree-go/fdt/blob"
	"github.com/devicetree-go/fdt/internal/pool"
)

// BuildPooled builds an index the same way Build does, but draws its arena
// from a shared pool instead of requiring the caller to allocate one. The
// returned release function must be called once the Tree and everything
// derived from it is no longer needed, returning the arena to the pool for
// reuse by the next BuildPooled call.
func BuildPooled(b blob.Blob) (*Tree, func(), error) {
	layout, err := LayoutFor(b)
	if err != nil {
		return nil, func() {}, err
	}

	bb := pool.GetArenaBuffer()
	bb.Reset()
	bb.ExtendOrGrow(layout.Size)
	arena := bb.Bytes()[:layout.Size]

	tree, err := Build(b, arena)
	if err != nil {
		pool.PutArenaBuffer(bb)

		return nil, func() {}, err
	}

	return tree, func() { pool.PutArenaBuffer(bb) }, nil
}
