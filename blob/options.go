package blob

import "github.com/devicetree-go/fdt/internal/options"

// config holds the resolved parsing policy for an opened Blob. It never
// affects wire-format semantics the specification pins down, only how
// tolerant the tokenizer is of a blob that violates them.
type config struct {
	strictNodeNames bool
	maxNodeNameLen  int
}

func defaultConfig() config {
	return config{strictNodeNames: true}
}

// Option configures Open and OpenFromAddress.
type Option = options.Option[*config]

// WithStrictNodeNames controls whether a BeginNode unit name whose NUL does
// not fall within the first format.MaxNodeNameLen-1 bytes is a hard parse
// error (the default, strict mode) or is instead read with a wider scan bound
// (WithMaxNodeNameLen, or the whole buffer when that is unset), for lenient
// parsing of diagnostic/malformed blobs.
func WithStrictNodeNames(strict bool) Option {
	return options.NoError(func(c *config) {
		c.strictNodeNames = strict
	})
}

// WithMaxNodeNameLen sets the name-scan bound used when strict node names
// are disabled. It has no effect when strict mode is on (the default).
func WithMaxNodeNameLen(maxLen int) Option {
	return options.NoError(func(c *config) {
		c.maxNodeNameLen = maxLen
	})
}

func applyOptions(c *config, opts []Option) error {
	return options.Apply(c, opts...)
}
