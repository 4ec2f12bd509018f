package layout

// Default box size and spacing, in pixels.
const (
	DefaultBaseWidth  = 200
	DefaultBaseHeight = 60
	DefaultMarginX    = 40
	DefaultMarginY    = 40
)

// Config holds the sizing constants of a layout pass.
type Config struct {
	// BaseWidth and BaseHeight are the size of one step box.
	BaseWidth  float64
	BaseHeight float64

	// MarginX separates adjacent branches of a container.
	MarginX float64

	// MarginY separates consecutive steps in a chain.
	MarginY float64
}

// DefaultConfig returns the default sizing constants.
func DefaultConfig() Config {
	return Config{
		BaseWidth:  DefaultBaseWidth,
		BaseHeight: DefaultBaseHeight,
		MarginX:    DefaultMarginX,
		MarginY:    DefaultMarginY,
	}
}

// Option configures a layout pass.
type Option func(*Config)

// WithBaseSize sets the size of one step box. Non-positive values keep the
// current setting.
func WithBaseSize(width, height float64) Option {
	return func(c *Config) {
		if width > 0 {
			c.BaseWidth = width
		}
		if height > 0 {
			c.BaseHeight = height
		}
	}
}

// WithMargins sets the horizontal and vertical spacing. Negative values keep
// the current setting.
func WithMargins(x, y float64) Option {
	return func(c *Config) {
		if x >= 0 {
			c.MarginX = x
		}
		if y >= 0 {
			c.MarginY = y
		}
	}
}

// WithConfig replaces the whole configuration. Non-positive box sizes and
// negative margins fall back to the defaults.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg.withDefaults()
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseWidth <= 0 {
		c.BaseWidth = d.BaseWidth
	}
	if c.BaseHeight <= 0 {
		c.BaseHeight = d.BaseHeight
	}
	if c.MarginX < 0 {
		c.MarginX = d.MarginX
	}
	if c.MarginY < 0 {
		c.MarginY = d.MarginY
	}
	return c
}

func newConfig(opts []Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
