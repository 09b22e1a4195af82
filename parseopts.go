package picasso

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type imagesopt struct {
	loader ImageLoader
}

// parsectx holds general data for parsing. It is also a ParseOption.
type parsectx struct {
	// images resolves image names. If it is nil, image constructs fail to
	// parse.
	images ImageLoader
	// names is the set of variable names read in this parse.
	names map[string]bool
	// binds is the set of variable names written in this parse.
	binds map[string]bool
}

// WithImages sets the loader that resolves image names during parsing. Images
// are loaded once, when the expression is parsed.
func WithImages(loader ImageLoader) ParseOption {
	return imagesopt{loader}
}

func (o imagesopt) parseOption(p parsectx) parsectx {
	p.images = o.loader
	return p
}

// ParsingPreset creates a parsing preset that may be more efficient when using
// the same options for many calls to Parse. Options applied after a preset
// override it.
func ParsingPreset(opts ...ParseOption) ParseOption {
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	return &p
}

func (o *parsectx) parseOption(p parsectx) parsectx {
	p.images = o.images
	return p
}
