package mock

import "github.com/fwojciec/stackdoc"

var _ stackdoc.Converter = (*Converter)(nil)

// Converter is a mock implementation of stackdoc.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ stackdoc.Distiller = (*Distiller)(nil)

// Distiller is a mock implementation of stackdoc.Distiller.
type Distiller struct {
	DistillFn func(html string) (*stackdoc.DistillResult, error)
}

func (d *Distiller) Distill(html string) (*stackdoc.DistillResult, error) {
	return d.DistillFn(html)
}

var _ stackdoc.MetaReader = (*MetaReader)(nil)

// MetaReader is a mock implementation of stackdoc.MetaReader.
type MetaReader struct {
	ReadMetaFn func(html string) (*stackdoc.PageMeta, error)
}

func (r *MetaReader) ReadMeta(html string) (*stackdoc.PageMeta, error) {
	return r.ReadMetaFn(html)
}
