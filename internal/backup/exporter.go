package backup

import "context"

// CollectionExporter is one logical collection included in the JSON
// fallback export.  The set of exporters handed to the engine is
// closed and enumerated at wiring time; the engine never introspects
// the database to discover collections.
type CollectionExporter interface {
	// Name is the collection name; the export is written to
	// <name>.json inside the dump directory.
	Name() string
	// ExportAll returns every document in the collection.
	ExportAll(ctx context.Context) (any, error)
}

type exporterFunc struct {
	name string
	fn   func(ctx context.Context) (any, error)
}

func (e exporterFunc) Name() string                                { return e.name }
func (e exporterFunc) ExportAll(ctx context.Context) (any, error) { return e.fn(ctx) }

// ExporterFunc adapts a repository list function into a
// CollectionExporter.
func ExporterFunc(name string, fn func(ctx context.Context) (any, error)) CollectionExporter {
	return exporterFunc{name: name, fn: fn}
}
