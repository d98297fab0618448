package dispatch

// Application declares the resources and writers that make up a service.
// Both lists are read once when a Registry is built.
type Application interface {
	Resources() []Resource
	Writers() []Writer
}

type staticApplication struct {
	resources []Resource
	writers   []Writer
}

// NewApplication returns an Application backed by fixed lists.
func NewApplication(resources []Resource, writers []Writer) Application {
	return &staticApplication{resources: resources, writers: writers}
}

func (a *staticApplication) Resources() []Resource { return a.resources }
func (a *staticApplication) Writers() []Writer     { return a.writers }
