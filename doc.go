// Package dispatch is a small resource-dispatch runtime for net/http.
// Resources are registered explicitly as a path plus verb-bound handlers,
// and handler results are serialized by the first registered Writer that
// accepts the result's type.
//
// A handler takes no request data and returns a typed value:
//
//	type Handler[T any] func(ctx context.Context) (T, error)
//
// Resources and writers are declared once through an Application:
//
//	app := dispatch.NewApplication(
//	    []dispatch.Resource{
//	        dispatch.NewResource("/hello", dispatch.Get(func(context.Context) (string, error) {
//	            return "hello", nil
//	        })),
//	    },
//	    []dispatch.Writer{dispatch.StringWriter()},
//	)
//	reg, err := dispatch.NewRegistry(app)
//
// The Dispatcher resolves the resource by exact path, the method by verb,
// invokes it, then scans writers in registration order. Serialization is
// buffered so a failed dispatch never leaves a partial body behind.
//
//	d := dispatch.NewDispatcher(reg)
//	srv := dispatch.NewServer(d)
//	srv.Use(dispatch.Recovery(), dispatch.RequestID())
//	srv.ListenAndServe(ctx, ":8080")
//
// Middleware uses the standard func(http.Handler) http.Handler signature.
package dispatch
