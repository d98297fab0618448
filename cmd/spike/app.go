package main

import (
	"context"

	"github.com/bjaus/dispatch"
)

const greeting = "hello"

type versionInfo struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

var version = "dev"

func greet(context.Context) (string, error) {
	return greeting, nil
}

func currentVersion(context.Context) (versionInfo, error) {
	return versionInfo{Name: "spike", Version: version}, nil
}

// newApplication declares the spike's resources and writers. The greeting
// is mounted at both / and /hello.
func newApplication() dispatch.Application {
	return dispatch.NewApplication(
		[]dispatch.Resource{
			dispatch.NewResource("/", dispatch.Get(greet)),
			dispatch.NewResource("/hello", dispatch.Get(greet)),
			dispatch.NewResource("/version", dispatch.Get(currentVersion)),
		},
		[]dispatch.Writer{
			dispatch.StringWriter(),
			dispatch.BytesWriter(),
			dispatch.JSONWriter(),
			dispatch.YAMLWriter(),
		},
	)
}

func newRegistry() (*dispatch.Registry, error) {
	return dispatch.NewRegistry(newApplication(), dispatch.WithStrictWriters())
}
