package testutil

// WithStandardBackends adds the standard test dataset: two registered
// application backends that both host app:type=Cache, and one contributed
// jobs backend.
func (b *Builder) WithStandardBackends() *Builder {
	return b.
		WithBackend("app",
			Attributes("app:type=Cache,name=users", map[string]any{"Size": 10, "Hits": 7}),
			Attributes("app:type=Cache,name=sessions", map[string]any{"Size": 3}),
			Attributes("app:type=Config", map[string]any{"Mode": "primary"})).
		WithBackend("replica", DefaultDomain("app"),
			Attributes("app:type=Cache,name=users", map[string]any{"Size": 9}),
			Attributes("app:type=Config", map[string]any{"Mode": "replica", "Lag": 2})).
		WithBackend("jobs", Contributed(),
			Attributes("jobs:type=Queue,name=mail", map[string]any{"Depth": 4})).
		WithPlatformResource("runtime:type=Fixture", Static{"Ready": true})
}
