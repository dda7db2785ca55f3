/*
Package observability exports onboarding activity as Prometheus metrics.

Metrics registers its collectors on a caller-provided registerer and exposes
itself as domain.LifecycleHooks, so the event pipeline never imports
prometheus directly:

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	router := events.NewRouter(token, handlers, events.WithLifecycleHooks(metrics.Hooks()))
*/
package observability
