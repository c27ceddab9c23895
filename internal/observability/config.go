package observability

// Config captures opt-in observability toggles for the local-map service.
// EnablePprofTrace registers the pprof endpoints on the service mux; it is
// off unless ENABLE_PPROF_TRACE requests it.
type Config struct {
	EnablePprofTrace bool
}
