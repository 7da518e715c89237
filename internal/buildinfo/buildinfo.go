// Package buildinfo carries version metadata injected at link time via
// -ldflags "-X grainboard/internal/buildinfo.Version=...".
package buildinfo

const Service = "grainboard"

var (
	Version = "dev"
	Commit  = ""
	BuiltAt = ""
)

func Info() map[string]string {
	return map[string]string{
		"service": Service,
		"version": Version,
		"commit":  Commit,
		"builtAt": BuiltAt,
	}
}
