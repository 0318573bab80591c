package config

import (
	"os"
	"slices"
)

// Env is the part of the process environment that affects a run.
type Env struct {
	Vercel  bool
	Netlify bool
	CI      bool
}

// EnvFrom reads Env through lookup. A variable counts as set when it is
// present and non-empty.
func EnvFrom(lookup func(string) (string, bool)) Env {
	set := func(key string) bool {
		v, ok := lookup(key)
		return ok && v != ""
	}
	return Env{
		Vercel:  set("VERCEL"),
		Netlify: set("NETLIFY"),
		CI:      set("CI"),
	}
}

// ProcessEnv reads Env from the current process.
func ProcessEnv() Env {
	return EnvFrom(os.LookupEnv)
}

// Restricted reports whether the process runs inside CI or a deployment
// builder, where Chromium needs extra flags.
func (e Env) Restricted() bool {
	return e.Vercel || e.Netlify || e.CI
}

// WithEnvironment returns a copy of c whose launch arguments account for e.
func (c Config) WithEnvironment(e Env) Config {
	out := c
	out.Browser.Args = slices.Clone(c.Browser.Args)
	out.Browser.Restricted = e.Restricted()
	if out.Browser.Restricted {
		for _, arg := range RestrictedArgs {
			if !slices.Contains(out.Browser.Args, arg) {
				out.Browser.Args = append(out.Browser.Args, arg)
			}
		}
	}
	return out
}
