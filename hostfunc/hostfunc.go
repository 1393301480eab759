package hostfunc

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/traefik/yaegi/interp"
)

// Registry maps package and symbol names to host values.
type Registry struct {
	mu   sync.RWMutex
	pkgs map[string]map[string]reflect.Value
}

func NewRegistry() *Registry {
	return &Registry{pkgs: make(map[string]map[string]reflect.Value)}
}

// Register adds a function (or any other value) under pkg.name, replacing
// a previous registration of the same name.
func (r *Registry) Register(pkg, name string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	syms, ok := r.pkgs[pkg]
	if !ok {
		syms = make(map[string]reflect.Value)
		r.pkgs[pkg] = syms
	}
	syms[name] = reflect.ValueOf(v)
}

func (r *Registry) Get(pkg, name string) (reflect.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.pkgs[pkg][name]
	return v, ok
}

// List returns the qualified names of all registered symbols, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for pkg, syms := range r.pkgs {
		for name := range syms {
			names = append(names, pkg+"."+name)
		}
	}
	sort.Strings(names)
	return names
}

// Exports returns the registered symbols in the form the interpreter's Use
// method expects: keys are "importpath/pkgname".
func (r *Registry) Exports() interp.Exports {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exports := make(interp.Exports, len(r.pkgs))
	for pkg, syms := range r.pkgs {
		copied := make(map[string]reflect.Value, len(syms))
		for name, v := range syms {
			copied[name] = v
		}
		exports[fmt.Sprintf("%s/%s", pkg, pkg)] = copied
	}
	return exports
}
