package mesh

import (
	"fmt"
	"sort"
)

// Fields is a registry of named DOF vectors allocated from one mesh.
type Fields struct {
	m      Mesh
	byName map[string][]float64
	order  []string
}

func NewFields(m Mesh) *Fields {
	return &Fields{m: m, byName: make(map[string][]float64)}
}

// Add allocates a zeroed vector for name.
func (f *Fields) Add(name string) (v []float64, err error) {
	if _, ok := f.byName[name]; ok {
		err = fmt.Errorf("field %q already exists", name)
		return
	}
	v = f.m.CreateVector()
	f.byName[name] = v
	f.order = append(f.order, name)
	return
}

func (f *Fields) Get(name string) (v []float64, ok bool) {
	v, ok = f.byName[name]
	return
}

func (f *Fields) MustGet(name string) []float64 {
	v, ok := f.byName[name]
	if !ok {
		panic(fmt.Sprintf("unknown field %q, have %v", name, f.Names()))
	}
	return v
}

// Names returns the field names in sorted order.
func (f *Fields) Names() (names []string) {
	names = append(names, f.order...)
	sort.Strings(names)
	return
}

// Release returns every field vector to the mesh.
func (f *Fields) Release() {
	for _, name := range f.order {
		f.m.DestroyVector(f.byName[name])
		delete(f.byName, name)
	}
	f.order = nil
}
