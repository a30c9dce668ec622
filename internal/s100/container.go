// Package s100 implements the generic parts of S-100 Data Coding Format 8
// product generation: the hierarchical output container, its binary
// encoding, template loading, raw-payload table construction, and the
// orchestration that ties a product's formatter and writer together.
package s100

import (
	"fmt"
	"strings"
)

// AttrKind identifies the storage type of a group attribute.
type AttrKind int

const (
	AttrFloat64 AttrKind = iota
	AttrInt64
	AttrUint64
	AttrString
	AttrEnum
)

// EnumMember is one named code of an enumerated attribute type.
type EnumMember struct {
	Label string
	Code  int64
}

// EnumType is an enumerated attribute type over a signed integer base.
// Member order is part of the type's identity and is preserved in the
// encoded file.
type EnumType struct {
	Name    string
	Members []EnumMember
}

// Valid reports whether code is one of the type's members.
func (e *EnumType) Valid(code int64) bool {
	for _, m := range e.Members {
		if m.Code == code {
			return true
		}
	}
	return false
}

// Attribute is a single named attribute on a group. Exactly one of the
// value fields is meaningful, selected by Kind; enum attributes store
// their code in Int.
type Attribute struct {
	Name  string
	Kind  AttrKind
	Float float64
	Int   int64
	Uint  uint64
	Str   string
	Enum  *EnumType
}

// DatasetKind identifies the cell type of a dataset.
type DatasetKind int

const (
	DatasetFloat64 DatasetKind = iota
	DatasetUint8
	DatasetString
)

// Dataset is an n-by-m array stored in a group. Float64 and Uint8 datasets
// are row-major matrices; String datasets are one-dimensional.
type Dataset struct {
	Name    string
	Kind    DatasetKind
	Rows    int
	Cols    int
	Floats  [][]float64
	Bytes   [][]uint8
	Strings []string
}

// Group is one node of the container tree: ordered attributes, ordered
// child groups, ordered datasets.
type Group struct {
	name     string
	path     string
	attrs    []Attribute
	attrIdx  map[string]int
	children []*Group
	childIdx map[string]*Group
	datasets []*Dataset
	dsIdx    map[string]*Dataset
}

// File is an open in-memory output container.
type File struct {
	root *Group
}

// NewFile returns an empty container.
func NewFile() *File {
	return &File{root: newGroup("", "")}
}

func newGroup(name, path string) *Group {
	return &Group{
		name:     name,
		path:     path,
		attrIdx:  make(map[string]int),
		childIdx: make(map[string]*Group),
		dsIdx:    make(map[string]*Dataset),
	}
}

// Root returns the container's root group.
func (f *File) Root() *Group { return f.root }

// Group looks up a group by slash-separated path.
func (f *File) Group(path string) (*Group, bool) {
	g := f.root
	for _, part := range splitPath(path) {
		child, ok := g.childIdx[part]
		if !ok {
			return nil, false
		}
		g = child
	}
	return g, true
}

// CreateGroup creates the group at the given slash-separated path,
// creating missing intermediate groups. Creating a path that already
// exists as a group fails.
func (f *File) CreateGroup(path string) (*Group, error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, &WriteError{Path: path, Op: "create group", Err: fmt.Errorf("empty path")}
	}
	g := f.root
	for i, part := range parts {
		child, ok := g.childIdx[part]
		if !ok {
			child = newGroup(part, strings.Join(parts[:i+1], "/"))
			g.childIdx[part] = child
			g.children = append(g.children, child)
		} else if i == len(parts)-1 {
			return nil, &WriteError{Path: path, Op: "create group", Err: fmt.Errorf("group already exists")}
		}
		g = child
	}
	return g, nil
}

// Name returns the group's own name; Path its full slash-separated path.
func (g *Group) Name() string { return g.name }
func (g *Group) Path() string { return g.path }

// Children returns child groups in creation order.
func (g *Group) Children() []*Group { return g.children }

// Attrs returns attributes in creation order.
func (g *Group) Attrs() []Attribute { return g.attrs }

// Attr looks up an attribute by name.
func (g *Group) Attr(name string) (Attribute, bool) {
	i, ok := g.attrIdx[name]
	if !ok {
		return Attribute{}, false
	}
	return g.attrs[i], true
}

func (g *Group) setAttr(a Attribute) {
	if i, ok := g.attrIdx[a.Name]; ok {
		g.attrs[i] = a
		return
	}
	g.attrIdx[a.Name] = len(g.attrs)
	g.attrs = append(g.attrs, a)
}

// SetFloatAttr creates or replaces a float64 attribute.
func (g *Group) SetFloatAttr(name string, v float64) {
	g.setAttr(Attribute{Name: name, Kind: AttrFloat64, Float: v})
}

// SetIntAttr creates or replaces a signed integer attribute.
func (g *Group) SetIntAttr(name string, v int64) {
	g.setAttr(Attribute{Name: name, Kind: AttrInt64, Int: v})
}

// SetUintAttr creates or replaces an unsigned integer attribute.
func (g *Group) SetUintAttr(name string, v uint64) {
	g.setAttr(Attribute{Name: name, Kind: AttrUint64, Uint: v})
}

// SetStringAttr creates or replaces a string attribute.
func (g *Group) SetStringAttr(name, v string) {
	g.setAttr(Attribute{Name: name, Kind: AttrString, Str: v})
}

// SetEnumAttr creates or replaces an enumerated attribute. The code must be
// a member of the enum type.
func (g *Group) SetEnumAttr(name string, code int64, typ *EnumType) error {
	if typ == nil {
		return &WriteError{Path: g.path, Op: "set attribute " + name, Err: fmt.Errorf("nil enum type")}
	}
	if !typ.Valid(code) {
		return &WriteError{Path: g.path, Op: "set attribute " + name, Err: fmt.Errorf("code %d is not a member of enum %s", code, typ.Name)}
	}
	g.setAttr(Attribute{Name: name, Kind: AttrEnum, Int: code, Enum: typ})
	return nil
}

// Dataset looks up a dataset by name.
func (g *Group) Dataset(name string) (*Dataset, bool) {
	ds, ok := g.dsIdx[name]
	return ds, ok
}

// Datasets returns datasets in creation order.
func (g *Group) Datasets() []*Dataset { return g.datasets }

func (g *Group) addDataset(ds *Dataset) error {
	if _, dup := g.dsIdx[ds.Name]; dup {
		return &WriteError{Path: g.path, Op: "create dataset " + ds.Name, Err: fmt.Errorf("dataset already exists")}
	}
	g.dsIdx[ds.Name] = ds
	g.datasets = append(g.datasets, ds)
	return nil
}

// CreateFloatDataset stores a row-major float64 matrix.
func (g *Group) CreateFloatDataset(name string, rows [][]float64) error {
	ds := &Dataset{Name: name, Kind: DatasetFloat64, Rows: len(rows), Floats: rows}
	for i, row := range rows {
		if i == 0 {
			ds.Cols = len(row)
		} else if len(row) != ds.Cols {
			return &WriteError{Path: g.path, Op: "create dataset " + name, Err: fmt.Errorf("ragged row %d: %d cells, want %d", i, len(row), ds.Cols)}
		}
	}
	return g.addDataset(ds)
}

// CreateUint8Dataset stores a row-major uint8 matrix.
func (g *Group) CreateUint8Dataset(name string, rows [][]uint8) error {
	ds := &Dataset{Name: name, Kind: DatasetUint8, Rows: len(rows), Bytes: rows}
	for i, row := range rows {
		if i == 0 {
			ds.Cols = len(row)
		} else if len(row) != ds.Cols {
			return &WriteError{Path: g.path, Op: "create dataset " + name, Err: fmt.Errorf("ragged row %d: %d cells, want %d", i, len(row), ds.Cols)}
		}
	}
	return g.addDataset(ds)
}

// CreateStringDataset stores a one-dimensional string vector.
func (g *Group) CreateStringDataset(name string, values []string) error {
	return g.addDataset(&Dataset{Name: name, Kind: DatasetString, Rows: len(values), Cols: 1, Strings: values})
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
