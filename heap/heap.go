// Package heap models abstract heap objects: the allocation-site identity
// that points-to analysis tracks in place of concrete runtime objects.
package heap

import "github.com/wpago/wpago/ir"

// Obj is an abstract heap object: identified by the allocation site that
// created it plus its declared type. Two Obj values are equal (by identity,
// since HeapModel always returns the same *Obj for the same site) iff they
// denote the same allocation site.
type Obj struct {
	Site ir.Stmt
	Type ir.Type
}

// HeapModel maps allocation sites to the Obj representing them. The default
// model, SiteModel, gives every `new` statement its own Obj
// (per-allocation-site abstraction).
type HeapModel interface {
	Obj(site ir.Stmt, typ ir.Type) *Obj
}

// SiteModel is the default HeapModel: one Obj per allocation-site statement,
// interned so that repeated lookups of the same site return the identical
// pointer (required for Obj's identity-equality contract).
type SiteModel struct {
	objs map[ir.Stmt]*Obj
}

// NewSiteModel returns an empty, ready-to-use SiteModel.
func NewSiteModel() *SiteModel {
	return &SiteModel{objs: make(map[ir.Stmt]*Obj)}
}

func (m *SiteModel) Obj(site ir.Stmt, typ ir.Type) *Obj {
	if o, ok := m.objs[site]; ok {
		return o
	}
	o := &Obj{Site: site, Type: typ}
	m.objs[site] = o
	return o
}
