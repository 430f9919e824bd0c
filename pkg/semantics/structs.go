package semantics

import (
	"github.com/SteveSapuko/mycc/pkg/syntax"
	"github.com/SteveSapuko/mycc/pkg/types"
)

// pendingStruct is a struct of the current batch between the two stages:
// raw declarations first, resolved field types second.
type pendingStruct struct {
	decl   *syntax.StructDecl
	fields []types.Type
}

const (
	unvisited = iota
	visiting
	installed
)

// defineStructs collects every struct of the unit, resolves field types with
// the whole batch visible, rejects by-value cycles and installs the layouts
// dependencies first.
func (a *analyzer) defineStructs(stmts []syntax.Stmt) error {
	pending := make(map[string]bool)
	var batch []*pendingStruct
	byName := make(map[string]*pendingStruct)

	for _, s := range stmts {
		d, ok := s.(*syntax.StructDecl)
		if !ok {
			continue
		}
		if a.ss.IsUsed(d.Name.Text) || pending[d.Name.Text] {
			return errAt(UsedId, d.Name)
		}
		seen := make(map[string]bool)
		for _, f := range d.Fields {
			if seen[f.Name.Text] {
				return &Error{Kind: StructDuplicateFields, Tok: f.Name, Name: d.Name.Text}
			}
			seen[f.Name.Text] = true
		}
		pending[d.Name.Text] = true
		p := &pendingStruct{decl: d}
		batch = append(batch, p)
		byName[d.Name.Text] = p
	}

	for _, p := range batch {
		for _, f := range p.decl.Fields {
			ft, err := a.ss.Types().ResolveTentative(f.Type, pending)
			if err != nil {
				return unknownType(err)
			}
			p.fields = append(p.fields, ft)
		}
	}

	state := make(map[string]int)
	var install func(p *pendingStruct) error
	install = func(p *pendingStruct) error {
		name := p.decl.Name.Text
		switch state[name] {
		case installed:
			return nil
		case visiting:
			return &Error{Kind: RecursiveStruct, Tok: p.decl.Name, Name: name}
		}
		state[name] = visiting
		for _, ft := range p.fields {
			for _, dep := range byValueStructs(ft) {
				if next, ok := byName[dep]; ok {
					if err := install(next); err != nil {
						return err
					}
				}
			}
		}

		tmpl := &types.StructTemplate{Name: name}
		offset := 0
		for i, f := range p.decl.Fields {
			tmpl.Fields = append(tmpl.Fields, types.Field{Name: f.Name.Text, Type: p.fields[i], Offset: offset})
			offset += a.ss.Types().Size(p.fields[i])
		}
		a.ss.DeclareType(tmpl)
		state[name] = installed
		return nil
	}

	for _, p := range batch {
		if err := install(p); err != nil {
			return err
		}
	}
	for _, s := range stmts {
		if d, ok := s.(*syntax.StructDecl); ok {
			tmpl, _ := a.ss.Types().Struct(d.Name.Text)
			a.decls[s] = &TypeDecl{Custom: tmpl}
		}
	}
	return nil
}

// byValueStructs lists the structs t embeds directly. Pointers embed nothing.
func byValueStructs(t types.Type) []string {
	switch t.Kind {
	case types.Struct:
		return []string{t.Name}
	case types.Array:
		return byValueStructs(*t.Elem)
	}
	return nil
}
