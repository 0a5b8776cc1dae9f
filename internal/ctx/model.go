// Package ctx is the data model of SPEC_FULL.md §4: VarData, Reference,
// StructData, and the AnalysisContext that threads through
// analyzer -> checker -> adjuster -> annotator.
//
// References are held in a side arena keyed by stable EdgeID (spec.md §9's
// recommended representation) rather than as shared pointers threaded
// through both endpoints directly, so that VarData.PointsTo/PointedTo can be
// plain, deterministically-ordered slices of IDs. This is grounded on
// purple_go/pkg/memory/region.go's Region/RegionObj/RegionRef split (objects
// and the edges between them live in separate, explicitly managed
// collections rather than as raw Go pointers chasing each other) adapted
// from a runtime region allocator into a compile-time analysis arena.
package ctx

import "sonderc/internal/cast"

// VarID identifies one declared C variable within its scope.
type VarID int

// EdgeID identifies one Reference, stable across analyzer re-runs so the
// adjuster can refer to an edge found in one pass after the next pass has
// rebuilt the context (insert_clone forces a restart; set_rc/set_raw do
// not need this, but the arena makes the stability uniform for both).
type EdgeID int

// ScopeID identifies a lexical scope (function body, block, or the file
// scope for globals).
type ScopeID int

// ReferenceKind is the ownership discipline chosen for one reference edge.
type ReferenceKind int

const (
	ConstBorrowed ReferenceKind = iota
	MutBorrowed
	ConstPtr
	MutPtr
	RcRefClone
)

func (k ReferenceKind) String() string {
	switch k {
	case ConstBorrowed:
		return "&T"
	case MutBorrowed:
		return "&mut T"
	case ConstPtr:
		return "*const T"
	case MutPtr:
		return "*mut T"
	case RcRefClone:
		return "Rc<RefCell<T>>"
	default:
		return "?"
	}
}

// IsMutableKind reports whether k grants write access to the referent.
func (k ReferenceKind) IsMutableKind() bool {
	return k == MutBorrowed || k == MutPtr
}

// IsRaw reports whether k is one of the two raw-pointer kinds, which require
// an unsafe block at every dereference site in the emitted code.
func (k ReferenceKind) IsRaw() bool {
	return k == ConstPtr || k == MutPtr
}

// UsageKind classifies one occurrence of an identifier, per spec.md §3.
type UsageKind int

const (
	LValue UsageKind = iota
	RValue
	FunctionArg
)

// Usage is one (line, kind) occurrence of a variable, in the order the
// analyzer encountered it. ViaEdge names the reference that was dereferenced
// to reach this usage (0 for a direct identifier usage), so the checker can
// tell "this is the very access that edge models" apart from an unrelated
// usage that happens to land on the same line.
type Usage struct {
	Line    int
	Kind    UsageKind
	ViaEdge EdgeID
}

// Reference is a directed edge from a borrower variable to a referent
// variable (spec.md §3's "Reference").
type Reference struct {
	ID       EdgeID
	Borrower VarID
	Referent VarID
	Kind     ReferenceKind
	Start    int
	End      int
}

// LiveRange returns the inclusive [Start, End] line range.
func (r *Reference) LiveRange() (int, int) { return r.Start, r.End }

// VarData is one declared C object in a specific scope (spec.md §3).
type VarData struct {
	ID    VarID
	Name  string
	Scope ScopeID
	Type  cast.CType

	PointsTo  []EdgeID
	PointedTo []EdgeID

	Usages []Usage
	IsMut  bool

	RC    bool
	Clone bool

	InstanceOfStruct string // set when this VarData's Type.Kind == TStruct
	FieldOfStruct    VarID  // set when this variable is a field of another VarData; 0 (InvalidVarID) otherwise
}

// InvalidVarID is the zero value, used as "no struct owner" / "not found".
const InvalidVarID VarID = 0

// FieldDefinition is one entry of a struct's field schema (spec.md §3).
type FieldDefinition struct {
	ID      int
	Name    string
	CType   cast.CType
	PtrType []ReferenceKind // one entry per pointer nesting level
}

// StructData is the schema for one `struct <name>` declaration.
type StructData struct {
	Name   string
	Fields []FieldDefinition
}

// AnalysisContext is the complete output of the analyzer: identifier -> VarData
// and struct-name -> StructData, plus the edge arena. All collections are
// ordered (insertion order) rather than Go maps-of-slices-only, so that
// enumeration for diagnostics and annotation is byte-identical across runs
// (spec.md §5's determinism requirement).
type AnalysisContext struct {
	vars     []*VarData
	varByID  map[VarID]*VarData
	varOrder map[string]VarID // declaration-order lookup by qualified name, most-recent binding wins

	structs      []*StructData
	structByName map[string]*StructData

	edges     []*Reference
	edgeByID  map[EdgeID]*Reference
	nextVarID VarID
	nextEdge  EdgeID
	nextScope ScopeID
}

// New returns an empty AnalysisContext.
func New() *AnalysisContext {
	return &AnalysisContext{
		varByID:      make(map[VarID]*VarData),
		varOrder:     make(map[string]VarID),
		structByName: make(map[string]*StructData),
		edgeByID:     make(map[EdgeID]*Reference),
		nextVarID:    1,
		nextEdge:     1,
		nextScope:    1,
	}
}

// NewScope allocates and returns a fresh ScopeID.
func (c *AnalysisContext) NewScope() ScopeID {
	id := c.nextScope
	c.nextScope++
	return id
}

// DeclareVar creates a new VarData for name in scope and returns it. A
// redeclaration of the same name in the same scope (not legal in the
// supported subset, but defensively handled) replaces the lookup entry
// without discarding the earlier VarData from Vars().
func (c *AnalysisContext) DeclareVar(name string, scope ScopeID, t cast.CType) *VarData {
	v := &VarData{ID: c.nextVarID, Name: name, Scope: scope, Type: t}
	c.nextVarID++
	c.vars = append(c.vars, v)
	c.varByID[v.ID] = v
	c.varOrder[qualify(name, scope)] = v.ID
	return v
}

func qualify(name string, scope ScopeID) string {
	// Distinct scopes can reuse names (shadowing); qualifying by scope keeps
	// lookups scope-correct without requiring callers to track a stack
	// themselves -- the analyzer still resolves unqualified name+scope pairs.
	return name + "\x00" + itoa(int(scope))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// LookupVar resolves name in scope, falling back to enclosing scopes is the
// caller's responsibility (the analyzer walks its own scope stack and tries
// each enclosing ScopeID in turn).
func (c *AnalysisContext) LookupVar(name string, scope ScopeID) *VarData {
	id, ok := c.varOrder[qualify(name, scope)]
	if !ok {
		return nil
	}
	return c.varByID[id]
}

// Var returns the VarData for id, or nil.
func (c *AnalysisContext) Var(id VarID) *VarData { return c.varByID[id] }

// Vars returns every declared variable in declaration order.
func (c *AnalysisContext) Vars() []*VarData { return c.vars }

// DeclareStruct registers a struct schema.
func (c *AnalysisContext) DeclareStruct(s *StructData) {
	c.structs = append(c.structs, s)
	c.structByName[s.Name] = s
}

// Struct looks up a struct schema by name.
func (c *AnalysisContext) Struct(name string) *StructData { return c.structByName[name] }

// Structs returns every declared struct in declaration order.
func (c *AnalysisContext) Structs() []*StructData { return c.structs }

// NewEdge creates a Reference from borrower to referent with the given kind
// and initial live-range point, links it into both endpoints' PointsTo /
// PointedTo lists (Invariant §3.1), and returns it.
func (c *AnalysisContext) NewEdge(borrower, referent VarID, kind ReferenceKind, atLine int) *Reference {
	e := &Reference{ID: c.nextEdge, Borrower: borrower, Referent: referent, Kind: kind, Start: atLine, End: atLine}
	c.nextEdge++
	c.edges = append(c.edges, e)
	c.edgeByID[e.ID] = e
	if b := c.varByID[borrower]; b != nil {
		b.PointsTo = append(b.PointsTo, e.ID)
	}
	if r := c.varByID[referent]; r != nil {
		r.PointedTo = append(r.PointedTo, e.ID)
	}
	return e
}

// Edge returns the Reference for id, or nil.
func (c *AnalysisContext) Edge(id EdgeID) *Reference { return c.edgeByID[id] }

// Edges returns every edge in creation order.
func (c *AnalysisContext) Edges() []*Reference { return c.edges }

// ExtendLiveRange sets e.End to line if line is further along than the
// current End (live ranges only grow forward during a single analyzer pass,
// spec.md §8's monotonicity invariant).
func (c *AnalysisContext) ExtendLiveRange(id EdgeID, line int) {
	e := c.edgeByID[id]
	if e == nil {
		return
	}
	if line > e.End {
		e.End = line
	}
}

// ChainDownwards walks PointsTo from root toward referents, returning the
// ordered list of VarIDs along the path (root first), stopping at a leaf or
// after maxDepth steps (so at most maxDepth+1 entries). Mirrors spec.md
// §4.1's chain_downwards helper.
func (c *AnalysisContext) ChainDownwards(root VarID, maxDepth int) []VarID {
	return c.chain(root, maxDepth, func(v *VarData) []EdgeID { return v.PointsTo },
		func(e *Reference) VarID { return e.Referent })
}

// ChainUpwards walks PointedTo from root toward borrowers, the inverse of
// ChainDownwards.
func (c *AnalysisContext) ChainUpwards(root VarID, maxDepth int) []VarID {
	return c.chain(root, maxDepth, func(v *VarData) []EdgeID { return v.PointedTo },
		func(e *Reference) VarID { return e.Borrower })
}

func (c *AnalysisContext) chain(root VarID, maxDepth int, edgesOf func(*VarData) []EdgeID, next func(*Reference) VarID) []VarID {
	out := []VarID{root}
	cur := root
	for depth := 0; depth < maxDepth; depth++ {
		v := c.varByID[cur]
		if v == nil {
			break
		}
		edges := edgesOf(v)
		if len(edges) == 0 {
			break
		}
		// Deterministic: always follow the most recently added edge, which
		// for PointsTo is the variable's current binding (spec.md §3's
		// "a pointer variable may be rebound over its lifetime; each
		// rebinding appends").
		e := c.edgeByID[edges[len(edges)-1]]
		if e == nil {
			break
		}
		nxt := next(e)
		if nxt == cur {
			break // defensive: no self-loops (Invariant §3.4 forbids cycles anyway)
		}
		out = append(out, nxt)
		cur = nxt
	}
	return out
}
