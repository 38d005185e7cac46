package dtd

// nfa is a Thompson-style NFA compiled from a content-model [Expr] tree.
// Every sub-expression compiles to its own self-contained fragment (an
// entry state and an exit state joined only by epsilon/named edges; a
// sequence's exit is its last child's exit); fragments are then stitched
// together purely with epsilon edges, and occurrence operators (?, *, +)
// only add epsilon edges leaving a fragment's exit or entering fresh
// junction states.
type nfa struct {
	states []nfaState
	start  int
	accept int
}

type nfaState struct {
	eps   []int
	trans map[string]int
}

func (a *nfa) newState() int {
	a.states = append(a.states, nfaState{})

	return len(a.states) - 1
}

func (a *nfa) addEps(from, to int) {
	a.states[from].eps = append(a.states[from].eps, to)
}

func (a *nfa) addTrans(from int, name string, to int) {
	if a.states[from].trans == nil {
		a.states[from].trans = make(map[string]int)
	}

	a.states[from].trans[name] = to
}

// CompileContentModel compiles cm's expression tree (ContentChildren) into
// an NFA used by [Match]. It is a no-op for ContentEmpty/ContentAny/
// ContentMixed, which are matched structurally without an NFA.
func CompileContentModel(cm *ContentModel) {
	if cm.Kind != ContentChildren || cm.Root == nil {
		return
	}

	if cm.nfa != nil {
		return
	}

	a := &nfa{}
	entry, exit := a.build(cm.Root)
	a.start = entry
	a.accept = exit
	cm.nfa = a
}

// build compiles expr into a fresh, self-contained fragment and returns
// its (entry, exit) state pair.
func (a *nfa) build(expr *Expr) (entry, exit int) {
	switch expr.Kind {
	case ExprName:
		entry = a.newState()
		exit = a.newState()
		a.addTrans(entry, expr.Name, exit)
	case ExprSeq:
		entry = a.newState()
		cur := entry

		for _, child := range expr.Children {
			ce, cx := a.build(child)
			a.addEps(cur, ce)
			cur = cx
		}

		exit = cur
	case ExprChoice:
		entry = a.newState()
		exit = a.newState()

		for _, child := range expr.Children {
			ce, cx := a.build(child)
			a.addEps(entry, ce)
			a.addEps(cx, exit)
		}
	}

	return a.applyOccurrence(expr.Occur, entry, exit)
}

// applyOccurrence wraps the fragment (entry, exit) with fresh junction
// states implementing the ?, *, + occurrence operators, returning the new
// (entry, exit) pair for the wrapped fragment. ? and * add a fresh entry
// and exit; + keeps the fragment's entry and adds only a fresh exit.
func (a *nfa) applyOccurrence(occ Occurrence, entry, exit int) (int, int) {
	switch occ {
	case OccurOptional:
		newEntry := a.newState()
		newExit := a.newState()
		a.addEps(newEntry, entry)
		a.addEps(newEntry, newExit)
		a.addEps(exit, newExit)

		return newEntry, newExit
	case OccurZeroOrMore:
		newEntry := a.newState()
		newExit := a.newState()
		a.addEps(newEntry, entry)
		a.addEps(newEntry, newExit)
		a.addEps(exit, newEntry)

		return newEntry, newExit
	case OccurOneOrMore:
		newExit := a.newState()
		a.addEps(exit, entry)
		a.addEps(exit, newExit)

		return entry, newExit
	default:
		return entry, exit
	}
}

// epsilonClosure returns the set of states reachable from states via only
// epsilon transitions, including states themselves.
func (a *nfa) epsilonClosure(states map[int]bool) map[int]bool {
	closure := make(map[int]bool, len(states))

	var visit func(int)

	visit = func(s int) {
		if closure[s] {
			return
		}

		closure[s] = true

		for _, next := range a.states[s].eps {
			visit(next)
		}
	}

	for s := range states {
		visit(s)
	}

	return closure
}

// Match reports whether names (the child-element sequence of one element
// instance) is accepted by cm's compiled content model. For
// ContentEmpty/ContentAny/ContentMixed this matches structurally; for
// ContentChildren it runs the NFA.
func Match(cm *ContentModel, names []string) bool {
	switch cm.Kind {
	case ContentEmpty:
		return len(names) == 0
	case ContentAny:
		return true
	case ContentMixed:
		return matchMixed(cm.Mixed, names)
	case ContentChildren:
		CompileContentModel(cm)

		return cm.nfa.run(names)
	default:
		return false
	}
}

func matchMixed(allowed, names []string) bool {
	set := make(map[string]bool, len(allowed))
	for _, n := range allowed {
		set[n] = true
	}

	for _, n := range names {
		if !set[n] {
			return false
		}
	}

	return true
}

func (a *nfa) run(names []string) bool {
	current := a.epsilonClosure(map[int]bool{a.start: true})

	for _, name := range names {
		next := make(map[int]bool)

		for s := range current {
			if to, ok := a.states[s].trans[name]; ok {
				next[to] = true
			}
		}

		if len(next) == 0 {
			return false
		}

		current = a.epsilonClosure(next)
	}

	return current[a.accept]
}

// IsDeterministic reports whether cm's compiled content model is
// deterministic, per the W3C REC-xml requirement that content models be
// unambiguous — a parser must never need more than one token of
// lookahead to choose between alternatives. This checks whether more
// than one state in the start epsilon-closure declares a transition on
// the same name; ambiguity that arises only after the first child is not
// detected, and such a model is reported as deterministic.
func IsDeterministic(cm *ContentModel) bool {
	if cm.Kind != ContentChildren {
		return true
	}

	CompileContentModel(cm)

	closure := cm.nfa.epsilonClosure(map[int]bool{cm.nfa.start: true})

	seen := map[string]bool{}
	for s := range closure {
		for name := range cm.nfa.states[s].trans {
			if seen[name] {
				return false
			}

			seen[name] = true
		}
	}

	return true
}
