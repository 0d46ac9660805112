package scheme

// Env is one lexical frame.
type Env struct {
	vars   map[Symbol]Value
	parent *Env
}

// NewEnv creates a frame whose lookups fall back to parent.
func NewEnv(parent *Env) *Env {
	return &Env{vars: make(map[Symbol]Value), parent: parent}
}

// Define binds name in this frame, shadowing outer bindings.
func (e *Env) Define(name Symbol, v Value) {
	e.vars[name] = v
}

// Lookup finds the innermost binding of name.
func (e *Env) Lookup(name Symbol) (Value, bool) {
	for f := e; f != nil; f = f.parent {
		if v, ok := f.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set rebinds an existing variable in the frame where it is defined.
func (e *Env) Set(name Symbol, v Value) bool {
	for f := e; f != nil; f = f.parent {
		if _, ok := f.vars[name]; ok {
			f.vars[name] = v
			return true
		}
	}
	return false
}
