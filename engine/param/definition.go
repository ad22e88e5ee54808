package param

// Scope is the handle a deferred default receives into the in-progress
// resolution: it can read parameters resolved earlier in declaration order
// and the raw lookup source.
type Scope interface {
	// Resolved returns a parameter already resolved during this pass.
	Resolved(name string) (any, bool)
	// Raw returns the unresolved value for a key from the lookup source.
	Raw(key string) (any, bool)
}

// DefaultFunc computes a parameter default lazily, exactly once per
// resolution pass.
type DefaultFunc func(scope Scope) (any, error)

// Rule names a registered validator plus its options. Message, when set,
// replaces the validator's own error message.
type Rule struct {
	Name    string
	Opts    map[string]any
	Message string
}

// Definition declares one input parameter of a task: where it comes from,
// what type it coerces into, whether it is required, its default and the
// validations applied after coercion. Composite parameters declare children
// resolved against the coerced value.
type Definition struct {
	Name       string
	Type       string
	Required   bool
	Source     string
	Default    any
	HasDefault bool
	DefaultFn  DefaultFunc
	Children   []*Definition
	Rules      []Rule
	Opts       map[string]any
}

// Option customizes a Definition at declaration time.
type Option func(*Definition)

// Required declares a mandatory parameter.
func Required(name, typ string, opts ...Option) *Definition {
	d := &Definition{Name: name, Type: typ, Required: true}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Optional declares a parameter that may be absent.
func Optional(name, typ string, opts ...Option) *Definition {
	d := &Definition{Name: name, Type: typ}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithDefault sets a static default used when the parameter is absent.
func WithDefault(v any) Option {
	return func(d *Definition) {
		d.Default = v
		d.HasDefault = true
	}
}

// WithDefaultFunc sets a deferred default evaluated against the resolution
// scope when the parameter is absent.
func WithDefaultFunc(fn DefaultFunc) Option {
	return func(d *Definition) {
		d.DefaultFn = fn
		d.HasDefault = true
	}
}

// WithSource reads the raw value from a different context key than the
// parameter name.
func WithSource(key string) Option {
	return func(d *Definition) {
		d.Source = key
	}
}

// WithChildren declares nested parameters resolved against the coerced
// composite value.
func WithChildren(children ...*Definition) Option {
	return func(d *Definition) {
		d.Children = append(d.Children, children...)
	}
}

// WithRule appends a validation rule by registry name.
func WithRule(name string, opts map[string]any) Option {
	return func(d *Definition) {
		d.Rules = append(d.Rules, Rule{Name: name, Opts: opts})
	}
}

// WithRuleMessage appends a validation rule with a custom failure message.
func WithRuleMessage(name string, opts map[string]any, message string) Option {
	return func(d *Definition) {
		d.Rules = append(d.Rules, Rule{Name: name, Opts: opts, Message: message})
	}
}

// WithCoerceOpts passes options through to the coercer for this parameter.
func WithCoerceOpts(opts map[string]any) Option {
	return func(d *Definition) {
		d.Opts = opts
	}
}

// lookupKey is the context key the raw value is read from.
func (d *Definition) lookupKey() string {
	if d.Source != "" {
		return d.Source
	}
	return d.Name
}
