package locale

// TypeDefaults are the per entity type overrides. Nil fields defer to the
// global defaults.
type TypeDefaults struct {
	Locale         *string
	FallbackLocale *string
	WithFallback   *bool
	OnlyTranslated *bool
}

// Scope is a resolved snapshot of a Context, consumed by the query composer.
type Scope struct {
	Locale         string
	FallbackLocale string
	WithFallback   bool
	OnlyTranslated bool
}

// UsesFallback reports whether reads in this scope coalesce with the fallback
// locale.
func (s Scope) UsesFallback() bool {
	return s.WithFallback && s.FallbackLocale != "" && s.FallbackLocale != s.Locale
}

// Context is the locale state attached to a single entity instance. It is
// never persisted.
type Context struct {
	global *State
	typ    TypeDefaults

	locale         *string
	fallbackLocale *string
	withFallback   *bool
	onlyTranslated *bool

	changed bool
}

// NewContext returns a context resolving against global and typ.
func NewContext(global *State, typ TypeDefaults) *Context {
	return &Context{global: global, typ: typ}
}

// Locale is the effective locale of the instance.
func (c *Context) Locale() string {
	return ResolveCode(c.locale, c.typ.Locale, c.global.Load().Locale)
}

// SetLocale overrides the locale and marks the instance as locale changed so
// the next save writes every translatable attribute to the new locale row.
func (c *Context) SetLocale(code string) {
	c.locale = &code
	c.changed = true
}

// Load overrides the locale without marking it changed. Used when an entity
// is materialised from a query at a known locale.
func (c *Context) Load(code string) {
	c.locale = &code
}

// FallbackLocale is the effective fallback locale of the instance.
func (c *Context) FallbackLocale() string {
	return ResolveCode(c.fallbackLocale, c.typ.FallbackLocale, c.global.Load().FallbackLocale)
}

// SetFallbackLocale overrides the fallback locale.
func (c *Context) SetFallbackLocale(code string) {
	c.fallbackLocale = &code
}

// WithFallback reports whether fallback reads are enabled.
func (c *Context) WithFallback() bool {
	return Resolve(c.withFallback, c.typ.WithFallback, c.global.Load().WithFallback)
}

// SetWithFallback overrides the fallback toggle.
func (c *Context) SetWithFallback(enabled bool) {
	c.withFallback = &enabled
}

// OnlyTranslated reports whether reads skip entities without a translation.
func (c *Context) OnlyTranslated() bool {
	return Resolve(c.onlyTranslated, c.typ.OnlyTranslated, c.global.Load().OnlyTranslated)
}

// SetOnlyTranslated overrides the only-translated toggle.
func (c *Context) SetOnlyTranslated(only bool) {
	c.onlyTranslated = &only
}

// ShouldFallback reports whether a lookup at locale may retry at the fallback
// locale. An empty locale means the current one.
func (c *Context) ShouldFallback(locale string) bool {
	fallback := c.FallbackLocale()
	if !c.WithFallback() || fallback == "" {
		return false
	}
	if locale == "" {
		locale = c.Locale()
	}
	return locale != fallback
}

// Changed reports whether SetLocale was called since the last ResetChanged.
func (c *Context) Changed() bool {
	return c.changed
}

// ResetChanged clears the locale changed flag, normally after a save.
func (c *Context) ResetChanged() {
	c.changed = false
}

// Scope resolves the context into a Scope.
func (c *Context) Scope() Scope {
	return Scope{
		Locale:         c.Locale(),
		FallbackLocale: c.FallbackLocale(),
		WithFallback:   c.WithFallback(),
		OnlyTranslated: c.OnlyTranslated(),
	}
}

// Clone copies the overrides into an independent context sharing the same
// global state and type defaults. The changed flag is not carried over.
func (c *Context) Clone() *Context {
	clone := &Context{global: c.global, typ: c.typ}
	clone.locale = clonePtr(c.locale)
	clone.fallbackLocale = clonePtr(c.fallbackLocale)
	clone.withFallback = clonePtr(c.withFallback)
	clone.onlyTranslated = clonePtr(c.onlyTranslated)
	return clone
}

func clonePtr[T any](value *T) *T {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

// Restore copies the overrides and the changed flag of saved back into c.
func (c *Context) Restore(saved *Context) {
	if saved == nil {
		return
	}
	c.locale = clonePtr(saved.locale)
	c.fallbackLocale = clonePtr(saved.fallbackLocale)
	c.withFallback = clonePtr(saved.withFallback)
	c.onlyTranslated = clonePtr(saved.onlyTranslated)
	c.changed = saved.changed
}

// Snapshot returns a copy of c including the changed flag, for Restore.
func (c *Context) Snapshot() *Context {
	snap := c.Clone()
	snap.changed = c.changed
	return snap
}
