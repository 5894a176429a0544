package locale

import "testing"

func ptr[T any](v T) *T { return &v }

func TestResolvePrecedence(t *testing.T) {
	cases := []struct {
		name     string
		override *bool
		typ      *bool
		global   bool
		want     bool
	}{
		{name: "global only", global: true, want: true},
		{name: "type beats global", typ: ptr(false), global: true, want: false},
		{name: "override beats type", override: ptr(true), typ: ptr(false), global: false, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(tc.override, tc.typ, tc.global); got != tc.want {
				t.Fatalf("Resolve() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestResolveCodeTreatsEmptyAsAbsent(t *testing.T) {
	if got := ResolveCode(ptr(""), ptr("de"), "en"); got != "de" {
		t.Fatalf("expected type default de, got %q", got)
	}
	if got := ResolveCode(nil, ptr(""), "en"); got != "en" {
		t.Fatalf("expected global en, got %q", got)
	}
}

func TestContextFollowsGlobalState(t *testing.T) {
	state := NewState(Defaults{Locale: "en", FallbackLocale: "en", WithFallback: true})
	ctx := NewContext(state, TypeDefaults{})

	if ctx.Locale() != "en" {
		t.Fatalf("expected en, got %q", ctx.Locale())
	}
	state.SetLocale("fr")
	if ctx.Locale() != "fr" {
		t.Fatalf("expected context to observe global switch, got %q", ctx.Locale())
	}
}

func TestSetLocaleMarksChangedButLoadDoesNot(t *testing.T) {
	ctx := NewContext(NewState(Defaults{Locale: "en"}), TypeDefaults{})

	ctx.Load("de")
	if ctx.Changed() || ctx.Locale() != "de" {
		t.Fatalf("Load should set locale without change flag: changed=%v locale=%q", ctx.Changed(), ctx.Locale())
	}

	ctx.SetLocale("fr")
	if !ctx.Changed() {
		t.Fatal("expected SetLocale to mark the context changed")
	}
	ctx.ResetChanged()
	if ctx.Changed() {
		t.Fatal("expected ResetChanged to clear the flag")
	}
}

func TestShouldFallback(t *testing.T) {
	state := NewState(Defaults{Locale: "fr", FallbackLocale: "en", WithFallback: true})

	ctx := NewContext(state, TypeDefaults{})
	if !ctx.ShouldFallback("") {
		t.Fatal("expected fallback from fr to en")
	}
	if ctx.ShouldFallback("en") {
		t.Fatal("fallback locale must not fall back to itself")
	}

	ctx.SetWithFallback(false)
	if ctx.ShouldFallback("fr") {
		t.Fatal("expected no fallback when disabled on the instance")
	}

	noFallback := NewContext(NewState(Defaults{Locale: "fr", WithFallback: true}), TypeDefaults{})
	if noFallback.ShouldFallback("fr") {
		t.Fatal("expected no fallback without a fallback locale")
	}
}

func TestTypeDefaultsApplyBeforeGlobal(t *testing.T) {
	state := NewState(Defaults{Locale: "en", OnlyTranslated: false})
	ctx := NewContext(state, TypeDefaults{Locale: ptr("es"), OnlyTranslated: ptr(true)})

	scope := ctx.Scope()
	if scope.Locale != "es" || !scope.OnlyTranslated {
		t.Fatalf("unexpected scope %+v", scope)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	ctx := NewContext(NewState(Defaults{Locale: "en"}), TypeDefaults{})
	ctx.SetLocale("fr")

	clone := ctx.Clone()
	clone.SetLocale("de")

	if ctx.Locale() != "fr" {
		t.Fatalf("expected original to keep fr, got %q", ctx.Locale())
	}
	if clone.Locale() != "de" {
		t.Fatalf("expected clone de, got %q", clone.Locale())
	}
}

func TestScopeUsesFallback(t *testing.T) {
	if (Scope{Locale: "fr", FallbackLocale: "en", WithFallback: true}).UsesFallback() != true {
		t.Fatal("expected fallback for fr -> en")
	}
	if (Scope{Locale: "en", FallbackLocale: "en", WithFallback: true}).UsesFallback() {
		t.Fatal("expected no fallback when locales match")
	}
	if (Scope{Locale: "fr", FallbackLocale: "", WithFallback: true}).UsesFallback() {
		t.Fatal("expected no fallback without fallback locale")
	}
}

func TestSnapshotRestore(t *testing.T) {
	state := NewState(Defaults{Locale: "en"})
	ctx := NewContext(state, TypeDefaults{})

	saved := ctx.Snapshot()
	ctx.SetLocale("fr")
	ctx.SetWithFallback(false)
	ctx.Restore(saved)

	if ctx.Locale() != "en" || ctx.Changed() {
		t.Fatalf("restore should bring back the global locale, got %q changed=%v", ctx.Locale(), ctx.Changed())
	}
	state.SetLocale("de")
	if ctx.Locale() != "de" {
		t.Fatal("restored context must keep following the global locale")
	}
}
