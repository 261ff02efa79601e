package diag

import (
	"testing"

	"xen-lang/internal/span"
)

func TestDiagnosticString(t *testing.T) {
	s := span.Span{Start: span.Position{Line: 2, Column: 4}}
	d := Errorf(CodeUnexpectedChar, s, "unexpected character '%s'", "&")
	if got, want := d.String(), "[L0002] error at 2:4: unexpected character '&'"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	d = d.WithHint("use 'and'")
	if got, want := d.String(), "[L0002] error at 2:4: unexpected character '&' (hint: use 'and')"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestListHasErrors(t *testing.T) {
	warn := Warningf(CodeConstantLoop, span.Span{}, "loop never ends")
	if (List{warn}).HasErrors() {
		t.Error("warnings alone are not errors")
	}
	l := List{warn, Errorf(CodeExpectedToken, span.Span{}, "expected '}'")}
	if !l.HasErrors() {
		t.Error("expected HasErrors")
	}
	if l.Error() != "[P0004] warning at 0:0: loop never ends\n[P0001] error at 0:0: expected '}'" {
		t.Errorf("unexpected message %q", l.Error())
	}
}
