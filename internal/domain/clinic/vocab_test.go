package clinic

import "testing"

func TestParseStatus_AcceptsTurkishAliases(t *testing.T) {
	cases := map[string]Status{
		"accepted":     StatusAccepted,
		"Kabul Etti":   StatusAccepted,
		"kabul etmedi": StatusDeclined,
		"düşünüyor":    StatusUndecided,
		" undecided ":  StatusUndecided,
	}
	for in, want := range cases {
		got, ok := ParseStatus(in)
		if !ok || got != want {
			t.Errorf("ParseStatus(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseStatus("maybe"); ok {
		t.Error("expected unknown status to be rejected")
	}
}

func TestParseVisitType(t *testing.T) {
	if vt, ok := ParseVisitType("muayene"); !ok || vt != VisitExamination {
		t.Errorf("expected examination, got %q", vt)
	}
	if vt, ok := ParseVisitType("kontrol"); !ok || vt != VisitCheckup {
		t.Errorf("expected checkup, got %q", vt)
	}
	if _, ok := ParseVisitType("surgery"); ok {
		t.Error("expected unknown visit type to be rejected")
	}
}

func TestParseFollowUpAndDraftStatus(t *testing.T) {
	if st, ok := ParseFollowUpStatus("gecikmiş"); !ok || st != FollowUpOverdue {
		t.Errorf("expected overdue, got %q", st)
	}
	if st, ok := ParseDraftStatus("gönderildi"); !ok || st != DraftSent {
		t.Errorf("expected sent, got %q", st)
	}
	if _, ok := ParseDraftStatus("queued"); ok {
		t.Error("expected unknown draft status to be rejected")
	}
}

func TestVisitType_IsCore(t *testing.T) {
	for _, vt := range CoreVisitTypes {
		if !vt.IsCore() {
			t.Errorf("expected %s to be core", vt)
		}
	}
	if VisitType("consultation").IsCore() {
		t.Error("unexpected core visit type")
	}
}
