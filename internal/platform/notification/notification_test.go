package notification

import (
	"strings"
	"testing"
)

func TestTemplateEngine_RegisterAndRender(t *testing.T) {
	eng := NewTemplateEngine()
	eng.RegisterTemplate(Template{
		ID:   "test-tpl",
		Name: "Test",
		Body: "Sayın {{name}}, randevunuz {{date}} tarihindedir.",
	})

	got, err := eng.Render("test-tpl", map[string]string{"name": "Ayşe", "date": "2024-03-08"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Sayın Ayşe, randevunuz 2024-03-08 tarihindedir."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	if _, err := NewTemplateEngine().Render("missing", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestTemplateEngine_LeavesMissingPlaceholders(t *testing.T) {
	eng := NewTemplateEngine()
	got, _ := eng.Render(TemplateFollowUpReminder, map[string]string{})
	if !strings.Contains(got, "{{patient_name}}") {
		t.Errorf("expected placeholder to remain, got %q", got)
	}
}

func TestTemplateEngine_FollowUpReminder(t *testing.T) {
	got, err := NewTemplateEngine().Render(TemplateFollowUpReminder, map[string]string{"patient_name": "Mehmet Yılmaz"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "Merhaba Mehmet Yılmaz, geçen hafta görüştüğümüz tedavi planı") {
		t.Errorf("unexpected text %q", got)
	}
}

func TestTemplateEngine_ManualReminderDiffersFromAutomatic(t *testing.T) {
	eng := NewTemplateEngine()
	data := map[string]string{"patient_name": "Ali"}
	auto, _ := eng.Render(TemplateFollowUpReminder, data)
	manual, _ := eng.Render(TemplateManualReminder, data)
	if auto == manual {
		t.Error("expected different wording for manual reminders")
	}
	if !strings.Contains(manual, "tedavi ile ilgili") {
		t.Errorf("unexpected manual text %q", manual)
	}
}

func TestTemplateEngine_DailySummary(t *testing.T) {
	got, err := NewTemplateEngine().Render(TemplateDailySummary, map[string]string{
		"date": "2024-03-01", "doctor": "DR SEFA ARAS", "total": "3",
		"implant": "1", "checkup": "1", "examination": "1", "revisit": "0",
		"accepted": "1", "not_accepted": "2", "new_followups": "2",
		"details": BulletList("Kabul Edilen Hastalar:", []string{"Ali - implant"}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"Günlük Özet - 2024-03-01\n\nSayın DR SEFA ARAS,",
		"📊 Toplam Hasta: 3\n• İmplant: 1\n",
		"📅 Yeni Takipler: 2\n\nKabul Edilen Hastalar:\n• Ali - implant\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in\n%s", want, got)
		}
	}
}

func TestBulletList_Empty(t *testing.T) {
	if got := BulletList("Heading:", nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestTemplates_Sorted(t *testing.T) {
	ts := NewTemplateEngine().Templates()
	if len(ts) != 3 {
		t.Fatalf("expected 3 built-in templates, got %d", len(ts))
	}
	for i := 1; i < len(ts); i++ {
		if ts[i-1].ID > ts[i].ID {
			t.Errorf("templates not sorted: %s before %s", ts[i-1].ID, ts[i].ID)
		}
	}
}
