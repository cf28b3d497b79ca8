// Package notification renders the outbound message texts used by reminder
// drafts. Templates use {{key}} placeholders; rendering never sends anything.
package notification

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Channel names the delivery medium a template is written for.
type Channel string

const ChannelWhatsApp Channel = "whatsapp"

const (
	TemplateFollowUpReminder = "followup-reminder"
	TemplateManualReminder   = "manual-reminder"
	TemplateDailySummary     = "daily-summary"
)

// Template is a named message body with {{key}} placeholders.
type Template struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Body    string  `json:"body"`
	Channel Channel `json:"channel"`
}

// TemplateEngine holds the registered templates.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine returns an engine with the clinic's Turkish templates
// registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	for _, t := range builtIn {
		e.RegisterTemplate(t)
	}
	return e
}

var builtIn = []Template{
	{
		ID:      TemplateFollowUpReminder,
		Name:    "Takip Hatırlatması",
		Channel: ChannelWhatsApp,
		Body: "Merhaba {{patient_name}}, geçen hafta görüştüğümüz tedavi planı hakkında nazik bir hatırlatma yapmak istedik. " +
			"Karar verebildiniz mi? İsterseniz tekrar bilgi verebiliriz.",
	},
	{
		ID:      TemplateManualReminder,
		Name:    "Manuel Hatırlatma",
		Channel: ChannelWhatsApp,
		Body: "Merhaba {{patient_name}}, geçen hafta görüştüğümüz tedavi ile ilgili nazik bir hatırlatma yapmak istedik. " +
			"Karar verebildiniz mi? İsterseniz tekrar bilgi verebiliriz.",
	},
	{
		ID:      TemplateDailySummary,
		Name:    "Günlük Özet",
		Channel: ChannelWhatsApp,
		Body: "Günlük Özet - {{date}}\n\n" +
			"Sayın {{doctor}},\n\n" +
			"Bugünkü hasta özetiniz:\n\n" +
			"📊 Toplam Hasta: {{total}}\n" +
			"• İmplant: {{implant}}\n" +
			"• Kontrol: {{checkup}}\n" +
			"• Muayene: {{examination}}\n" +
			"• Tekrar Görüşme: {{revisit}}\n\n" +
			"✅ Kabul Edilen: {{accepted}}\n" +
			"❌ Düşünen/Ret: {{not_accepted}}\n\n" +
			"📅 Yeni Takipler: {{new_followups}}\n\n" +
			"{{details}}",
	},
}

// RegisterTemplate adds or replaces a template.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Templates lists the registered templates ordered by id.
func (e *TemplateEngine) Templates() []Template {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Template, 0, len(e.templates))
	for _, t := range e.templates {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Render fills the template's placeholders from data. Placeholders without a
// value are left in place.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (string, error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template %q not found", templateID)
	}

	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(t.Body), nil
}

// BulletList renders "• item" lines under a heading, or "" for no items.
func BulletList(heading string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString("• ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	return b.String()
}
