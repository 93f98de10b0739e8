package form_test

import (
	"reflect"
	"testing"

	"devevents/src-server/form"
	"devevents/src-server/model"
)

func TestAddTag(t *testing.T) {
	s := form.New(nil, nil)

	added := []bool{
		s.AddTag("ai"),
		s.AddTag(" ai "),
		s.AddTag("ml"),
		s.AddTag("   "),
		s.AddTag(""),
		s.AddTag("AI"),
	}
	if want := []bool{true, false, true, false, false, true}; !reflect.DeepEqual(added, want) {
		t.Error("unexpected add results", added)
	}
	if got := s.Draft().Tags; !reflect.DeepEqual(got, []string{"ai", "ml", "AI"}) {
		t.Error("unexpected tags", got)
	}
}

func TestRemoveTag(t *testing.T) {
	s := form.New(nil, nil)
	s.AddTag("go")
	s.AddTag("rust")
	s.AddTag("zig")

	s.RemoveTag(5)
	s.RemoveTag(-1)
	if got := s.Draft().Tags; len(got) != 3 {
		t.Error("out of range removal changed tags", got)
	}

	s.RemoveTag(1)
	if got := s.Draft().Tags; !reflect.DeepEqual(got, []string{"go", "zig"}) {
		t.Error("unexpected tags", got)
	}

	// removed values can be added again
	if !s.AddTag("rust") {
		t.Error("expected re-adding a removed tag to succeed")
	}
}

func TestAgendaIndexStability(t *testing.T) {
	s := form.New(nil, nil)
	s.AddAgendaItem()
	s.AddAgendaItem()
	s.AddAgendaItem()
	s.UpdateAgendaItem(0, form.AGENDA_FIELD_TOPIC, "first")
	s.UpdateAgendaItem(1, form.AGENDA_FIELD_TOPIC, "second")
	s.UpdateAgendaItem(2, form.AGENDA_FIELD_TOPIC, "third")

	s.RemoveAgendaItem(1)
	agenda := s.Draft().Agenda
	if len(agenda) != 2 {
		t.Fatal("expected 2 agenda items, got", len(agenda))
	}

	s.UpdateAgendaItem(1, form.AGENDA_FIELD_TOPIC, "X")
	s.UpdateAgendaItem(1, form.AGENDA_FIELD_TIME, "10:30")
	want := []model.AgendaItem{
		{Topic: "first"},
		{Time: "10:30", Topic: "X"},
	}
	if got := s.Draft().Agenda; !reflect.DeepEqual(got, want) {
		t.Error("unexpected agenda", got)
	}
}

func TestAgendaOutOfRange(t *testing.T) {
	s := form.New(nil, nil)

	s.UpdateAgendaItem(5, form.AGENDA_FIELD_TIME, "9:00")
	s.RemoveAgendaItem(0)
	if got := s.Draft().Agenda; len(got) != 0 {
		t.Error("expected empty agenda, got", got)
	}

	s.AddAgendaItem()
	s.UpdateAgendaItem(0, "speaker", "nobody")
	if got := s.Draft().Agenda; !reflect.DeepEqual(got, []model.AgendaItem{{}}) {
		t.Error("unknown field changed the entry", got)
	}
}

func TestAgendaKeepsEmptyItems(t *testing.T) {
	s := form.New(nil, nil)
	s.AddAgendaItem()
	s.AddAgendaItem()
	s.UpdateAgendaItem(1, form.AGENDA_FIELD_TIME, "09:00")

	if got := s.Draft().FlattenAgenda(); !reflect.DeepEqual(got, []string{" - ", "09:00 - "}) {
		t.Errorf("unexpected flattened agenda %q", got)
	}
}
