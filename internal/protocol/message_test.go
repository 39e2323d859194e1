package protocol

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Event
	}{
		{"lang", `{"type":"lang","lang":"english"}`, LangDetected{Lang: "english"}},
		{"lang_locked", `{"type":"lang_locked","lang":"fr"}`, LangLocked{Lang: "fr"}},
		{"partial", `{"type":"partial","text":"hel"}`, Partial{Text: "hel"}},
		{"empty partial", `{"type":"partial","text":""}`, Partial{Text: ""}},
		{"final", `{"type":"final","text":"hello"}`, Final{Text: "hello"}},
		{
			"replayed final",
			`{"type":"final","text":"bonjour","corrected":true,"replayed":true}`,
			Final{Text: "bonjour", Corrected: true, Replayed: true},
		},
		{"multilang final", `{"type":"final","text":"hola","lang":"es"}`, Final{Text: "hola", Lang: "es"}},
		{"invalidate_asr", `{"type":"invalidate_asr"}`, InvalidateASR{}},
		{"invalidate_all_asr", `{"type":"invalidate_all_asr"}`, InvalidateAllASR{}},
		{"mid_translate", `{"type":"mid_translate","translated":"hi"}`, MidTranslate{Text: "hi"}},
		{"mid_translate clear", `{"type":"mid_translate","translated":""}`, MidTranslate{Text: ""}},
		{
			"final_translate",
			`{"type":"final_translate","translated":"hi","provisional":true}`,
			FinalTranslate{Text: "hi", Provisional: true},
		},
		{
			"final_translate replace",
			`{"type":"final_translate","translated":"hello","replace_last":true,"provisional":false}`,
			FinalTranslate{Text: "hello", ReplaceLast: true},
		},
		{
			"final_translate text fallback",
			`{"type":"final_translate","text":"hey","lang":"ja","replayed":true}`,
			FinalTranslate{Text: "hey", Lang: "ja", Replayed: true},
		},
		{"invalidate_translation", `{"type":"invalidate_translation"}`, InvalidateTranslation{}},
		{"invalidate_all_translation", `{"type":"invalidate_all_translation"}`, InvalidateAllTranslation{}},
		{"extra fields ignored", `{"type":"partial","text":"x","confidence":0.4}`, Partial{Text: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.data))
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `hello`, ErrMalformed},
		{"truncated", `{"type":"final","text":"hel`, ErrMalformed},
		{"array", `[1,2]`, ErrMalformed},
		{"null", `null`, ErrMalformed},
		{"missing type", `{"text":"x"}`, ErrMalformed},
		{"type not a string", `{"type":3}`, ErrMalformed},
		{"lang without code", `{"type":"lang"}`, ErrMalformed},
		{"locked without code", `{"type":"lang_locked","lang":""}`, ErrMalformed},
		{"final without text", `{"type":"final"}`, ErrMalformed},
		{"text wrong type", `{"type":"partial","text":42}`, ErrMalformed},
		{"translate without text", `{"type":"final_translate","provisional":true}`, ErrMalformed},
		{"unknown", `{"type":"heartbeat"}`, ErrUnknownType},
		{"empty type", `{"type":""}`, ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Parse([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
			if ev != nil {
				t.Errorf("Parse() returned event %#v alongside an error", ev)
			}
		})
	}
}

func TestEventKinds(t *testing.T) {
	events := []Event{
		LangDetected{}, LangLocked{}, Partial{}, Final{}, InvalidateASR{}, InvalidateAllASR{},
		MidTranslate{}, FinalTranslate{}, InvalidateTranslation{}, InvalidateAllTranslation{},
	}
	if len(events) != len(Kinds) {
		t.Fatalf("%d events for %d kinds", len(events), len(Kinds))
	}
	for i, ev := range events {
		if ev.Kind() != Kinds[i] {
			t.Errorf("event %d Kind() = %q, want %q", i, ev.Kind(), Kinds[i])
		}
	}
}
