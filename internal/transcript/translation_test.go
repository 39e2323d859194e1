package transcript

import (
	"reflect"
	"testing"
)

func TestTranslationReplaceLast(t *testing.T) {
	tl := NewTranslation()
	tl.SetPartial("h")

	if tl.Commit(TranslationLine{Text: "hi", Provisional: true}, false) {
		t.Error("append should not report a replacement")
	}
	if tl.Partial() != "" {
		t.Errorf("Partial() = %q, want cleared", tl.Partial())
	}

	tl.SetPartial("hel")
	if !tl.Commit(TranslationLine{Text: "hello"}, true) {
		t.Error("replace-last should report a replacement")
	}

	want := []TranslationLine{{Text: "hello", Provisional: false, Struck: false}}
	if got := tl.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %+v, want %+v", got, want)
	}
	if tl.Partial() != "" {
		t.Errorf("Partial() = %q, want cleared", tl.Partial())
	}
}

func TestTranslationReplaceLastOnEmptyAppends(t *testing.T) {
	tl := NewTranslation()

	if tl.Commit(TranslationLine{Text: "solo", Provisional: true}, true) {
		t.Error("replace-last on an empty store must fall back to append")
	}

	want := []TranslationLine{{Text: "solo", Provisional: true}}
	if got := tl.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %+v, want %+v", got, want)
	}
}

func TestTranslationReplaceClearsStrike(t *testing.T) {
	tl := NewTranslation()
	tl.Commit(TranslationLine{Text: "first"}, false)
	tl.Commit(TranslationLine{Text: "secnod", Provisional: true, Lang: "de"}, false)
	tl.StrikeAll()

	tl.Commit(TranslationLine{Text: "second", Provisional: true}, true)

	want := []TranslationLine{
		{Text: "first", Struck: true},
		{Text: "second", Lang: "de"},
	}
	if got := tl.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %+v, want %+v", got, want)
	}
}

func TestTranslationStrike(t *testing.T) {
	tl := NewTranslation()
	if tl.StrikeLast() {
		t.Error("StrikeLast() on empty store should report false")
	}
	tl.StrikeAll() // no-op on empty

	tl.Commit(TranslationLine{Text: "a"}, false)
	tl.Commit(TranslationLine{Text: "b"}, false)
	tl.StrikeLast()

	got := tl.Lines()
	if got[0].Struck || !got[1].Struck {
		t.Errorf("StrikeLast() struck the wrong line: %+v", got)
	}

	tl.StrikeAll()
	tl.StrikeAll()
	for i, l := range tl.Lines() {
		if !l.Struck {
			t.Errorf("line %d not struck after StrikeAll", i)
		}
	}
}

func TestTranslationEmptyPartialClears(t *testing.T) {
	tl := NewTranslation()
	tl.SetPartial("draft")
	tl.SetPartial("")
	if tl.Partial() != "" {
		t.Errorf("Partial() = %q, want empty", tl.Partial())
	}
}
