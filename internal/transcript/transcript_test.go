package transcript

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestTranscriptPartialThenFinal(t *testing.T) {
	tr := NewTranscript()
	tr.SetPartial("hel")
	if tr.Partial() != "hel" {
		t.Fatalf("Partial() = %q, want %q", tr.Partial(), "hel")
	}

	tr.Commit(Line{Text: "hello"})

	if tr.Partial() != "" {
		t.Errorf("Partial() = %q, want empty after commit", tr.Partial())
	}
	want := []Line{{Text: "hello"}}
	if got := tr.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %+v, want %+v", got, want)
	}
}

func TestTranscriptPartialReplaced(t *testing.T) {
	tr := NewTranscript()
	tr.SetPartial("hel")
	tr.SetPartial("hello wor")
	if tr.Partial() != "hello wor" {
		t.Errorf("Partial() = %q", tr.Partial())
	}
	if tr.Len() != 0 {
		t.Errorf("partials must not create lines, Len() = %d", tr.Len())
	}
}

func TestTranscriptStrikeLast(t *testing.T) {
	tr := NewTranscript()
	if tr.StrikeLast() {
		t.Error("StrikeLast() on empty transcript should report false")
	}

	tr.Commit(Line{Text: "one"})
	tr.Commit(Line{Text: "two"})
	if !tr.StrikeLast() {
		t.Error("StrikeLast() should report true")
	}

	want := []Line{{Text: "one"}, {Text: "two", Struck: true}}
	if got := tr.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %+v, want %+v", got, want)
	}
}

func TestTranscriptStrikeAllIdempotent(t *testing.T) {
	tr := NewTranscript()
	tr.Commit(Line{Text: "a"})
	tr.Commit(Line{Text: "b"})

	tr.StrikeAll()
	once := tr.Lines()
	tr.StrikeAll()
	twice := tr.Lines()

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("StrikeAll twice = %+v, once = %+v", twice, once)
	}
	for i, l := range twice {
		if !l.Struck {
			t.Errorf("line %d not struck", i)
		}
	}
}

func TestTranscriptCommitIsNeverStruck(t *testing.T) {
	tr := NewTranscript()
	tr.Commit(Line{Text: "x", Struck: true, Lang: "ja", Replayed: true})
	got := tr.Lines()[0]
	if got.Struck {
		t.Error("a fresh line must not be struck")
	}
	if got.Lang != "ja" || !got.Replayed {
		t.Errorf("line metadata lost: %+v", got)
	}
}

func TestTranscriptLinesIsACopy(t *testing.T) {
	tr := NewTranscript()
	tr.Commit(Line{Text: "keep"})
	lines := tr.Lines()
	lines[0].Text = "mutated"
	if tr.Lines()[0].Text != "keep" {
		t.Error("Lines() exposed internal storage")
	}
}

func TestTranscriptText(t *testing.T) {
	tr := NewTranscript()
	tr.Commit(Line{Text: "hello"})
	tr.Commit(Line{Text: "wrold"})
	tr.StrikeLast()
	tr.Commit(Line{Text: "world"})

	if got := tr.Text(); got != "hello world" {
		t.Errorf("Text() = %q, want %q", got, "hello world")
	}
}

func TestStoresNeverShrink(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := NewTranscript()
	tl := NewTranslation()

	prevT, prevL := 0, 0
	for i := 0; i < 2000; i++ {
		switch rng.Intn(8) {
		case 0:
			tr.SetPartial("p")
		case 1:
			tr.Commit(Line{Text: "f"})
		case 2:
			tr.StrikeLast()
		case 3:
			tr.StrikeAll()
		case 4:
			tl.SetPartial("m")
		case 5:
			tl.Commit(TranslationLine{Text: "t", Provisional: rng.Intn(2) == 0}, rng.Intn(2) == 0)
		case 6:
			tl.StrikeLast()
		case 7:
			tl.StrikeAll()
		}
		if tr.Len() < prevT || tl.Len() < prevL {
			t.Fatalf("step %d: store shrank (%d->%d, %d->%d)", i, prevT, tr.Len(), prevL, tl.Len())
		}
		prevT, prevL = tr.Len(), tl.Len()
	}
}
