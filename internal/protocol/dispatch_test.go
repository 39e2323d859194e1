package protocol

import (
	"reflect"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprlingo/internal/language"
	"github.com/leonardotrapani/hyprlingo/internal/transcript"
	"github.com/rs/zerolog"
)

type manualTimer struct{ stopped bool }

func (t *manualTimer) Stop() bool {
	t.stopped = true
	return true
}

type manualScheduler struct{ fns []func() }

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) language.Timer {
	s.fns = append(s.fns, f)
	return &manualTimer{}
}

type fixture struct {
	d     *Dispatcher
	tr    *transcript.Transcript
	tl    *transcript.Translation
	lock  *language.Lock
	sched *manualScheduler
}

func newFixture() *fixture {
	f := &fixture{
		tr:    transcript.NewTranscript(),
		tl:    transcript.NewTranslation(),
		sched: &manualScheduler{},
	}
	f.lock = language.NewLock(f.sched, nil)
	f.d = NewDispatcher(f.tr, f.tl, f.lock, zerolog.Nop())
	return f
}

func (f *fixture) send(t *testing.T, frames ...string) {
	t.Helper()
	for _, frame := range frames {
		f.d.HandleText([]byte(frame))
	}
}

func TestScenarioCleanFinal(t *testing.T) {
	f := newFixture()
	f.send(t, `{"type":"partial","text":"hel"}`, `{"type":"final","text":"hello"}`)

	if f.tr.Partial() != "" {
		t.Errorf("partial = %q, want empty", f.tr.Partial())
	}
	want := []transcript.Line{{Text: "hello", Struck: false}}
	if got := f.tr.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("transcript = %+v, want %+v", got, want)
	}
}

func TestScenarioRetraction(t *testing.T) {
	f := newFixture()
	f.send(t,
		`{"type":"partial","text":"hel"}`,
		`{"type":"final","text":"hello"}`,
		`{"type":"invalidate_asr"}`,
	)

	want := []transcript.Line{{Text: "hello", Struck: true}}
	if got := f.tr.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("transcript = %+v, want %+v", got, want)
	}
}

func TestScenarioTranslationRefinement(t *testing.T) {
	f := newFixture()
	f.send(t,
		`{"type":"final_translate","translated":"hi","provisional":true}`,
		`{"type":"final_translate","translated":"hello","replace_last":true}`,
	)

	want := []transcript.TranslationLine{{Text: "hello", Provisional: false, Struck: false}}
	if got := f.tl.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("translation = %+v, want %+v", got, want)
	}
}

func TestInvalidateAllIdempotent(t *testing.T) {
	f := newFixture()
	f.send(t, `{"type":"final","text":"a"}`, `{"type":"final","text":"b"}`, `{"type":"invalidate_all_asr"}`)
	once := f.tr.Lines()
	f.send(t, `{"type":"invalidate_all_asr"}`)
	if got := f.tr.Lines(); !reflect.DeepEqual(got, once) {
		t.Errorf("second invalidate_all_asr changed state: %+v -> %+v", once, got)
	}
}

func TestMidTranslateAndClear(t *testing.T) {
	f := newFixture()
	f.send(t, `{"type":"mid_translate","translated":"good mor"}`)
	if f.tl.Partial() != "good mor" {
		t.Errorf("partial translation = %q", f.tl.Partial())
	}
	f.send(t, `{"type":"mid_translate","translated":""}`)
	if f.tl.Partial() != "" {
		t.Errorf("partial translation = %q, want cleared", f.tl.Partial())
	}

	f.send(t, `{"type":"mid_translate","translated":"x"}`, `{"type":"final_translate","translated":"xy"}`)
	if f.tl.Partial() != "" {
		t.Error("final_translate must clear the partial translation")
	}
}

func TestTranslationInvalidation(t *testing.T) {
	f := newFixture()
	f.send(t,
		`{"type":"final_translate","translated":"one"}`,
		`{"type":"final_translate","translated":"two"}`,
		`{"type":"invalidate_translation"}`,
	)
	got := f.tl.Lines()
	if got[0].Struck || !got[1].Struck {
		t.Errorf("invalidate_translation struck the wrong line: %+v", got)
	}

	f.send(t, `{"type":"invalidate_all_translation"}`)
	for i, l := range f.tl.Lines() {
		if !l.Struck {
			t.Errorf("line %d not struck", i)
		}
	}
}

func TestInvalidateOnEmptyStoresIsHarmless(t *testing.T) {
	f := newFixture()
	f.send(t,
		`{"type":"invalidate_asr"}`,
		`{"type":"invalidate_all_asr"}`,
		`{"type":"invalidate_translation"}`,
		`{"type":"invalidate_all_translation"}`,
	)
	if f.tr.Len() != 0 || f.tl.Len() != 0 {
		t.Error("invalidation created lines")
	}
	if got := f.d.Stats().Applied; got != 4 {
		t.Errorf("Applied = %d, want 4", got)
	}
}

func TestLanguageEvents(t *testing.T) {
	f := newFixture()
	f.send(t, `{"type":"lang","lang":"en"}`)
	if got := f.lock.State(); got.Status != language.Detecting || got.Display != "en" {
		t.Errorf("after lang: %+v", got)
	}

	f.send(t, `{"type":"lang_locked","lang":"fr"}`)
	if got := f.lock.State(); got.Status != language.Mismatch || got.Display != "fr" {
		t.Errorf("after lang_locked: %+v", got)
	}
	if len(f.sched.fns) != 1 {
		t.Fatalf("scheduled %d settles, want 1", len(f.sched.fns))
	}

	f.sched.fns[0]()
	if got := f.lock.State(); got.Status != language.Final || got.Display != "fr" {
		t.Errorf("after settle: %+v", got)
	}
}

func TestFailOpen(t *testing.T) {
	f := newFixture()
	f.send(t, `{"type":"partial","text":"keep me"}`, `{"type":"final","text":"line"}`, `{"type":"partial","text":"keep me"}`)
	before := f.tr.Lines()

	for _, frame := range []string{`garbage`, `{"type":"final"}`, `{"type":"nope","text":"x"}`, `{}`} {
		if f.d.HandleText([]byte(frame)) {
			t.Errorf("HandleText(%q) reported applied", frame)
		}
	}
	f.d.HandleBinary(8192)

	if got := f.tr.Lines(); !reflect.DeepEqual(got, before) {
		t.Errorf("ignored frames changed the transcript: %+v", got)
	}
	if f.tr.Partial() != "keep me" {
		t.Errorf("ignored frames changed the partial: %q", f.tr.Partial())
	}

	want := Stats{Applied: 3, Malformed: 3, UnknownType: 1, Binary: 1}
	if got := f.d.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
	if f.d.Stats().Ignored() != 5 {
		t.Errorf("Ignored() = %d, want 5", f.d.Stats().Ignored())
	}
}

func TestApplyKeepsLineMetadata(t *testing.T) {
	f := newFixture()
	f.send(t,
		`{"type":"final","text":"hola","lang":"es","replayed":true}`,
		`{"type":"final_translate","translated":"hello","lang":"es"}`,
	)
	if got := f.tr.Lines()[0]; got.Lang != "es" || !got.Replayed {
		t.Errorf("transcript line = %+v", got)
	}
	if got := f.tl.Lines()[0]; got.Lang != "es" {
		t.Errorf("translation line = %+v", got)
	}
}
