package locale

import (
	"reflect"
	"testing"
)

func TestLookup(t *testing.T) {
	if Lookup("ru").Code != "ru" || Lookup("RU").Code != "ru" {
		t.Fatal("expected Russian")
	}
	if Lookup("").Code != "en" || Lookup("de").Code != "en" {
		t.Fatal("expected English fallback")
	}
}

func TestIsExit(t *testing.T) {
	for _, s := range []string{"exit", " Finish ", "END", "/exit", "Выход", "завершить", "Закончить", "Exit test", "Прервать тест", "back"} {
		if !IsExit(s) {
			t.Errorf("IsExit(%q) = false", s)
		}
	}
	for _, s := range []string{"", "exit now", "Dijkstra", "finished"} {
		if IsExit(s) {
			t.Errorf("IsExit(%q) = true", s)
		}
	}
}

func TestFormatCourse(t *testing.T) {
	if got := English.FormatCourse("Algorithms", 3); got != "Course: Algorithms (ID: 3)" {
		t.Fatalf("got %q", got)
	}
	if got := Russian.FormatCourse("Алгоритмы", 3); got != "Курс: Алгоритмы (ID: 3)" {
		t.Fatalf("got %q", got)
	}
}

// Every string field must be translated.
func TestLocalesComplete(t *testing.T) {
	for _, m := range []Messages{English, Russian} {
		v := reflect.ValueOf(m)
		for i := 0; i < v.NumField(); i++ {
			f := v.Field(i)
			if f.Kind() == reflect.String && f.String() == "" {
				t.Errorf("%s: field %s is empty", m.Code, v.Type().Field(i).Name)
			}
		}
		if m.Report.Header == "" || m.Report.Score == "" {
			t.Errorf("%s: report wording missing", m.Code)
		}
	}
}
