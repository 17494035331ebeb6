package classify

import (
	"testing"

	"github.com/ppiankov/intercept/internal/model"
)

func TestClassify_Examples(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		sentence string
		want     bool
	}{
		{"The GDP grew 3.2% in 2023.", true},
		{"I think it might be nice.", false},
		{"Hi.", false}, // below minimum length
		{"The company was founded in 1998.", true},
		{"Revenue reached $4 billion last quarter.", true},
		{"The race covers 42 km through the city.", true},
		{"Details are at https://example.com/report for download.", true},
		{"The finding was confirmed [3] independently.", true},
		{"According to researchers, the trend continued.", true},
		{"Marie Curie won twice.", true}, // proper-noun run
		{"Walking is nice on quiet mornings.", false},
		{"Perhaps the data shows 42% growth.", false}, // hedge overrides number
		{"This museum is beautiful and holds 500 paintings.", false}, // subjective overrides
		{"I really love this city.", false},
		{"Water boils at 100 °C at sea level.", true},
	}

	for _, tt := range tests {
		if got := c.IsClaim(tt.sentence); got != tt.want {
			t.Errorf("IsClaim(%q) = %v, want %v", tt.sentence, got, tt.want)
		}
	}
}

func TestClassify_Heuristic(t *testing.T) {
	c := NewClassifier()

	heuristic, ok := c.Classify("The GDP grew 3.2% in 2023.")
	if !ok {
		t.Fatal("expected a claim")
	}
	if heuristic != "signal:number" {
		t.Errorf("expected first matching signal (number), got %q", heuristic)
	}

	heuristic, ok = c.Classify("According to analysts, demand keeps growing rapidly.")
	if !ok {
		t.Fatal("expected a claim")
	}
	if heuristic != "signal:source-cue" {
		t.Errorf("expected source-cue signal, got %q", heuristic)
	}
}

func TestClassify_Pure(t *testing.T) {
	c := NewClassifier()
	s := "The bridge spans 1,280 meters across the bay."
	first := c.IsClaim(s)
	for i := 0; i < 10; i++ {
		if c.IsClaim(s) != first {
			t.Fatal("classification is not deterministic")
		}
	}
}

func TestFilter(t *testing.T) {
	c := NewClassifier()
	sentences := []model.Sentence{
		{Text: "Paris is the capital of France.", Order: 0},
		{Text: "I really love this city.", Order: 1},
		{Text: "It has a population of 2.1 million.", Order: 2},
	}

	claims := c.Filter(sentences)
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d: %+v", len(claims), claims)
	}
	if claims[0].Sentence != 0 || claims[1].Sentence != 2 {
		t.Errorf("unexpected claim sentence indices: %+v", claims)
	}
	if claims[0].Text != "Paris is the capital of France." {
		t.Errorf("unexpected first claim: %q", claims[0].Text)
	}
	if claims[0].Heuristic == "" {
		t.Error("expected a heuristic on classified claims")
	}
}

func TestFilter_Empty(t *testing.T) {
	c := NewClassifier()
	if claims := c.Filter(nil); len(claims) != 0 {
		t.Errorf("expected no claims, got %d", len(claims))
	}
}
