package vocabulary

import (
	"errors"
	"testing"

	"github.com/desertthunder/lsx/internal/models"
)

var kinds = []models.MediaKind{models.Episodic, models.Chaptered}

func TestForward(t *testing.T) {
	t.Run("total over every reference status and kind", func(t *testing.T) {
		for _, kind := range kinds {
			for _, status := range models.AniListStatuses {
				m, err := Forward(status, kind)
				if err != nil {
					t.Errorf("Forward(%s, %s) failed: %v", status, kind, err)
					continue
				}
				if !Known(models.MyAnimeList, m.Status, kind) {
					t.Errorf("Forward(%s, %s) = %s, which is not a %s MyAnimeList status", status, kind, m.Status, kind)
				}
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		for _, kind := range kinds {
			for _, status := range models.AniListStatuses {
				first, _ := Forward(status, kind)
				for range 5 {
					if again, _ := Forward(status, kind); again != first {
						t.Errorf("Forward(%s, %s) changed between calls: %v then %v", status, kind, first, again)
					}
				}
			}
		}
	})

	t.Run("kind dependent renaming", func(t *testing.T) {
		tc := []struct {
			status models.Status
			kind   models.MediaKind
			want   Mapping
		}{
			{models.StatusCurrent, models.Episodic, Mapping{Status: models.MALWatching}},
			{models.StatusCurrent, models.Chaptered, Mapping{Status: models.MALReading}},
			{models.StatusPlanning, models.Episodic, Mapping{Status: models.MALPlanToWatch}},
			{models.StatusPlanning, models.Chaptered, Mapping{Status: models.MALPlanToRead}},
			{models.StatusPaused, models.Chaptered, Mapping{Status: models.MALOnHold}},
			{models.StatusRepeating, models.Episodic, Mapping{Status: models.MALCompleted, Repeating: true}},
		}

		for _, tt := range tc {
			t.Run(string(tt.status)+"/"+tt.kind.String(), func(t *testing.T) {
				got, err := Forward(tt.status, tt.kind)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("got %+v, want %+v", got, tt.want)
				}
			})
		}
	})

	t.Run("unmapped status fails loudly", func(t *testing.T) {
		_, err := Forward("WATCHING", models.Episodic)
		if !errors.Is(err, models.ErrUnmappedStatus) {
			t.Fatalf("expected unmapped status error, got %v", err)
		}

		var unmapped *models.UnmappedStatusError
		if !errors.As(err, &unmapped) || unmapped.Status != "WATCHING" {
			t.Errorf("expected error to carry the status, got %v", err)
		}
	})

	t.Run("empty status is unmapped", func(t *testing.T) {
		if _, err := Forward("", models.Chaptered); !errors.Is(err, models.ErrUnmappedStatus) {
			t.Errorf("expected unmapped status error, got %v", err)
		}
	})
}

func TestReverse(t *testing.T) {
	t.Run("round trips every reference status", func(t *testing.T) {
		for _, kind := range kinds {
			for _, status := range models.AniListStatuses {
				m, err := Forward(status, kind)
				if err != nil {
					t.Fatalf("Forward(%s, %s) failed: %v", status, kind, err)
				}
				back, err := Reverse(m.Status, m.Repeating, kind)
				if err != nil {
					t.Fatalf("Reverse(%v) failed: %v", m, err)
				}
				if back != status {
					t.Errorf("round trip of %s (%s) returned %s", status, kind, back)
				}
			}
		}
	})

	t.Run("repeat flag on in-progress status", func(t *testing.T) {
		got, err := Reverse(models.MALWatching, true, models.Episodic)
		if err != nil || got != models.StatusCurrent {
			t.Errorf("got %s, %v", got, err)
		}
	})

	t.Run("wrong kind subset", func(t *testing.T) {
		if _, err := Reverse(models.MALReading, false, models.Episodic); !errors.Is(err, models.ErrUnmappedStatus) {
			t.Errorf("expected unmapped status, got %v", err)
		}
	})
}

func TestScore(t *testing.T) {
	tc := []struct {
		name  string
		score *float64
		want  int
	}{
		{"absent", nil, 0},
		{"truncates rather than rounds", models.Ptr(7.9), 7},
		{"whole", models.Ptr(10.0), 10},
		{"below one", models.Ptr(0.5), 0},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.score); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}
