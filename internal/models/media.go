package models

import (
	"fmt"
	"strings"
)

// ServiceName identifies one of the two list services.
type ServiceName string

const (
	AniList     ServiceName = "anilist"
	MyAnimeList ServiceName = "myanimelist"
)

// ParseServiceName accepts the canonical names plus the short aliases used on the command line.
func ParseServiceName(s string) (ServiceName, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anilist", "al":
		return AniList, nil
	case "myanimelist", "mal":
		return MyAnimeList, nil
	default:
		return "", fmt.Errorf("unknown service %q (must be 'anilist' or 'myanimelist')", s)
	}
}

// Display returns the human-readable service name.
func (s ServiceName) Display() string {
	switch s {
	case AniList:
		return "AniList"
	case MyAnimeList:
		return "MyAnimeList"
	default:
		return string(s)
	}
}

// MediaKind selects episodic or chaptered mode for one reconciliation pass.
//
// It determines which progress field, which endpoints, and which status subset apply.
type MediaKind int

const (
	Episodic MediaKind = iota
	Chaptered
)

// ParseMediaKind accepts "anime" or "manga", case insensitive.
func ParseMediaKind(s string) (MediaKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ANIME":
		return Episodic, nil
	case "MANGA":
		return Chaptered, nil
	default:
		return 0, fmt.Errorf("list type must be either 'anime' or 'manga', got %q", s)
	}
}

func (k MediaKind) String() string {
	switch k {
	case Episodic:
		return "anime"
	case Chaptered:
		return "manga"
	default:
		return fmt.Sprintf("MediaKind(%d)", int(k))
	}
}

// GraphQLType is the AniList MediaType enum value for this kind.
func (k MediaKind) GraphQLType() string {
	return strings.ToUpper(k.String())
}

// ProgressNoun is "episodes" or "chapters".
func (k MediaKind) ProgressNoun() string {
	if k == Chaptered {
		return "chapters"
	}
	return "episodes"
}

// Status is a list status drawn from one service's vocabulary.
type Status string

// AniList MediaListStatus values.
const (
	StatusCurrent   Status = "CURRENT"
	StatusPlanning  Status = "PLANNING"
	StatusCompleted Status = "COMPLETED"
	StatusDropped   Status = "DROPPED"
	StatusPaused    Status = "PAUSED"
	StatusRepeating Status = "REPEATING"
)

// MyAnimeList list statuses. Anime and manga share completed, on_hold, and dropped.
const (
	MALWatching    Status = "watching"
	MALReading     Status = "reading"
	MALCompleted   Status = "completed"
	MALOnHold      Status = "on_hold"
	MALDropped     Status = "dropped"
	MALPlanToWatch Status = "plan_to_watch"
	MALPlanToRead  Status = "plan_to_read"
)

// AniListStatuses lists the reference vocabulary in display order.
var AniListStatuses = []Status{
	StatusCurrent, StatusRepeating, StatusCompleted, StatusPaused, StatusDropped, StatusPlanning,
}

// MALStatuses returns the target vocabulary subset for a kind.
func MALStatuses(kind MediaKind) []Status {
	if kind == Chaptered {
		return []Status{MALReading, MALCompleted, MALOnHold, MALDropped, MALPlanToRead}
	}
	return []Status{MALWatching, MALCompleted, MALOnHold, MALDropped, MALPlanToWatch}
}

// Label renders a status for terminal output, e.g. "plan_to_watch" -> "Plan To Watch".
func (s Status) Label() string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(string(s)), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
