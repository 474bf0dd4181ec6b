// package vocabulary maps list statuses between AniList and MyAnimeList.
//
// The mapping is a fixed table per media kind rather than a computed function: the in-progress and
// planning statuses rename depending on kind ("watching" vs "reading", "plan_to_watch" vs
// "plan_to_read"). A lookup that misses the table is a programming error and reported as
// [models.UnmappedStatusError].
package vocabulary

import (
	"github.com/desertthunder/lsx/internal/models"
)

// Mapping is one target status plus the repeat flag MyAnimeList keeps outside its status set.
type Mapping struct {
	Status    models.Status
	Repeating bool
}

type table map[models.MediaKind]map[models.Status]Mapping

var forward = table{
	models.Episodic: {
		models.StatusCurrent:   {Status: models.MALWatching},
		models.StatusPlanning:  {Status: models.MALPlanToWatch},
		models.StatusCompleted: {Status: models.MALCompleted},
		models.StatusDropped:   {Status: models.MALDropped},
		models.StatusPaused:    {Status: models.MALOnHold},
		models.StatusRepeating: {Status: models.MALCompleted, Repeating: true},
	},
	models.Chaptered: {
		models.StatusCurrent:   {Status: models.MALReading},
		models.StatusPlanning:  {Status: models.MALPlanToRead},
		models.StatusCompleted: {Status: models.MALCompleted},
		models.StatusDropped:   {Status: models.MALDropped},
		models.StatusPaused:    {Status: models.MALOnHold},
		models.StatusRepeating: {Status: models.MALCompleted, Repeating: true},
	},
}

// reverse is keyed by target status and the repeat flag.
type reverseKey struct {
	status    models.Status
	repeating bool
}

var reverse = map[models.MediaKind]map[reverseKey]models.Status{
	models.Episodic: {
		{models.MALWatching, false}:    models.StatusCurrent,
		{models.MALPlanToWatch, false}: models.StatusPlanning,
		{models.MALCompleted, false}:   models.StatusCompleted,
		{models.MALDropped, false}:     models.StatusDropped,
		{models.MALOnHold, false}:      models.StatusPaused,
		{models.MALCompleted, true}:    models.StatusRepeating,
	},
	models.Chaptered: {
		{models.MALReading, false}:    models.StatusCurrent,
		{models.MALPlanToRead, false}: models.StatusPlanning,
		{models.MALCompleted, false}:  models.StatusCompleted,
		{models.MALDropped, false}:    models.StatusDropped,
		{models.MALOnHold, false}:     models.StatusPaused,
		{models.MALCompleted, true}:   models.StatusRepeating,
	},
}

// Forward maps an AniList status into the MyAnimeList vocabulary for kind.
func Forward(status models.Status, kind models.MediaKind) (Mapping, error) {
	m, ok := forward[kind][status]
	if !ok {
		return Mapping{}, &models.UnmappedStatusError{Status: status, Kind: kind}
	}
	return m, nil
}

// Reverse maps a MyAnimeList status (plus its repeat flag) back to AniList.
func Reverse(status models.Status, repeating bool, kind models.MediaKind) (models.Status, error) {
	if s, ok := reverse[kind][reverseKey{status, repeating}]; ok {
		return s, nil
	}
	// A repeat flag on a non-completed status has no AniList counterpart of its own.
	if repeating {
		if s, ok := reverse[kind][reverseKey{status, false}]; ok {
			return s, nil
		}
	}
	return "", &models.UnmappedStatusError{Status: status, Kind: kind}
}

// Known reports whether status belongs to the vocabulary of service for kind.
func Known(service models.ServiceName, status models.Status, kind models.MediaKind) bool {
	var statuses []models.Status
	switch service {
	case models.AniList:
		statuses = models.AniListStatuses
	case models.MyAnimeList:
		statuses = models.MALStatuses(kind)
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Score coerces a 0-10 floating point score to the target's integral scale by truncating toward
// zero. Absent scores become 0, which MyAnimeList reads as "no score".
func Score(score *float64) int {
	if score == nil {
		return 0
	}
	return int(*score)
}
