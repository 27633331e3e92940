package player

import (
	"time"

	"stories-client/internal/models"
)

const (
	// DefaultStoryDuration is used for images and for videos with no usable
	// duration.
	DefaultStoryDuration = 15 * time.Second

	// TickInterval is the progress polling period.
	TickInterval = 50 * time.Millisecond

	// LongPressThreshold separates a navigation tap from a hold-to-pause,
	// measured press-down to release.
	LongPressThreshold = 250 * time.Millisecond
)

// State addresses exactly one current story via (UserIndex, StoryIndex) over
// Groups. While Done is false and Groups is non-empty the cursor is valid:
// 0 <= UserIndex < len(Groups) and 0 <= StoryIndex < len(current stories).
type State struct {
	Groups     []models.StoryGroup
	UserIndex  int
	StoryIndex int
	Progress   float64
	Running    bool
	Done       bool
}

// NewState clamps the requested starting group into range, starts at story 0
// and skips past any leading empty groups. If every group is empty the state
// is immediately Done.
func NewState(groups []models.StoryGroup, startGroup int) State {
	if len(groups) == 0 {
		return State{Done: true}
	}
	if startGroup < 0 {
		startGroup = 0
	}
	if startGroup >= len(groups) {
		startGroup = len(groups) - 1
	}
	s := State{Groups: groups, UserIndex: startGroup, StoryIndex: 0, Running: true}
	return skipEmptyForward(s)
}

// Current returns a pointer to the story under the cursor, or nil when Done.
// The pointer aliases State.Groups so local mutations (IsViewed) stick.
func (s *State) Current() *models.Story {
	if s.Done {
		return nil
	}
	return &s.Groups[s.UserIndex].Stories[s.StoryIndex]
}

func (s *State) CurrentAuthor() models.User {
	if s.Done {
		return models.User{}
	}
	return s.Groups[s.UserIndex].Author
}

// Duration selects the timer length for a story: videos use their recorded
// duration when positive, everything else falls back to the default.
func Duration(story models.Story) time.Duration {
	if story.Media.Type == models.MediaVideo && story.Media.DurationSec > 0 {
		return time.Duration(story.Media.DurationSec) * time.Second
	}
	return DefaultStoryDuration
}

// skipEmptyForward re-runs the advance-forward logic while the cursor sits on
// a group with no stories. A server-side deletion race can leave stale empty
// groups in the fetched list; they must never be displayed.
func skipEmptyForward(s State) State {
	for !s.Done && len(s.Groups[s.UserIndex].Stories) == 0 {
		if s.UserIndex+1 < len(s.Groups) {
			s.UserIndex++
			s.StoryIndex = 0
		} else {
			return terminate(s)
		}
	}
	return s
}

func skipEmptyBackward(s State) State {
	for !s.Done && len(s.Groups[s.UserIndex].Stories) == 0 {
		if s.UserIndex > 0 {
			s.UserIndex--
			s.StoryIndex = 0
			if n := len(s.Groups[s.UserIndex].Stories); n > 0 {
				s.StoryIndex = n - 1
			}
		} else {
			return terminate(s)
		}
	}
	return s
}

func terminate(s State) State {
	s.Done = true
	s.Running = false
	s.Progress = 0
	return s
}

// AdvanceForward moves to the next story in the current group, else the next
// group's first story, else terminates. Progress resets to 0.
func AdvanceForward(s State) State {
	if s.Done {
		return s
	}
	s.Progress = 0
	if s.StoryIndex+1 < len(s.Groups[s.UserIndex].Stories) {
		s.StoryIndex++
		return s
	}
	if s.UserIndex+1 < len(s.Groups) {
		s.UserIndex++
		s.StoryIndex = 0
		return skipEmptyForward(s)
	}
	return terminate(s)
}

// AdvanceBackward moves to the previous story in the current group, else the
// previous group's last story, else terminates. No wraparound.
func AdvanceBackward(s State) State {
	if s.Done {
		return s
	}
	s.Progress = 0
	if s.StoryIndex > 0 {
		s.StoryIndex--
		return s
	}
	if s.UserIndex > 0 {
		s.UserIndex--
		s.StoryIndex = 0
		if n := len(s.Groups[s.UserIndex].Stories); n > 0 {
			s.StoryIndex = n - 1
		}
		return skipEmptyBackward(s)
	}
	return terminate(s)
}

// DeleteCurrent removes the story under the cursor from its group, then
// re-runs the landed-on-empty logic to find the next valid cursor. The groups
// slice is rebuilt rather than spliced in place so the returned state is the
// single source of truth.
func DeleteCurrent(s State) State {
	if s.Done {
		return s
	}
	groups := make([]models.StoryGroup, len(s.Groups))
	copy(groups, s.Groups)

	g := groups[s.UserIndex]
	stories := make([]models.Story, 0, len(g.Stories)-1)
	stories = append(stories, g.Stories[:s.StoryIndex]...)
	stories = append(stories, g.Stories[s.StoryIndex+1:]...)
	g.Stories = stories
	groups[s.UserIndex] = g
	s.Groups = groups

	s.Progress = 0
	if s.StoryIndex >= len(stories) {
		if len(stories) > 0 {
			// Deleted the last story of the group; fall through to the next group.
			s.StoryIndex = len(stories) - 1
			return AdvanceForward(s)
		}
		s.StoryIndex = 0
	}
	return skipEmptyForward(s)
}

// Valid reports whether the cursor addresses a story. Done states are valid
// by definition (the player has terminated, nothing is displayed).
func (s State) Valid() bool {
	if s.Done {
		return true
	}
	if s.UserIndex < 0 || s.UserIndex >= len(s.Groups) {
		return false
	}
	return s.StoryIndex >= 0 && s.StoryIndex < len(s.Groups[s.UserIndex].Stories)
}
